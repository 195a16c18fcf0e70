package gormstore

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/OCAP2/bsor/internal/database"
	"github.com/OCAP2/bsor/internal/geo"
	"github.com/OCAP2/bsor/internal/model"
	"github.com/OCAP2/bsor/pkg/bsor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	m := database.NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSqlite(""))

	b := New(m)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func testReplay() *bsor.Replay {
	return &bsor.Replay{
		Info: bsor.Info{
			PlayerName: "Player",
			SongName:   "Song",
			Timestamp:  1700000000,
			Modifiers:  []string{"FS"},
		},
		Events: []bsor.Event{
			&bsor.HeightEvent{Height: 1.7, Time: 0},
			&bsor.FrameEvent{Time: 0.5, FPS: 90, HeadPos: bsor.Vector3{Y: 1.7}, HeadRot: bsor.Quaternion{Real: 1}},
			&bsor.NoteEvent{ID: 1, Time: 1.0, Type: bsor.NoteGoodHit, CutData: &bsor.CutData{SaberSpeed: 2, AfterCutRating: 1}},
			&bsor.NoteEvent{ID: 2, Time: 1.0, Type: bsor.NoteBomb},
			&bsor.FrameEvent{Time: 1.0, FPS: 90, HeadPos: bsor.Vector3{Y: 1.7, Z: 1}},
			&bsor.WallEvent{ID: 3, Energy: 0.8, Time: 1.25},
			&bsor.PauseEvent{Duration: 40, Time: 2},
		},
	}
}

func TestStoreReplay_RoundTrip(t *testing.T) {
	b := newTestBackend(t)
	want := testReplay()

	id, err := b.StoreReplay(want, model.ReplayMeta{Source: "a.bsor", SHA256: "abc"})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, meta, err := b.LoadReplay(id)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, model.ReplayMeta{Source: "a.bsor", SHA256: "abc"}, meta)
}

func TestStoreReplay_ChildRowsLinked(t *testing.T) {
	b := newTestBackend(t)

	id, err := b.StoreReplay(testReplay(), model.ReplayMeta{})
	require.NoError(t, err)

	var frames []model.FrameRecord
	require.NoError(t, b.mgr.DB.Where("replay_id = ?", id).Order("seq").Find(&frames).Error)
	require.Len(t, frames, 2)
	assert.Equal(t, 1, frames[0].Seq)
	assert.Equal(t, 4, frames[1].Seq)

	var stored model.Replay
	require.NoError(t, b.mgr.DB.First(&stored, id).Error)
	assert.Equal(t, 2, stored.HeadPath.Coordinates().Length())
	assert.InDelta(t, 1.0, geo.PathLength(stored.HeadPath.LineString), 1e-6)
	assert.Equal(t, 2, stored.RightHandPath.Coordinates().Length())
}

func TestStoreReplay_StandingStill(t *testing.T) {
	b := newTestBackend(t)
	still := bsor.Vector3{X: 0.2, Y: 1.6, Z: -0.1}
	want := &bsor.Replay{Info: bsor.Info{Modifiers: []string{}}, Events: []bsor.Event{
		&bsor.FrameEvent{Time: 0, FPS: 90, HeadPos: still},
		&bsor.FrameEvent{Time: 0.1, FPS: 90, HeadPos: still},
		&bsor.FrameEvent{Time: 0.2, FPS: 90, HeadPos: still},
	}}

	id, err := b.StoreReplay(want, model.ReplayMeta{})
	require.NoError(t, err)

	got, _, err := b.LoadReplay(id)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	var stored model.Replay
	require.NoError(t, b.mgr.DB.First(&stored, id).Error)
	assert.Equal(t, 3, stored.HeadPath.Coordinates().Length())
	assert.Equal(t, 0.0, geo.PathLength(stored.HeadPath.LineString))
}

func TestStoreReplay_NonFiniteCutData(t *testing.T) {
	b := newTestBackend(t)
	inf := float32(math.Inf(1))
	want := &bsor.Replay{Info: bsor.Info{Modifiers: []string{}}, Events: []bsor.Event{
		&bsor.NoteEvent{ID: 1, Time: 1, Type: bsor.NoteGoodHit, CutData: &bsor.CutData{
			SaberSpeed: inf,
			CutNormal:  bsor.Vector3{Z: float32(math.Inf(-1))},
		}},
	}}

	id, err := b.StoreReplay(want, model.ReplayMeta{})
	require.NoError(t, err)

	var notes []model.NoteRecord
	require.NoError(t, b.mgr.DB.Where("replay_id = ?", id).Find(&notes).Error)
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].CutData)

	got, _, err := b.LoadReplay(id)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStoreReplay_UnnamedNoteType(t *testing.T) {
	b := newTestBackend(t)
	want := &bsor.Replay{Info: bsor.Info{Modifiers: []string{}}, Events: []bsor.Event{
		&bsor.NoteEvent{ID: 5, Time: 1, SpawnTime: 0.5, Type: bsor.NoteType(4)},
		&bsor.NoteEvent{ID: 6, Time: 2, Type: bsor.NoteMiss},
	}}

	id, err := b.StoreReplay(want, model.ReplayMeta{})
	require.NoError(t, err)

	got, _, err := b.LoadReplay(id)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCount(t *testing.T) {
	b := newTestBackend(t)

	n, err := b.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = b.StoreReplay(testReplay(), model.ReplayMeta{})
	require.NoError(t, err)
	_, err = b.StoreReplay(testReplay(), model.ReplayMeta{})
	require.NoError(t, err)

	n, err = b.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDump(t *testing.T) {
	b := newTestBackend(t)
	id, err := b.StoreReplay(testReplay(), model.ReplayMeta{Source: "a.bsor", SHA256: "abc"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, b.Dump(path))

	m := database.NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSqlite(path))
	disk := New(m)
	t.Cleanup(func() { _ = disk.Close() })

	got, meta, err := disk.LoadReplay(id)
	require.NoError(t, err)
	assert.Equal(t, testReplay(), got)
	assert.Equal(t, "a.bsor", meta.Source)
}

func TestStoreReplay_Empty(t *testing.T) {
	b := newTestBackend(t)

	id, err := b.StoreReplay(&bsor.Replay{}, model.ReplayMeta{Source: "empty.bsor"})
	require.NoError(t, err)

	got, _, err := b.LoadReplay(id)
	require.NoError(t, err)
	assert.Empty(t, got.Events)
	assert.Equal(t, []string{}, got.Info.Modifiers)
}

func TestFindBySHA256(t *testing.T) {
	b := newTestBackend(t)

	_, found, err := b.FindBySHA256("missing")
	require.NoError(t, err)
	assert.False(t, found)

	id, err := b.StoreReplay(testReplay(), model.ReplayMeta{SHA256: "deadbeef"})
	require.NoError(t, err)

	got, found, err := b.FindBySHA256("deadbeef")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)
}

func TestLoadReplay_Missing(t *testing.T) {
	b := newTestBackend(t)

	_, _, err := b.LoadReplay(999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load replay 999")
}
