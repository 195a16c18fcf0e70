package bsor

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_EmptyReplay(t *testing.T) {
	replay, err := Decode(bytes.NewReader(emptyReplay()))
	require.NoError(t, err)
	require.NotNil(t, replay)

	assert.Empty(t, replay.Events)
	assert.Equal(t, int64(0), replay.Info.Timestamp)
	assert.Equal(t, int32(0), replay.Info.Score)
	assert.Equal(t, "", replay.Info.PlayerName)
	assert.NotNil(t, replay.Info.Modifiers)
	assert.Len(t, replay.Info.Modifiers, 0)
}

func TestDecode_InfoFields(t *testing.T) {
	replay, err := Decode(bytes.NewReader(sampleReplay()))
	require.NoError(t, err)

	assert.Equal(t, sampleInfo(), replay.Info)
	assert.Equal(t, int64(1700000000), replay.Info.Time().Unix())
}

func TestDecode_Timeline(t *testing.T) {
	replay, err := Decode(bytes.NewReader(sampleReplay()))
	require.NoError(t, err)
	require.Len(t, replay.Events, 9)

	type step struct {
		kind EventKind
		time float32
	}
	want := []step{
		{KindHeight, 0},
		{KindWall, 0.25},
		{KindFrame, 0.5},
		{KindFrame, 1.0},
		{KindNote, 1.0},
		{KindNote, 1.0},
		{KindPause, 1.0},
		{KindNote, 1.5},
		{KindFrame, 2.0},
	}
	for i, w := range want {
		assert.Equal(t, w.kind, replay.Events[i].Kind(), "event %d kind", i)
		assert.Equal(t, w.time, replay.Events[i].EventTime(), "event %d time", i)
	}

	// same-section ties keep read order
	n1, ok := replay.Events[4].(*NoteEvent)
	require.True(t, ok)
	n2, ok := replay.Events[5].(*NoteEvent)
	require.True(t, ok)
	assert.Equal(t, int32(10), n1.ID)
	assert.Equal(t, int32(12), n2.ID)
}

func TestDecode_SortedAndStable(t *testing.T) {
	b := &wireBuilder{}
	var frames []FrameEvent
	for i := 0; i < 50; i++ {
		frames = append(frames, FrameEvent{Time: float32(i % 5), FPS: int32(i)})
	}
	data := b.header().info(Info{}, "").frames(frames...).notes().walls().heights().pauses().bytes()

	replay, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, replay.Events, 50)

	for i := 1; i < len(replay.Events); i++ {
		prev := replay.Events[i-1].(*FrameEvent)
		cur := replay.Events[i].(*FrameEvent)
		require.LessOrEqual(t, prev.Time, cur.Time)
		if prev.Time == cur.Time {
			require.Less(t, prev.FPS, cur.FPS, "equal times must keep read order")
		}
	}
}

func TestDecode_CutDataPresence(t *testing.T) {
	replay, err := Decode(bytes.NewReader(sampleReplay()))
	require.NoError(t, err)

	notes := replay.Notes()
	require.Len(t, notes, 3)
	for _, n := range notes {
		assert.Equal(t, n.Type == NoteGoodHit || n.Type == NoteBadHit, n.CutData != nil, "note %d", n.ID)
	}
}

func TestDecode_MissNoteConsumesNoCutData(t *testing.T) {
	b := &wireBuilder{}
	data := b.header().info(Info{}, "").
		frames().
		notes(NoteEvent{ID: 1, Time: 3, SpawnTime: 2, Type: NoteMiss}).
		walls(WallEvent{ID: 2, Energy: 0.5, Time: 4, SpawnTime: 3}).
		heights().pauses().bytes()

	replay, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, replay.Events, 2)

	note := replay.Events[0].(*NoteEvent)
	assert.Equal(t, NoteMiss, note.Type)
	assert.Nil(t, note.CutData)

	// the wall section decodes right after the four note fields
	wall := replay.Events[1].(*WallEvent)
	assert.Equal(t, WallEvent{ID: 2, Energy: 0.5, Time: 4, SpawnTime: 3}, *wall)
}

func TestDecode_GoodHitCutData(t *testing.T) {
	b := &wireBuilder{}
	data := b.header().info(Info{}, "").
		frames().
		notes(NoteEvent{ID: 1, Time: 3, SpawnTime: 2, Type: NoteGoodHit, CutData: sampleCut()}).
		walls().heights().pauses().bytes()

	replay, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, replay.Events, 1)

	note := replay.Events[0].(*NoteEvent)
	require.NotNil(t, note.CutData)
	assert.Equal(t, *sampleCut(), *note.CutData)
}

func TestDecode_AllEventPayloads(t *testing.T) {
	frame := FrameEvent{
		Time:         1,
		FPS:          72,
		HeadPos:      Vector3{X: 1, Y: 2, Z: 3},
		HeadRot:      Quaternion{Real: 1, I: 0.1, J: 0.2, K: 0.3},
		LeftHandPos:  Vector3{X: -0.3, Y: 1.1, Z: 0.2},
		LeftHandRot:  Quaternion{Real: 0.5, I: 0.5, J: 0.5, K: 0.5},
		RightHandPos: Vector3{X: 0.3, Y: 1.1, Z: 0.2},
		RightHandRot: Quaternion{Real: 0.7, I: 0, J: 0.7, K: 0},
	}
	height := HeightEvent{Height: 1.8, Time: 2}
	pause := PauseEvent{Duration: 1 << 40, Time: 3}

	b := &wireBuilder{}
	data := b.header().info(Info{}, "").
		frames(frame).notes().walls().heights(height).pauses(pause).bytes()

	replay, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, replay.Events, 3)

	assert.Equal(t, frame, *replay.Frames()[0])
	assert.Equal(t, height, *replay.Heights()[0])
	assert.Equal(t, pause, *replay.Pauses()[0])
}

func TestDecode_TruncatedAtEveryOffset(t *testing.T) {
	data := sampleReplay()
	for n := 0; n < len(data); n++ {
		replay, err := Decode(bytes.NewReader(data[:n]))
		require.Error(t, err, "cut at %d", n)
		assert.Nil(t, replay)
		assert.True(t, errors.Is(err, ErrTruncated), "cut at %d: %v", n, err)
	}
}

func TestDecode_OneByteReader(t *testing.T) {
	replay, err := Decode(iotest.OneByteReader(bytes.NewReader(sampleReplay())))
	require.NoError(t, err)
	assert.Len(t, replay.Events, 9)
}

func TestDecode_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Decode(iotest.ErrReader(boom))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTruncated)
}

// sectionTagOffsets returns the offsets of the frame..pause tag bytes in
// a file whose five sections are all empty.
func sectionTagOffsets(data []byte) []int {
	// each empty section is tag(1) + count(4)
	end := len(data)
	return []int{end - 25, end - 20, end - 15, end - 10, end - 5}
}

func TestDecode_Corruption(t *testing.T) {
	base := emptyReplay()
	tags := sectionTagOffsets(base)

	tests := []struct {
		name    string
		offset  int
		value   byte
		wantErr error
		check   func(t *testing.T, err error)
	}{
		{"magic", 0, 0x00, ErrMagicMismatch, nil},
		{"version", 4, 2, ErrUnsupportedVersion, func(t *testing.T, err error) {
			var ve *UnsupportedVersionError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, byte(2), ve.Version)
		}},
		{"info tag", 5, 0x07, ErrMalformedSection, func(t *testing.T, err error) {
			var se *MalformedSectionError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, TagInfo, se.Expected)
			assert.Equal(t, byte(0x07), se.Actual)
		}},
		{"frames tag", tags[0], 0x09, ErrMalformedSection, nil},
		{"notes tag", tags[1], 0x01, ErrMalformedSection, nil},
		{"walls tag", tags[2], 0x02, ErrMalformedSection, func(t *testing.T, err error) {
			var se *MalformedSectionError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, TagWalls, se.Expected)
			assert.Equal(t, TagNotes, se.Actual)
			assert.Equal(t, "walls", se.Section)
		}},
		{"height tag", tags[3], 0x05, ErrMalformedSection, nil},
		{"pause tag", tags[4], 0x04, ErrMalformedSection, func(t *testing.T, err error) {
			var se *MalformedSectionError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, TagPauses, se.Expected)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Clone(base)
			data[tt.offset] = tt.value

			replay, err := Decode(bytes.NewReader(data))
			require.Error(t, err)
			assert.Nil(t, replay)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestDecode_StopsAfterFirstError(t *testing.T) {
	// a bad walls tag followed by garbage: the error must name walls, not a
	// later section
	b := &wireBuilder{}
	data := b.header().info(Info{}, "").frames().notes().
		u8(0x02).u32(0xFFFFFFFF).bytes()

	_, err := Decode(bytes.NewReader(data))
	var se *MalformedSectionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, TagWalls, se.Expected)
}

func TestDecode_BadTimestamp(t *testing.T) {
	b := &wireBuilder{}
	b.header().u8(TagInfo).str("mod").str("game").str("yesterday")

	_, err := Decode(bytes.NewReader(b.bytes()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNumericParse)

	var ne *NumericParseError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "yesterday", ne.Value)
	assert.Equal(t, "timestamp", ne.Field)
}

func TestDecode_MidRecordErrorNamesSection(t *testing.T) {
	data := sampleReplay()
	// cut inside the frames section, after the first record started
	cut := len(emptyReplayPrefix()) + 1 + 4 + 10

	_, err := Decode(bytes.NewReader(data[:cut]))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Contains(t, err.Error(), "frames record 0")
}

// emptyReplayPrefix is the header plus sample info block, i.e. everything
// before the frames tag of sampleReplay.
func emptyReplayPrefix() []byte {
	b := &wireBuilder{}
	return b.header().info(sampleInfo(), "FS,NF").bytes()
}

func TestDecodeWithOptions_Kinds(t *testing.T) {
	kinds, err := ParseKinds("np")
	require.NoError(t, err)

	replay, err := DecodeWithOptions(bytes.NewReader(sampleReplay()), Options{Kinds: kinds})
	require.NoError(t, err)
	require.Len(t, replay.Events, 4)
	for _, e := range replay.Events {
		assert.Contains(t, []EventKind{KindNote, KindPause}, e.Kind())
	}
}

func TestDecodeWithOptions_StillValidatesFilteredSections(t *testing.T) {
	data := emptyReplay()
	data[sectionTagOffsets(data)[0]] = 0x0A

	_, err := DecodeWithOptions(bytes.NewReader(data), Options{Kinds: KindSet(0).With(KindNote)})
	assert.ErrorIs(t, err, ErrMalformedSection)
}

func TestReplay_Filter(t *testing.T) {
	replay, err := Decode(bytes.NewReader(sampleReplay()))
	require.NoError(t, err)

	assert.Len(t, replay.Filter(KindFrame), 3)
	assert.Len(t, replay.Filter(KindWall, KindHeight), 2)
	assert.Empty(t, replay.Filter())
	assert.Len(t, replay.Walls(), 1)
}
