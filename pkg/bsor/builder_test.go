package bsor

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
)

// wireBuilder writes the BSOR wire format for tests.
type wireBuilder struct {
	buf bytes.Buffer
}

func (b *wireBuilder) u8(v byte) *wireBuilder { b.buf.WriteByte(v); return b }

func (b *wireBuilder) boolean(v bool) *wireBuilder {
	if v {
		return b.u8(1)
	}
	return b.u8(0)
}

func (b *wireBuilder) u32(v uint32) *wireBuilder {
	b.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
	return b
}

func (b *wireBuilder) i32(v int32) *wireBuilder { return b.u32(uint32(v)) }

func (b *wireBuilder) i64(v int64) *wireBuilder {
	b.buf.Write(binary.LittleEndian.AppendUint64(nil, uint64(v)))
	return b
}

func (b *wireBuilder) f32(v float32) *wireBuilder { return b.u32(math.Float32bits(v)) }

func (b *wireBuilder) str(s string) *wireBuilder {
	b.i32(int32(len(s)))
	b.buf.WriteString(s)
	return b
}

func (b *wireBuilder) vec(v Vector3) *wireBuilder { return b.f32(v.X).f32(v.Y).f32(v.Z) }

func (b *wireBuilder) quat(q Quaternion) *wireBuilder {
	return b.f32(q.Real).f32(q.I).f32(q.J).f32(q.K)
}

func (b *wireBuilder) bytes() []byte { return bytes.Clone(b.buf.Bytes()) }

func (b *wireBuilder) header() *wireBuilder { return b.u32(Magic).u8(Version) }

// info writes the info block; modifiers is written as the raw string.
func (b *wireBuilder) info(i Info, modifiers string) *wireBuilder {
	b.u8(TagInfo).
		str(i.ModVersion).
		str(i.GameVersion).
		str(strconv.FormatInt(i.Timestamp, 10)).
		str(i.PlayerID).
		str(i.PlayerName).
		str(i.Platform).
		str(i.TrackingSystem).
		str(i.HMD).
		str(i.Controller).
		str(i.Hash).
		str(i.SongName).
		str(i.Mapper).
		str(i.Difficulty).
		i32(i.Score).
		str(i.Mode).
		str(i.Environment).
		str(modifiers).
		f32(i.JumpDistance).
		boolean(i.LeftHanded).
		f32(i.Height).
		f32(i.StartTime).
		f32(i.FailTime).
		f32(i.SongSpeed)
	return b
}

func (b *wireBuilder) frames(frames ...FrameEvent) *wireBuilder {
	b.u8(TagFrames).u32(uint32(len(frames)))
	for _, f := range frames {
		b.f32(f.Time).i32(f.FPS).
			vec(f.HeadPos).quat(f.HeadRot).
			vec(f.LeftHandPos).quat(f.LeftHandRot).
			vec(f.RightHandPos).quat(f.RightHandRot)
	}
	return b
}

func (b *wireBuilder) notes(notes ...NoteEvent) *wireBuilder {
	b.u8(TagNotes).u32(uint32(len(notes)))
	for _, n := range notes {
		b.i32(n.ID).f32(n.Time).f32(n.SpawnTime).i32(int32(n.Type))
		if cd := n.CutData; cd != nil {
			b.boolean(cd.SpeedOK).boolean(cd.DirectionOK).boolean(cd.SaberTypeOK).boolean(cd.CutTooSoon).
				f32(cd.SaberSpeed).vec(cd.SaberDir).i32(cd.SaberType).
				f32(cd.TimeDeviation).f32(cd.CutDirDeviation).
				vec(cd.CutPoint).vec(cd.CutNormal).
				f32(cd.CutDistToCenter).f32(cd.CutAngle).
				f32(cd.BeforeCutRating).f32(cd.AfterCutRating)
		}
	}
	return b
}

func (b *wireBuilder) walls(walls ...WallEvent) *wireBuilder {
	b.u8(TagWalls).u32(uint32(len(walls)))
	for _, w := range walls {
		b.i32(w.ID).f32(w.Energy).f32(w.Time).f32(w.SpawnTime)
	}
	return b
}

func (b *wireBuilder) heights(heights ...HeightEvent) *wireBuilder {
	b.u8(TagHeight).u32(uint32(len(heights)))
	for _, h := range heights {
		b.f32(h.Height).f32(h.Time)
	}
	return b
}

func (b *wireBuilder) pauses(pauses ...PauseEvent) *wireBuilder {
	b.u8(TagPauses).u32(uint32(len(pauses)))
	for _, p := range pauses {
		b.i64(p.Duration).f32(p.Time)
	}
	return b
}

// emptyReplay is the smallest valid file: empty strings, timestamp "0",
// and five empty sections.
func emptyReplay() []byte {
	b := &wireBuilder{}
	return b.header().info(Info{}, "").frames().notes().walls().heights().pauses().bytes()
}

func sampleInfo() Info {
	return Info{
		ModVersion:     "0.8.1",
		GameVersion:    "1.29.1",
		Timestamp:      1700000000,
		PlayerID:       "76561198000000000",
		PlayerName:     "Tester",
		Platform:       "steam",
		TrackingSystem: "Oculus",
		HMD:            "Quest 2",
		Controller:     "Touch",
		Hash:           "ABCDEF0123",
		SongName:       "Sample Song",
		Mapper:         "Mapper",
		Difficulty:     "ExpertPlus",
		Score:          1234567,
		Mode:           "Standard",
		Environment:    "DefaultEnvironment",
		Modifiers:      []string{"FS", "NF"},
		JumpDistance:   18.5,
		LeftHanded:     true,
		Height:         1.75,
		StartTime:      0,
		FailTime:       0,
		SongSpeed:      1,
	}
}

func sampleCut() *CutData {
	return &CutData{
		SpeedOK:         true,
		DirectionOK:     true,
		SaberTypeOK:     false,
		CutTooSoon:      true,
		SaberSpeed:      3.5,
		SaberDir:        Vector3{X: 0.1, Y: -0.2, Z: 0.3},
		SaberType:       1,
		TimeDeviation:   -0.01,
		CutDirDeviation: 12.5,
		CutPoint:        Vector3{X: 1, Y: 2, Z: 3},
		CutNormal:       Vector3{X: 0, Y: 1, Z: 0},
		CutDistToCenter: 0.05,
		CutAngle:        110,
		BeforeCutRating: 0.9,
		AfterCutRating:  1.1,
	}
}

// sampleReplay has events in every section, with cross-section and
// same-section time ties.
func sampleReplay() []byte {
	b := &wireBuilder{}
	return b.header().
		info(sampleInfo(), "FS,NF").
		frames(
			FrameEvent{Time: 0.5, FPS: 90, HeadPos: Vector3{Y: 1.7}},
			FrameEvent{Time: 1.0, FPS: 91, HeadPos: Vector3{X: 0.1, Y: 1.7}},
			FrameEvent{Time: 2.0, FPS: 92},
		).
		notes(
			NoteEvent{ID: 10, Time: 1.0, SpawnTime: 0.2, Type: NoteGoodHit, CutData: sampleCut()},
			NoteEvent{ID: 11, Time: 1.5, SpawnTime: 0.4, Type: NoteMiss},
			NoteEvent{ID: 12, Time: 1.0, SpawnTime: 0.5, Type: NoteBomb},
		).
		walls(WallEvent{ID: 7, Energy: 0.8, Time: 0.25, SpawnTime: 0.1}).
		heights(HeightEvent{Height: 1.7, Time: 0}).
		pauses(PauseEvent{Duration: 5, Time: 1.0}).
		bytes()
}
