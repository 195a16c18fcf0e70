package convert

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/OCAP2/bsor/internal/geo"
	"github.com/OCAP2/bsor/internal/model"
	"github.com/OCAP2/bsor/pkg/bsor"
)

func rotationToQuat(r model.Rotation) bsor.Quaternion {
	return bsor.Quaternion{Real: r.W, I: r.X, J: r.Y, K: r.Z}
}

// ModelToInfo converts a stored Replay row back into an Info block.
func ModelToInfo(m model.Replay) (bsor.Info, error) {
	mods := []string{}
	if len(m.Modifiers) > 0 {
		if err := json.Unmarshal(m.Modifiers, &mods); err != nil {
			return bsor.Info{}, fmt.Errorf("failed to decode modifiers: %w", err)
		}
	}

	return bsor.Info{
		ModVersion:     m.ModVersion,
		GameVersion:    m.GameVersion,
		Timestamp:      m.Timestamp,
		PlayerID:       m.PlayerID,
		PlayerName:     m.PlayerName,
		Platform:       m.Platform,
		TrackingSystem: m.TrackingSystem,
		HMD:            m.HMD,
		Controller:     m.Controller,
		Hash:           m.Hash,
		SongName:       m.SongName,
		Mapper:         m.Mapper,
		Difficulty:     m.Difficulty,
		Score:          m.Score,
		Mode:           m.Mode,
		Environment:    m.Environment,
		Modifiers:      mods,
		JumpDistance:   m.JumpDistance,
		LeftHanded:     m.LeftHanded,
		Height:         m.Height,
		StartTime:      m.StartTime,
		FailTime:       m.FailTime,
		SongSpeed:      m.SongSpeed,
	}, nil
}

// ModelToReplay rebuilds a Replay from a stored row and its loaded child
// records, restoring the timeline order from each record's Seq.
func ModelToReplay(m model.Replay) (*bsor.Replay, error) {
	info, err := ModelToInfo(m)
	if err != nil {
		return nil, err
	}

	type seqEvent struct {
		seq int
		ev  bsor.Event
	}
	events := make([]seqEvent, 0, len(m.Frames)+len(m.Notes)+len(m.Walls)+len(m.Heights)+len(m.Pauses))

	for _, f := range m.Frames {
		events = append(events, seqEvent{f.Seq, ModelToFrame(f)})
	}
	for _, n := range m.Notes {
		ev, err := ModelToNote(n)
		if err != nil {
			return nil, err
		}
		events = append(events, seqEvent{n.Seq, ev})
	}
	for _, w := range m.Walls {
		events = append(events, seqEvent{w.Seq, &bsor.WallEvent{
			ID: w.WallID, Energy: w.Energy, Time: w.Time, SpawnTime: w.SpawnTime,
		}})
	}
	for _, h := range m.Heights {
		events = append(events, seqEvent{h.Seq, &bsor.HeightEvent{Height: h.Height, Time: h.Time}})
	}
	for _, p := range m.Pauses {
		events = append(events, seqEvent{p.Seq, &bsor.PauseEvent{Duration: p.Duration, Time: p.Time}})
	}

	slices.SortFunc(events, func(a, b seqEvent) int { return a.seq - b.seq })

	r := &bsor.Replay{Info: info, Events: make([]bsor.Event, len(events))}
	for i, e := range events {
		r.Events[i] = e.ev
	}
	return r, nil
}

// ModelToFrame converts a stored frame. Empty points become zero vectors.
func ModelToFrame(f model.FrameRecord) *bsor.FrameEvent {
	head, _ := geo.Vector(f.HeadPosition.Point)
	left, _ := geo.Vector(f.LeftHandPosition.Point)
	right, _ := geo.Vector(f.RightHandPosition.Point)
	return &bsor.FrameEvent{
		Time:         f.Time,
		FPS:          f.FPS,
		HeadPos:      head,
		HeadRot:      rotationToQuat(f.HeadRotation),
		LeftHandPos:  left,
		LeftHandRot:  rotationToQuat(f.LeftHandRotation),
		RightHandPos: right,
		RightHandRot: rotationToQuat(f.RightHandRotation),
	}
}

// ModelToNote converts a stored note, decoding its cut data when present.
func ModelToNote(n model.NoteRecord) (*bsor.NoteEvent, error) {
	ev := &bsor.NoteEvent{
		ID:        n.NoteID,
		Time:      n.Time,
		SpawnTime: n.SpawnTime,
		Type:      bsor.NoteType(n.Type),
	}
	if len(n.CutData) > 0 && string(n.CutData) != "null" {
		var c cutDataJSON
		if err := json.Unmarshal(n.CutData, &c); err != nil {
			return nil, fmt.Errorf("failed to decode cut data for note %d: %w", n.NoteID, err)
		}
		ev.CutData = c.cutData()
	}
	return ev, nil
}
