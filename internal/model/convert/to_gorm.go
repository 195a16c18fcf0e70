// Package convert maps decoded replays to GORM models and back.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/bsor/internal/geo"
	"github.com/OCAP2/bsor/internal/model"
	"github.com/OCAP2/bsor/pkg/bsor"
	"gorm.io/datatypes"
)

// modifiersToJSON stores modifiers as a JSON array, never null.
func modifiersToJSON(mods []string) (datatypes.JSON, error) {
	if len(mods) == 0 {
		return datatypes.JSON("[]"), nil
	}
	data, err := json.Marshal(mods)
	if err != nil {
		return nil, fmt.Errorf("failed to encode modifiers: %w", err)
	}
	return datatypes.JSON(data), nil
}

func cutDataToJSON(c *bsor.CutData) (datatypes.JSON, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(toCutDataJSON(c))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func quatToRotation(q bsor.Quaternion) model.Rotation {
	return model.Rotation{W: q.Real, X: q.I, Y: q.J, Z: q.K}
}

// ReplayToModel converts a decoded replay into a GORM Replay with all child
// records attached. Each record's Seq is its index on the replay timeline.
func ReplayToModel(r *bsor.Replay, source string) (model.Replay, error) {
	m, err := InfoToModel(r.Info)
	if err != nil {
		return model.Replay{}, err
	}
	m.Source = source

	var frames []*bsor.FrameEvent
	for seq, e := range r.Events {
		switch ev := e.(type) {
		case *bsor.FrameEvent:
			frames = append(frames, ev)
			f, err := FrameToModel(seq, ev)
			if err != nil {
				return model.Replay{}, err
			}
			m.Frames = append(m.Frames, f)
		case *bsor.NoteEvent:
			n, err := NoteToModel(seq, ev)
			if err != nil {
				return model.Replay{}, err
			}
			m.Notes = append(m.Notes, n)
		case *bsor.WallEvent:
			m.Walls = append(m.Walls, model.WallRecord{
				Seq:       seq,
				WallID:    ev.ID,
				Energy:    ev.Energy,
				Time:      ev.Time,
				SpawnTime: ev.SpawnTime,
			})
		case *bsor.HeightEvent:
			m.Heights = append(m.Heights, model.HeightRecord{
				Seq:    seq,
				Height: ev.Height,
				Time:   ev.Time,
			})
		case *bsor.PauseEvent:
			m.Pauses = append(m.Pauses, model.PauseRecord{
				Seq:      seq,
				Duration: ev.Duration,
				Time:     ev.Time,
			})
		}
	}

	if m.HeadPath.LineString, err = geo.HeadPath(frames); err != nil {
		return model.Replay{}, fmt.Errorf("failed to build head path: %w", err)
	}
	if m.LeftHandPath.LineString, err = geo.HandPath(frames, true); err != nil {
		return model.Replay{}, fmt.Errorf("failed to build left hand path: %w", err)
	}
	if m.RightHandPath.LineString, err = geo.HandPath(frames, false); err != nil {
		return model.Replay{}, fmt.Errorf("failed to build right hand path: %w", err)
	}
	return m, nil
}

// InfoToModel converts the Info block into a Replay row without children.
func InfoToModel(i bsor.Info) (model.Replay, error) {
	mods, err := modifiersToJSON(i.Modifiers)
	if err != nil {
		return model.Replay{}, err
	}
	return model.Replay{
		ModVersion:     i.ModVersion,
		GameVersion:    i.GameVersion,
		Timestamp:      i.Timestamp,
		PlayerID:       i.PlayerID,
		PlayerName:     i.PlayerName,
		Platform:       i.Platform,
		TrackingSystem: i.TrackingSystem,
		HMD:            i.HMD,
		Controller:     i.Controller,
		Hash:           i.Hash,
		SongName:       i.SongName,
		Mapper:         i.Mapper,
		Difficulty:     i.Difficulty,
		Score:          i.Score,
		Mode:           i.Mode,
		Environment:    i.Environment,
		Modifiers:      mods,
		JumpDistance:   i.JumpDistance,
		LeftHanded:     i.LeftHanded,
		Height:         i.Height,
		StartTime:      i.StartTime,
		FailTime:       i.FailTime,
		SongSpeed:      i.SongSpeed,
	}, nil
}

// FrameToModel converts a frame event at timeline position seq.
func FrameToModel(seq int, f *bsor.FrameEvent) (model.FrameRecord, error) {
	var pos [3]geo.Position
	for i, v := range []bsor.Vector3{f.HeadPos, f.LeftHandPos, f.RightHandPos} {
		p, err := geo.Point(v)
		if err != nil {
			return model.FrameRecord{}, fmt.Errorf("failed to convert frame %d position: %w", seq, err)
		}
		pos[i] = geo.Position{Point: p}
	}
	return model.FrameRecord{
		Seq:               seq,
		Time:              f.Time,
		FPS:               f.FPS,
		HeadPosition:      pos[0],
		HeadRotation:      quatToRotation(f.HeadRot),
		LeftHandPosition:  pos[1],
		LeftHandRotation:  quatToRotation(f.LeftHandRot),
		RightHandPosition: pos[2],
		RightHandRotation: quatToRotation(f.RightHandRot),
	}, nil
}

// NoteToModel converts a note event at timeline position seq.
func NoteToModel(seq int, n *bsor.NoteEvent) (model.NoteRecord, error) {
	cut, err := cutDataToJSON(n.CutData)
	if err != nil {
		return model.NoteRecord{}, fmt.Errorf("failed to encode cut data for note %d: %w", n.ID, err)
	}
	return model.NoteRecord{
		Seq:       seq,
		NoteID:    n.ID,
		Time:      n.Time,
		SpawnTime: n.SpawnTime,
		Type:      int32(n.Type),
		CutData:   cut,
	}, nil
}
