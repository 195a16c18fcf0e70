package bsor

import "fmt"

// maxPrealloc caps the slice capacity reserved from a section's record
// count, which is untrusted until the records have actually been read.
const maxPrealloc = 1 << 16

// readSection checks the tag, reads the record count and decodes that many
// records with readRecord.
func readSection[T any](r *Reader, name string, tag byte, readRecord func(*fieldReader) T) ([]T, error) {
	if err := expectTag(r, name, tag); err != nil {
		return nil, err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("error reading %s count: %w", name, err)
	}

	records := make([]T, 0, min(count, maxPrealloc))
	f := &fieldReader{r: r}
	for i := uint32(0); i < count; i++ {
		rec := readRecord(f)
		if f.err != nil {
			return nil, fmt.Errorf("error reading %s record %d of %d: %w", name, i, count, f.err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readFrame(f *fieldReader) *FrameEvent {
	return &FrameEvent{
		Time:         f.f32(),
		FPS:          f.i32(),
		HeadPos:      f.vec(),
		HeadRot:      f.quat(),
		LeftHandPos:  f.vec(),
		LeftHandRot:  f.quat(),
		RightHandPos: f.vec(),
		RightHandRot: f.quat(),
	}
}

func readNote(f *fieldReader) *NoteEvent {
	e := &NoteEvent{
		ID:        f.i32(),
		Time:      f.f32(),
		SpawnTime: f.f32(),
		Type:      NoteType(f.i32()),
	}
	if f.err == nil && e.Type.HasCutData() {
		e.CutData = readCutData(f)
	}
	return e
}

func readCutData(f *fieldReader) *CutData {
	return &CutData{
		SpeedOK:         f.boolean(),
		DirectionOK:     f.boolean(),
		SaberTypeOK:     f.boolean(),
		CutTooSoon:      f.boolean(),
		SaberSpeed:      f.f32(),
		SaberDir:        f.vec(),
		SaberType:       f.i32(),
		TimeDeviation:   f.f32(),
		CutDirDeviation: f.f32(),
		CutPoint:        f.vec(),
		CutNormal:       f.vec(),
		CutDistToCenter: f.f32(),
		CutAngle:        f.f32(),
		BeforeCutRating: f.f32(),
		AfterCutRating:  f.f32(),
	}
}

func readWall(f *fieldReader) *WallEvent {
	return &WallEvent{
		ID:        f.i32(),
		Energy:    f.f32(),
		Time:      f.f32(),
		SpawnTime: f.f32(),
	}
}

func readHeight(f *fieldReader) *HeightEvent {
	return &HeightEvent{
		Height: f.f32(),
		Time:   f.f32(),
	}
}

func readPause(f *fieldReader) *PauseEvent {
	e := &PauseEvent{}
	if f.err == nil {
		e.Duration, f.err = f.r.ReadInt64()
	}
	e.Time = f.f32()
	return e
}
