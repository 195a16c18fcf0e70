// Package stats derives per-replay aggregates used for storage and metrics.
package stats

import (
	"github.com/OCAP2/bsor/internal/geo"
	"github.com/OCAP2/bsor/pkg/bsor"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Summary aggregates a decoded replay.
type Summary struct {
	Frames  int `json:"frames"`
	Notes   int `json:"notes"`
	Walls   int `json:"walls"`
	Heights int `json:"heights"`
	Pauses  int `json:"pauses"`

	GoodHits int `json:"goodHits"`
	BadHits  int `json:"badHits"`
	Misses   int `json:"misses"`
	Bombs    int `json:"bombs"`

	// Accuracy is good hits over all non-bomb notes, 0 when there are none.
	Accuracy float64 `json:"accuracy"`
	// MeanCutRating averages (before+after)/2 swing ratings over good hits.
	MeanCutRating float64 `json:"meanCutRating"`
	AverageFPS    float64 `json:"averageFps"`
	// PauseTotal sums the raw pause durations as recorded.
	PauseTotal int64 `json:"pauseTotal"`
	// HeadTravel is the 3D distance the headset moved, in metres.
	HeadTravel      float64 `json:"headTravel"`
	LeftHandTravel  float64 `json:"leftHandTravel"`
	RightHandTravel float64 `json:"rightHandTravel"`
	// HeadSpan is the size of the box the headset stayed in.
	HeadSpan bsor.Vector3 `json:"headSpan"`
	// Duration is the time of the last event in seconds.
	Duration float32 `json:"duration"`
}

// Summarize walks the timeline once and computes a Summary.
func Summarize(r *bsor.Replay) Summary {
	var (
		s        Summary
		fpsSum   int64
		ratings  float64
		rated    int
		frames   []*bsor.FrameEvent
		lastTime float32
	)

	for _, e := range r.Events {
		if t := e.EventTime(); t > lastTime {
			lastTime = t
		}

		switch ev := e.(type) {
		case *bsor.FrameEvent:
			s.Frames++
			fpsSum += int64(ev.FPS)
			frames = append(frames, ev)
		case *bsor.NoteEvent:
			s.Notes++
			switch ev.Type {
			case bsor.NoteGoodHit:
				s.GoodHits++
				if ev.CutData != nil {
					ratings += float64(ev.CutData.BeforeCutRating+ev.CutData.AfterCutRating) / 2
					rated++
				}
			case bsor.NoteBadHit:
				s.BadHits++
			case bsor.NoteMiss:
				s.Misses++
			case bsor.NoteBomb:
				s.Bombs++
			}
		case *bsor.WallEvent:
			s.Walls++
		case *bsor.HeightEvent:
			s.Heights++
		case *bsor.PauseEvent:
			s.Pauses++
			s.PauseTotal += ev.Duration
		}
	}

	if judged := s.GoodHits + s.BadHits + s.Misses; judged > 0 {
		s.Accuracy = float64(s.GoodHits) / float64(judged)
	}
	if rated > 0 {
		s.MeanCutRating = ratings / float64(rated)
	}
	if s.Frames > 0 {
		s.AverageFPS = float64(fpsSum) / float64(s.Frames)
	}
	if head, err := geo.HeadPath(frames); err == nil {
		s.HeadTravel = geo.PathLength(head)
		s.HeadSpan = span(head)
	}
	s.LeftHandTravel = travel(geo.HandPath(frames, true))
	s.RightHandTravel = travel(geo.HandPath(frames, false))
	s.Duration = lastTime

	return s
}

// travel is the length of a path, 0 when it could not be built.
func travel(ls geom.LineString, err error) float64 {
	if err != nil {
		return 0
	}
	return geo.PathLength(ls)
}

func span(ls geom.LineString) bsor.Vector3 {
	lo, hi, ok := geo.Extent(ls)
	if !ok {
		return bsor.Vector3{}
	}
	return bsor.Vector3{X: hi.X - lo.X, Y: hi.Y - lo.Y, Z: hi.Z - lo.Z}
}

// EventsByKind returns the per-kind event counts keyed by kind name.
func (s Summary) EventsByKind() map[string]int {
	return map[string]int{
		bsor.KindFrame.String():  s.Frames,
		bsor.KindNote.String():   s.Notes,
		bsor.KindWall.String():   s.Walls,
		bsor.KindHeight.String(): s.Heights,
		bsor.KindPause.String():  s.Pauses,
	}
}

// Total is the number of events of all kinds.
func (s Summary) Total() int {
	return s.Frames + s.Notes + s.Walls + s.Heights + s.Pauses
}
