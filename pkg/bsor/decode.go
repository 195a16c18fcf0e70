// Package bsor decodes BSOR replay files: a metadata header followed by
// five sections of gameplay events, assembled into one timeline.
//
// Only version 1 of the format is supported and the package never writes
// files. Decode does not log; every failure is returned to the caller.
package bsor

import (
	"cmp"
	"io"
	"slices"
)

// Options controls which decoded events are kept.
type Options struct {
	// Kinds selects the event kinds kept in Replay.Events. Every section
	// is still decoded and validated. Zero means all kinds.
	Kinds KindSet
}

// Decode reads one replay from r.
func Decode(r io.Reader) (*Replay, error) {
	return DecodeWithOptions(r, Options{})
}

// DecodeWithOptions reads one replay from r, keeping only the event kinds
// selected in opts. On error the returned Replay is nil.
func DecodeWithOptions(r io.Reader, opts Options) (*Replay, error) {
	rd := NewReader(r)

	if err := readHeader(rd); err != nil {
		return nil, err
	}
	info, err := readInfo(rd)
	if err != nil {
		return nil, err
	}

	frames, err := readSection(rd, "frames", TagFrames, readFrame)
	if err != nil {
		return nil, err
	}
	notes, err := readSection(rd, "notes", TagNotes, readNote)
	if err != nil {
		return nil, err
	}
	walls, err := readSection(rd, "walls", TagWalls, readWall)
	if err != nil {
		return nil, err
	}
	heights, err := readSection(rd, "height", TagHeight, readHeight)
	if err != nil {
		return nil, err
	}
	pauses, err := readSection(rd, "pause", TagPauses, readPause)
	if err != nil {
		return nil, err
	}

	kinds := opts.Kinds
	if kinds == 0 {
		kinds = AllKindsSet
	}

	events := make([]Event, 0, len(frames)+len(notes)+len(walls)+len(heights)+len(pauses))
	events = appendEvents(events, kinds, frames)
	events = appendEvents(events, kinds, notes)
	events = appendEvents(events, kinds, walls)
	events = appendEvents(events, kinds, heights)
	events = appendEvents(events, kinds, pauses)
	sortEvents(events)

	return &Replay{Info: info, Events: events}, nil
}

func appendEvents[T Event](dst []Event, kinds KindSet, src []T) []Event {
	for _, e := range src {
		if kinds.Has(e.Kind()) {
			dst = append(dst, e)
		}
	}
	return dst
}

// sortEvents orders by time; ties keep their read order.
func sortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.EventTime(), b.EventTime())
	})
}
