package bsor

import (
	"fmt"
	"time"
)

// Vector3 is a position or direction in game space.
type Vector3 struct {
	X, Y, Z float32
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Quaternion is a rotation.
type Quaternion struct {
	Real, I, J, K float32
}

func (q Quaternion) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", q.Real, q.I, q.J, q.K)
}

// Info is the metadata block at the start of a replay.
type Info struct {
	ModVersion  string
	GameVersion string
	Timestamp   int64 // unix seconds

	PlayerID   string
	PlayerName string
	Platform   string

	TrackingSystem string
	HMD            string
	Controller     string

	Hash       string
	SongName   string
	Mapper     string
	Difficulty string

	Score        int32
	Mode         string
	Environment  string
	Modifiers    []string
	JumpDistance float32
	LeftHanded   bool
	Height       float32

	StartTime float32
	FailTime  float32
	SongSpeed float32
}

// Time returns the recording timestamp in UTC.
func (i Info) Time() time.Time {
	return time.Unix(i.Timestamp, 0).UTC()
}

// Replay is a fully decoded BSOR file. Events are ordered by time, with
// equal times kept in the order they were read.
type Replay struct {
	Info   Info
	Events []Event
}

// Filter returns the events whose kind is in kinds, preserving order.
func (r *Replay) Filter(kinds ...EventKind) []Event {
	var set KindSet
	for _, k := range kinds {
		set = set.With(k)
	}
	out := make([]Event, 0, len(r.Events))
	for _, e := range r.Events {
		if set.Has(e.Kind()) {
			out = append(out, e)
		}
	}
	return out
}

// Frames returns all frame events in timeline order.
func (r *Replay) Frames() []*FrameEvent { return eventsOf[*FrameEvent](r.Events) }

// Notes returns all note events in timeline order.
func (r *Replay) Notes() []*NoteEvent { return eventsOf[*NoteEvent](r.Events) }

// Walls returns all wall events in timeline order.
func (r *Replay) Walls() []*WallEvent { return eventsOf[*WallEvent](r.Events) }

// Heights returns all height events in timeline order.
func (r *Replay) Heights() []*HeightEvent { return eventsOf[*HeightEvent](r.Events) }

// Pauses returns all pause events in timeline order.
func (r *Replay) Pauses() []*PauseEvent { return eventsOf[*PauseEvent](r.Events) }

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
