package bsor

import (
	"fmt"
	"strings"
)

// EventKind identifies which section an event was read from.
type EventKind uint8

const (
	KindFrame EventKind = iota
	KindNote
	KindWall
	KindHeight
	KindPause
)

// AllKinds lists every kind in section order.
var AllKinds = []EventKind{KindFrame, KindNote, KindWall, KindHeight, KindPause}

func (k EventKind) String() string {
	switch k {
	case KindFrame:
		return "FRAME"
	case KindNote:
		return "NOTE"
	case KindWall:
		return "WALL"
	case KindHeight:
		return "HEIGHT"
	case KindPause:
		return "PAUSE"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Letter is the single-character selector used on the command line.
func (k EventKind) Letter() byte {
	if k > KindPause {
		return '?'
	}
	return "fnwhp"[k]
}

// KindSet is a bitset of event kinds.
type KindSet uint8

// AllKindsSet selects every kind.
const AllKindsSet KindSet = 1<<KindFrame | 1<<KindNote | 1<<KindWall | 1<<KindHeight | 1<<KindPause

// With returns s plus k.
func (s KindSet) With(k EventKind) KindSet { return s | 1<<k }

// Has reports whether k is in s.
func (s KindSet) Has(k EventKind) bool { return s&(1<<k) != 0 }

// UnknownKindError reports a selector letter that names no event kind.
type UnknownKindError struct {
	Letter rune
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown event type '%c'", e.Letter)
}

// ParseKinds converts letters like "fnw" into a KindSet.
// Unknown letters yield an *UnknownKindError for the first offender.
func ParseKinds(letters string) (KindSet, error) {
	var set KindSet
	for _, ch := range letters {
		idx := strings.IndexRune("fnwhp", ch)
		if idx < 0 {
			return 0, &UnknownKindError{Letter: ch}
		}
		set = set.With(EventKind(idx))
	}
	return set, nil
}

// Event is one entry of the replay timeline. It is implemented only by the
// five event types in this package; use a type switch to get the payload.
type Event interface {
	EventTime() float32
	Kind() EventKind
	event()
}

// FrameEvent is a tracked pose sample.
type FrameEvent struct {
	Time         float32
	FPS          int32
	HeadPos      Vector3
	HeadRot      Quaternion
	LeftHandPos  Vector3
	LeftHandRot  Quaternion
	RightHandPos Vector3
	RightHandRot Quaternion
}

// NoteType is the outcome of a note.
type NoteType int32

const (
	NoteGoodHit NoteType = 0
	NoteBadHit  NoteType = 1
	NoteMiss    NoteType = 2
	NoteBomb    NoteType = 3
)

// HasCutData reports whether notes of this type carry a CutData block.
func (t NoteType) HasCutData() bool {
	return t == NoteGoodHit || t == NoteBadHit
}

func (t NoteType) String() string {
	switch t {
	case NoteGoodHit:
		return "GOOD_HIT"
	case NoteBadHit:
		return "BAD_HIT"
	case NoteMiss:
		return "MISS"
	case NoteBomb:
		return "BOMB"
	default:
		return fmt.Sprintf("NoteType(%d)", int32(t))
	}
}

// CutData describes the saber swing that hit a note.
type CutData struct {
	SpeedOK         bool
	DirectionOK     bool
	SaberTypeOK     bool
	CutTooSoon      bool
	SaberSpeed      float32
	SaberDir        Vector3
	SaberType       int32
	TimeDeviation   float32
	CutDirDeviation float32
	CutPoint        Vector3
	CutNormal       Vector3
	CutDistToCenter float32
	CutAngle        float32
	BeforeCutRating float32
	AfterCutRating  float32
}

// NoteEvent is a note being hit, missed, or a bomb. CutData is non-nil
// exactly when Type.HasCutData() is true.
type NoteEvent struct {
	ID        int32
	Time      float32
	SpawnTime float32
	Type      NoteType
	CutData   *CutData
}

// WallEvent is the player entering a wall.
type WallEvent struct {
	ID        int32
	Energy    float32
	Time      float32
	SpawnTime float32
}

// HeightEvent is a change in the player's calibrated height.
type HeightEvent struct {
	Height float32
	Time   float32
}

// PauseEvent is a pause of Duration at Time.
type PauseEvent struct {
	Duration int64
	Time     float32
}

func (e *FrameEvent) EventTime() float32  { return e.Time }
func (e *NoteEvent) EventTime() float32   { return e.Time }
func (e *WallEvent) EventTime() float32   { return e.Time }
func (e *HeightEvent) EventTime() float32 { return e.Time }
func (e *PauseEvent) EventTime() float32  { return e.Time }

func (*FrameEvent) Kind() EventKind  { return KindFrame }
func (*NoteEvent) Kind() EventKind   { return KindNote }
func (*WallEvent) Kind() EventKind   { return KindWall }
func (*HeightEvent) Kind() EventKind { return KindHeight }
func (*PauseEvent) Kind() EventKind  { return KindPause }

func (*FrameEvent) event()  {}
func (*NoteEvent) event()   {}
func (*WallEvent) event()   {}
func (*HeightEvent) event() {}
func (*PauseEvent) event()  {}
