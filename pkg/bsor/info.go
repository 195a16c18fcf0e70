package bsor

import (
	"strconv"
	"strings"
)

const (
	// Magic is the little-endian value of the first four bytes of every BSOR file.
	Magic uint32 = 0x442D3D69
	// Version is the only supported format version.
	Version byte = 1
)

// Section tags, in the order the sections appear in a file.
const (
	TagInfo   byte = 0x00
	TagFrames byte = 0x01
	TagNotes  byte = 0x02
	TagWalls  byte = 0x03
	TagHeight byte = 0x04
	TagPauses byte = 0x05
)

func readHeader(r *Reader) error {
	magic, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if magic != Magic {
		return &MagicError{Actual: magic}
	}

	version, err := r.ReadByte()
	if err != nil {
		return err
	}
	if version != Version {
		return &UnsupportedVersionError{Version: version}
	}
	return nil
}

// expectTag reads one byte and checks it against the tag for section.
func expectTag(r *Reader, section string, tag byte) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b != tag {
		return &MalformedSectionError{Section: section, Expected: tag, Actual: b}
	}
	return nil
}

// fieldReader keeps the first error so a fixed run of field reads can be
// written without an if after each one.
type fieldReader struct {
	r   *Reader
	err error
}

func (f *fieldReader) str() string {
	if f.err != nil {
		return ""
	}
	var s string
	s, f.err = f.r.ReadString()
	return s
}

func (f *fieldReader) i32() int32 {
	if f.err != nil {
		return 0
	}
	var v int32
	v, f.err = f.r.ReadInt32()
	return v
}

func (f *fieldReader) f32() float32 {
	if f.err != nil {
		return 0
	}
	var v float32
	v, f.err = f.r.ReadFloat32()
	return v
}

func (f *fieldReader) boolean() bool {
	if f.err != nil {
		return false
	}
	var v bool
	v, f.err = f.r.ReadBool()
	return v
}

func (f *fieldReader) vec() Vector3 {
	if f.err != nil {
		return Vector3{}
	}
	var v Vector3
	v, f.err = f.r.ReadVector3()
	return v
}

func (f *fieldReader) quat() Quaternion {
	if f.err != nil {
		return Quaternion{}
	}
	var q Quaternion
	q, f.err = f.r.ReadQuaternion()
	return q
}

func readInfo(r *Reader) (Info, error) {
	if err := expectTag(r, "info", TagInfo); err != nil {
		return Info{}, err
	}

	f := &fieldReader{r: r}
	var info Info
	info.ModVersion = f.str()
	info.GameVersion = f.str()
	timestamp := f.str()
	if f.err != nil {
		return Info{}, f.err
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return Info{}, &NumericParseError{Field: "timestamp", Value: timestamp, Err: err}
	}
	info.Timestamp = ts

	info.PlayerID = f.str()
	info.PlayerName = f.str()
	info.Platform = f.str()
	info.TrackingSystem = f.str()
	info.HMD = f.str()
	info.Controller = f.str()
	info.Hash = f.str()
	info.SongName = f.str()
	info.Mapper = f.str()
	info.Difficulty = f.str()
	info.Score = f.i32()
	info.Mode = f.str()
	info.Environment = f.str()
	info.Modifiers = SplitModifiers(f.str())
	info.JumpDistance = f.f32()
	info.LeftHanded = f.boolean()
	info.Height = f.f32()
	info.StartTime = f.f32()
	info.FailTime = f.f32()
	info.SongSpeed = f.f32()
	if f.err != nil {
		return Info{}, f.err
	}
	return info, nil
}

// SplitModifiers splits the comma separated modifier list. Every run of
// non-comma bytes is kept verbatim; empty runs are dropped.
func SplitModifiers(s string) []string {
	mods := []string{}
	for _, m := range strings.Split(s, ",") {
		if m != "" {
			mods = append(mods, m)
		}
	}
	return mods
}
