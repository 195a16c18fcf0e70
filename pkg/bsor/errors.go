package bsor

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure kind. Typed errors below match these via errors.Is.
var (
	ErrMagicMismatch      = errors.New("incorrect magic number")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrMalformedSection   = errors.New("malformed section")
	ErrTruncated          = errors.New("truncated input")
	ErrNumericParse       = errors.New("numeric parse error")
	ErrNegativeLength     = errors.New("negative string length")
)

// MagicError is returned when the first four bytes are not the BSOR magic.
type MagicError struct {
	Actual uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("incorrect magic number: expected 0x%08X, got 0x%08X", Magic, e.Actual)
}

func (e *MagicError) Is(target error) bool { return target == ErrMagicMismatch }

// UnsupportedVersionError is returned for any version byte other than 1.
type UnsupportedVersionError struct {
	Version byte
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unrecognized version number %d", e.Version)
}

func (e *UnsupportedVersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// MalformedSectionError is returned when a section tag byte does not match
// the tag expected at that position.
type MalformedSectionError struct {
	Section  string
	Expected byte
	Actual   byte
}

func (e *MalformedSectionError) Error() string {
	return fmt.Sprintf("header for %s section should have byte 0x%02X, got 0x%02X", e.Section, e.Expected, e.Actual)
}

func (e *MalformedSectionError) Is(target error) bool { return target == ErrMalformedSection }

// TruncatedError is returned when fewer bytes remain than a read requires.
type TruncatedError struct {
	Offset int64 // position of the failed read
	Want   int   // bytes the read needed
	Got    int   // bytes that were available
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated input at offset %d: wanted %d bytes, got %d", e.Offset, e.Want, e.Got)
}

func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }

// NumericParseError is returned when the info timestamp is not a decimal integer.
type NumericParseError struct {
	Field string
	Value string
	Err   error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("error parsing %s %q as integer: %v", e.Field, e.Value, e.Err)
}

func (e *NumericParseError) Is(target error) bool { return target == ErrNumericParse }

func (e *NumericParseError) Unwrap() error { return e.Err }
