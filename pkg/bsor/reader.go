package bsor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxStringChunk bounds how much is allocated up front for a string payload.
// Longer strings are still read, just grown as bytes actually arrive.
const maxStringChunk = 64 * 1024

// Reader is a forward-only little-endian cursor over a BSOR byte stream.
// Every read either returns a complete value or an error; a failed read
// never yields a partial value.
type Reader struct {
	r   io.Reader
	off int64
	buf [8]byte
}

// NewReader wraps r for primitive reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// fill reads exactly n bytes into dst.
func (r *Reader) fill(dst []byte) error {
	n, err := io.ReadFull(r.r, dst)
	start := r.off
	r.off += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return &TruncatedError{Offset: start, Want: len(dst), Got: n}
		}
		return fmt.Errorf("error reading at offset %d: %w", start, err)
	}
	return nil
}

// ReadByte reads one byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.fill(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadBool reads one byte; any nonzero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadUint32 reads a 4-byte little-endian unsigned integer.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.fill(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

// ReadInt32 reads a 4-byte little-endian signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads an 8-byte little-endian signed integer.
func (r *Reader) ReadInt64() (int64, error) {
	if err := r.fill(r.buf[:8]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(r.buf[:8])), nil
}

// ReadFloat32 reads 4 bytes and reinterprets the bits as IEEE-754 single precision.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadString reads a 4-byte length followed by that many raw bytes.
func (r *Reader) ReadString() (string, error) {
	start := r.off
	n, err := r.ReadInt32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: %d at offset %d", ErrNegativeLength, n, start)
	}
	if n == 0 {
		return "", nil
	}

	// a corrupt length on a short file must not allocate gigabytes
	if n <= maxStringChunk {
		b := make([]byte, n)
		if err := r.fill(b); err != nil {
			return "", err
		}
		return string(b), nil
	}

	payloadStart := r.off
	b := make([]byte, 0, maxStringChunk)
	for len(b) < int(n) {
		chunk := min(int(n)-len(b), maxStringChunk)
		b = append(b, make([]byte, chunk)...)
		if err := r.fill(b[len(b)-chunk:]); err != nil {
			var te *TruncatedError
			if errors.As(err, &te) {
				return "", &TruncatedError{Offset: payloadStart, Want: int(n), Got: len(b) - chunk + te.Got}
			}
			return "", err
		}
	}
	return string(b), nil
}

// ReadVector3 reads three floats: x, y, z.
func (r *Reader) ReadVector3() (Vector3, error) {
	var v Vector3
	var err error
	if v.X, err = r.ReadFloat32(); err != nil {
		return Vector3{}, err
	}
	if v.Y, err = r.ReadFloat32(); err != nil {
		return Vector3{}, err
	}
	if v.Z, err = r.ReadFloat32(); err != nil {
		return Vector3{}, err
	}
	return v, nil
}

// ReadQuaternion reads four floats: real, i, j, k.
func (r *Reader) ReadQuaternion() (Quaternion, error) {
	var q Quaternion
	var err error
	if q.Real, err = r.ReadFloat32(); err != nil {
		return Quaternion{}, err
	}
	if q.I, err = r.ReadFloat32(); err != nil {
		return Quaternion{}, err
	}
	if q.J, err = r.ReadFloat32(); err != nil {
		return Quaternion{}, err
	}
	if q.K, err = r.ReadFloat32(); err != nil {
		return Quaternion{}, err
	}
	return q, nil
}
