package transaction

import (
	"io"

	"github.com/pkg/errors"
)

// Collection lengths are encoded as a "short vec" length prefix: a
// little-endian base-128 integer of at most three bytes, carrying at most
// sixteen bits. Encodings must be minimal, so every length has exactly one
// valid byte representation.

const (
	// maxShortVecBytes is the maximum encoded size of a short vec length.
	maxShortVecBytes = 3

	// maxShortVecValue is the maximum length a short vec prefix can carry.
	maxShortVecValue = 0xFFFF
)

var (
	// ErrShortVecOutOfRange indicates a short vec length that doesn't fit
	// in sixteen bits.
	ErrShortVecOutOfRange = errors.New("short vec length out of range")

	// ErrShortVecNonMinimal indicates a short vec length with a redundant
	// byte representation.
	ErrShortVecNonMinimal = errors.New("short vec length is not minimally encoded")
)

// ReadShortVecLen reads a short vec length prefix from r.
func ReadShortVecLen(r io.ByteReader) (uint16, error) {
	value := uint32(0)
	for i := 0; i < maxShortVecBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "failed to read short vec length byte")
		}

		// A zero continuation byte would encode the same value in fewer
		// bytes.
		if i > 0 && b == 0 {
			return 0, errors.WithStack(ErrShortVecNonMinimal)
		}

		value |= uint32(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			if value > maxShortVecValue {
				return 0, errors.WithStack(ErrShortVecOutOfRange)
			}
			return uint16(value), nil
		}
	}

	// Three continuation bits never fit in sixteen bits.
	return 0, errors.WithStack(ErrShortVecOutOfRange)
}

// WriteShortVecLen writes the minimal short vec encoding of value to w.
func WriteShortVecLen(w io.Writer, value uint16) error {
	remaining := uint32(value)
	for {
		b := byte(remaining & 0x7f)
		remaining >>= 7
		if remaining == 0 {
			_, err := w.Write([]byte{b})
			return errors.WithStack(err)
		}
		if _, err := w.Write([]byte{b | 0x80}); err != nil {
			return errors.WithStack(err)
		}
	}
}
