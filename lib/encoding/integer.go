package encoding

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"
)

type littleEndianImpl[T constraints.Integer] struct {
	size int
}

// LittleEndian returns a codec storing integers as fixed width little endian bytes.
// The width is the size of T, e.g. uint64(42) is stored as 2a 00 00 00 00 00 00 00.
// Decoding rejects inputs of any other length.
func LittleEndian[T constraints.Integer]() Codec[T] {
	var zero T
	return &littleEndianImpl[T]{size: int(unsafe.Sizeof(zero))}
}

func (c *littleEndianImpl[T]) Name() string {
	return fmt.Sprintf("le-int%d", c.size*8)
}

func (c *littleEndianImpl[T]) Encode(v T) ([]byte, error) {
	// the low c.size bytes come first
	return binary.LittleEndian.AppendUint64(nil, uint64(v))[:c.size], nil
}

func (c *littleEndianImpl[T]) Decode(data []byte) (T, error) {
	if len(data) != c.size {
		return 0, &DecodeError{
			Codec: c.Name(),
			Err:   fmt.Errorf("expected %d bytes, got %d", c.size, len(data)),
		}
	}
	var buf [8]byte
	copy(buf[:], data)
	u := binary.LittleEndian.Uint64(buf[:])
	// conversion truncates to the width of T, restoring the sign of signed types
	return T(u), nil
}
