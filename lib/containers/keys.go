package containers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// KeyCodec converts map keys to and from the bytes of a key segment.
// Encoded segments must not exceed 255 bytes.
type KeyCodec[K any] interface {
	Bytes(k K) ([]byte, error)
	FromBytes(b []byte) (K, error)
}

// maxSegmentLen is the largest segment the single length byte can describe.
const maxSegmentLen = 255

// encodeSegment returns [len(seg)] ++ seg for the encoded key.
func encodeSegment[K any](codec KeyCodec[K], key K) ([]byte, error) {
	seg, err := codec.Bytes(key)
	if err != nil {
		return nil, &KeyEncodeError{Err: err}
	}
	if len(seg) > maxSegmentLen {
		return nil, &KeyEncodeError{Len: len(seg), Err: ErrSegmentTooLong}
	}
	out := make([]byte, 0, len(seg)+1)
	out = append(out, byte(len(seg)))
	return append(out, seg...), nil
}

// --------------------------------------------------------------------------
// String keys
// --------------------------------------------------------------------------

type stringKey struct{}

// StringKey stores string keys as their UTF-8 bytes.
func StringKey() KeyCodec[string] { return stringKey{} }

func (stringKey) Bytes(k string) ([]byte, error) {
	return []byte(k), nil
}

func (stringKey) FromBytes(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8 in string key")
	}
	return string(b), nil
}

// --------------------------------------------------------------------------
// Byte keys
// --------------------------------------------------------------------------

type bytesKey struct{}

// BytesKey stores byte slice keys unchanged.
func BytesKey() KeyCodec[[]byte] { return bytesKey{} }

func (bytesKey) Bytes(k []byte) ([]byte, error) {
	return k, nil
}

func (bytesKey) FromBytes(b []byte) ([]byte, error) {
	return concat(b, nil), nil
}

// --------------------------------------------------------------------------
// Integer keys
// --------------------------------------------------------------------------

// Integer keys are fixed width big endian, so that all keys of a map have the same
// segment length and the byte order of the entries equals the numeric order.

type uintKey[T constraints.Unsigned] struct{ size int }

// UintKey stores unsigned integer keys as fixed width big endian bytes.
func UintKey[T constraints.Unsigned]() KeyCodec[T] {
	var zero T
	return uintKey[T]{size: int(unsafe.Sizeof(zero))}
}

func (c uintKey[T]) Bytes(k T) ([]byte, error) {
	return putBigEndian(uint64(k), c.size), nil
}

func (c uintKey[T]) FromBytes(b []byte) (T, error) {
	u, err := bigEndian(b, c.size)
	return T(u), err
}

type intKey[T constraints.Signed] struct{ size int }

// IntKey stores signed integer keys as fixed width big endian bytes with the
// sign bit flipped, so negative keys sort before positive ones.
func IntKey[T constraints.Signed]() KeyCodec[T] {
	var zero T
	return intKey[T]{size: int(unsafe.Sizeof(zero))}
}

func (c intKey[T]) signBit() uint64 {
	return 1 << (c.size*8 - 1)
}

func (c intKey[T]) Bytes(k T) ([]byte, error) {
	return putBigEndian(uint64(k)^c.signBit(), c.size), nil
}

func (c intKey[T]) FromBytes(b []byte) (T, error) {
	u, err := bigEndian(b, c.size)
	if err != nil {
		return 0, err
	}
	return T(u ^ c.signBit()), nil
}

// putBigEndian returns the low size bytes of u in big endian order
func putBigEndian(u uint64, size int) []byte {
	return binary.BigEndian.AppendUint64(nil, u)[8-size:]
}

func bigEndian(b []byte, size int) (uint64, error) {
	if len(b) != size {
		return 0, fmt.Errorf("expected %d byte integer key, got %d bytes", size, len(b))
	}
	var buf [8]byte
	copy(buf[8-size:], b)
	return binary.BigEndian.Uint64(buf[:]), nil
}
