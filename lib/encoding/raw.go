package encoding

import (
	"errors"
	"unicode/utf8"
)

// --------------------------------------------------------------------------
// String
// --------------------------------------------------------------------------

type stringImpl struct{}

// String returns a codec storing strings as their raw UTF-8 bytes.
// Decoding rejects invalid UTF-8.
func String() Codec[string] {
	return stringImpl{}
}

func (stringImpl) Name() string { return "string" }

func (stringImpl) Encode(v string) ([]byte, error) {
	return []byte(v), nil
}

func (stringImpl) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &DecodeError{Codec: "string", Err: errors.New("invalid utf-8")}
	}
	return string(data), nil
}

// --------------------------------------------------------------------------
// Bytes
// --------------------------------------------------------------------------

type bytesImpl struct{}

// Bytes returns a codec storing byte slices unchanged.
func Bytes() Codec[[]byte] {
	return bytesImpl{}
}

func (bytesImpl) Name() string { return "bytes" }

func (bytesImpl) Encode(v []byte) ([]byte, error) {
	return append([]byte(nil), v...), nil
}

func (bytesImpl) Decode(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}
