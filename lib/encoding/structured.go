package encoding

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/go-msgpack/codec"
)

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

type jsonImpl[T any] struct{}

// JSON returns a codec using encoding/json.
func JSON[T any]() Codec[T] {
	return jsonImpl[T]{}
}

func (jsonImpl[T]) Name() string { return "json" }

func (jsonImpl[T]) Encode(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &EncodeError{Codec: "json", Err: err}
	}
	return data, nil
}

func (jsonImpl[T]) Decode(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, &DecodeError{Codec: "json", Err: err}
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Gob
// --------------------------------------------------------------------------

type gobImpl[T any] struct{}

// Gob returns a codec using encoding/gob. Every value carries its own type
// description, so values are self contained but larger than with the other codecs.
func Gob[T any]() Codec[T] {
	return gobImpl[T]{}
}

func (gobImpl[T]) Name() string { return "gob" }

func (gobImpl[T]) Encode(v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, &EncodeError{Codec: "gob", Err: err}
	}
	return buf.Bytes(), nil
}

func (gobImpl[T]) Decode(data []byte) (T, error) {
	var v T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		var zero T
		return zero, &DecodeError{Codec: "gob", Err: err}
	}
	return v, nil
}

// --------------------------------------------------------------------------
// CBOR
// --------------------------------------------------------------------------

// cborDecMode decodes untyped maps as map[string]any so decoded values can be
// re-encoded as JSON.
var cborDecMode, _ = cbor.DecOptions{
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
}.DecMode()

type cborImpl[T any] struct{}

// CBOR returns a codec using github.com/fxamacker/cbor/v2.
func CBOR[T any]() Codec[T] {
	return cborImpl[T]{}
}

func (cborImpl[T]) Name() string { return "cbor" }

func (cborImpl[T]) Encode(v T) ([]byte, error) {
	data, err := cbor.Marshal(v)
	if err != nil {
		return nil, &EncodeError{Codec: "cbor", Err: err}
	}
	return data, nil
}

func (cborImpl[T]) Decode(data []byte) (T, error) {
	var v T
	if err := cborDecMode.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, &DecodeError{Codec: "cbor", Err: err}
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Msgpack
// --------------------------------------------------------------------------

var msgpackHandle = &codec.MsgpackHandle{RawToString: true}

type msgpackImpl[T any] struct{}

// Msgpack returns a codec using github.com/hashicorp/go-msgpack.
func Msgpack[T any]() Codec[T] {
	return msgpackImpl[T]{}
}

func (msgpackImpl[T]) Name() string { return "msgpack" }

func (msgpackImpl[T]) Encode(v T) ([]byte, error) {
	var data []byte
	if err := codec.NewEncoderBytes(&data, msgpackHandle).Encode(v); err != nil {
		return nil, &EncodeError{Codec: "msgpack", Err: err}
	}
	return data, nil
}

func (msgpackImpl[T]) Decode(data []byte) (T, error) {
	var v T
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(&v); err != nil {
		var zero T
		return zero, &DecodeError{Codec: "msgpack", Err: err}
	}
	return v, nil
}
