// Package encoding provides the value codecs used by the typed containers.
//
// A Codec[T] converts a value of type T to and from the bytes kept in the store.
// The package ships:
//
//   - LittleEndian[T]: fixed width little endian integers (any integer type)
//   - String, Bytes: raw text (UTF-8 checked on decode) and raw bytes
//   - JSON[T]: encoding/json
//   - Gob[T]: encoding/gob, self describing per value
//   - CBOR[T]: github.com/fxamacker/cbor/v2
//   - Msgpack[T]: github.com/hashicorp/go-msgpack
//
// All codecs report failures as *EncodeError or *DecodeError carrying the codec
// name, so callers can tell a bad value apart from a failing backend with errors.As.
package encoding
