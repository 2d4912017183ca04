package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ValentinKolb/tKV/lib/containers"
	"github.com/ValentinKolb/tKV/lib/encoding"
)

// TextCodec converts between command line text and the stored bytes of a value or
// of a map key segment. It lets the typed kv commands pick a codec at runtime.
type TextCodec interface {
	Name() string
	Parse(text string) ([]byte, error)
	Format(data []byte) (string, error)
}

// textCodec binds a typed codec to a text representation of T
type textCodec[T any] struct {
	name   string
	encode func(T) ([]byte, error)
	decode func([]byte) (T, error)
	parse  func(string) (T, error)
	format func(T) (string, error)
}

func (c textCodec[T]) Name() string {
	return c.name
}

func (c textCodec[T]) Parse(text string) ([]byte, error) {
	v, err := c.parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", c.name, text, err)
	}
	return c.encode(v)
}

func (c textCodec[T]) Format(data []byte) (string, error) {
	v, err := c.decode(data)
	if err != nil {
		return "", err
	}
	return c.format(v)
}

func fromValueCodec[T any](name string, codec encoding.Codec[T], parse func(string) (T, error), format func(T) (string, error)) TextCodec {
	return textCodec[T]{name: name, encode: codec.Encode, decode: codec.Decode, parse: parse, format: format}
}

func fromKeyCodec[T any](name string, codec containers.KeyCodec[T], parse func(string) (T, error), format func(T) (string, error)) TextCodec {
	return textCodec[T]{name: name, encode: codec.Bytes, decode: codec.FromBytes, parse: parse, format: format}
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

var (
	valueCodecs = map[string]TextCodec{
		"string": fromValueCodec("string", encoding.String(), parseString, formatString),
		"hex":    fromValueCodec("hex", encoding.Bytes(), hex.DecodeString, formatHex),
		"uint64": fromValueCodec("uint64", encoding.LittleEndian[uint64](), parseUint, formatUint),
		"int64":  fromValueCodec("int64", encoding.LittleEndian[int64](), parseInt, formatInt),
		"json":   fromValueCodec("json", encoding.JSON[any](), parseJSON, formatJSON),
		"cbor":   fromValueCodec("cbor", encoding.CBOR[any](), parseJSON, formatJSON),
	}

	keyCodecs = map[string]TextCodec{
		"string": fromKeyCodec("string", containers.StringKey(), parseString, formatString),
		"hex":    fromKeyCodec("hex", containers.BytesKey(), hex.DecodeString, formatHex),
		"uint64": fromKeyCodec("uint64", containers.UintKey[uint64](), parseUint, formatUint),
		"int64":  fromKeyCodec("int64", containers.IntKey[int64](), parseInt, formatInt),
	}
)

// ValueCodecByName returns the value codec registered under name
func ValueCodecByName(name string) (TextCodec, error) {
	c, ok := valueCodecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown value codec %q (expected one of: %s)", name, codecNames(valueCodecs))
	}
	return c, nil
}

// KeyCodecByName returns the map key codec registered under name.
// Parse yields the key segment without the length byte, the map adds it.
func KeyCodecByName(name string) (TextCodec, error) {
	c, ok := keyCodecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown key codec %q (expected one of: %s)", name, codecNames(keyCodecs))
	}
	return c, nil
}

func codecNames(m map[string]TextCodec) string {
	return strings.Join(slices.Sorted(maps.Keys(m)), ", ")
}

// --------------------------------------------------------------------------
// Text Conversions
// --------------------------------------------------------------------------

func parseString(s string) (string, error) { return s, nil }

func formatString(s string) (string, error) { return s, nil }

func formatHex(b []byte) (string, error) { return hex.EncodeToString(b), nil }

func parseUint(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }

func formatUint(v uint64) (string, error) { return strconv.FormatUint(v, 10), nil }

func parseInt(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func formatInt(v int64) (string, error) { return strconv.FormatInt(v, 10), nil }

// parseJSON reads any JSON document. Structured codecs (json, cbor) take their input as JSON.
func parseJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func formatJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
