package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueCodecs(t *testing.T) {
	tests := []struct {
		codec string
		text  string
		raw   []byte
		out   string // formatted output, defaults to text
	}{
		{codec: "string", text: "hello", raw: []byte("hello")},
		{codec: "hex", text: "00ff10", raw: []byte{0x00, 0xff, 0x10}},
		{codec: "uint64", text: "42", raw: []byte{0x2a, 0, 0, 0, 0, 0, 0, 0}},
		{codec: "int64", text: "-1", raw: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{codec: "json", text: `{ "a": [1, 2] }`, raw: []byte(`{"a":[1,2]}`), out: `{"a":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			c, err := ValueCodecByName(tt.codec)
			require.NoError(t, err)
			assert.Equal(t, tt.codec, c.Name())

			raw, err := c.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, raw)

			want := tt.out
			if want == "" {
				want = tt.text
			}
			out, err := c.Format(raw)
			require.NoError(t, err)
			assert.Equal(t, want, out)
		})
	}
}

func TestCBORValueCodec(t *testing.T) {
	c, err := ValueCodecByName("cbor")
	require.NoError(t, err)

	raw, err := c.Parse(`{"name":"alice","tags":["a","b"]}`)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "{", "stored form is cbor, not json")

	out, err := c.Format(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"alice","tags":["a","b"]}`, out)
}

func TestKeyCodecs(t *testing.T) {
	tests := []struct {
		codec string
		text  string
		seg   []byte
	}{
		{codec: "string", text: "user", seg: []byte("user")},
		{codec: "hex", text: "beef", seg: []byte{0xbe, 0xef}},
		{codec: "uint64", text: "258", seg: []byte{0, 0, 0, 0, 0, 0, 0x01, 0x02}},
		{codec: "int64", text: "-1", seg: []byte{0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			c, err := KeyCodecByName(tt.codec)
			require.NoError(t, err)

			seg, err := c.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.seg, seg)

			out, err := c.Format(seg)
			require.NoError(t, err)
			assert.Equal(t, tt.text, out)
		})
	}
}

func TestCodecErrors(t *testing.T) {
	_, err := ValueCodecByName("yaml")
	assert.ErrorContains(t, err, "cbor, hex, int64, json, string, uint64")

	_, err = KeyCodecByName("json")
	assert.Error(t, err)

	c, err := ValueCodecByName("uint64")
	require.NoError(t, err)

	_, err = c.Parse("-3")
	assert.ErrorContains(t, err, "invalid uint64")

	_, err = c.Format([]byte{1, 2, 3})
	assert.Error(t, err, "wrong width must not decode")

	c, err = ValueCodecByName("json")
	require.NoError(t, err)
	_, err = c.Parse("{")
	assert.Error(t, err)

	c, err = KeyCodecByName("string")
	require.NoError(t, err)
	_, err = c.Format([]byte{0xff})
	assert.Error(t, err)
}

func TestParseBytes(t *testing.T) {
	b, err := ParseBytes("abc", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)

	b, err = ParseBytes("616263", true)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
	assert.Equal(t, "616263", FormatBytes(b, true))
	assert.Equal(t, "abc", FormatBytes(b, false))

	_, err = ParseBytes("xyz", true)
	assert.Error(t, err)
}

func TestWrapString(t *testing.T) {
	wrapped := WrapString("one two three four five six seven eight nine ten eleven twelve")
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("short   text"))
}
