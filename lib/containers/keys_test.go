package containers

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringKey(t *testing.T) {
	c := StringKey()

	b, err := c.Bytes("héllo")
	require.NoError(t, err)
	assert.Equal(t, []byte("héllo"), b)

	s, err := c.FromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	_, err = c.FromBytes([]byte{0xc3})
	assert.Error(t, err)
}

func TestBytesKeyCopies(t *testing.T) {
	c := BytesKey()

	src := []byte{1, 2, 3}
	out, err := c.FromBytes(src)
	require.NoError(t, err)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, out)
}

func TestUintKeyLayout(t *testing.T) {
	b, err := UintKey[uint32]().Bytes(0x01020304)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)

	b, err = UintKey[uint8]().Bytes(7)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, b)

	v, err := UintKey[uint64]().FromBytes([]byte{0, 0, 0, 0, 0, 0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(256), v)

	_, err = UintKey[uint64]().FromBytes([]byte{1, 0})
	assert.Error(t, err)
}

func TestIntKeyLayout(t *testing.T) {
	b, err := IntKey[int16]().Bytes(-1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7f, 0xff}, b)

	b, err = IntKey[int64]().Bytes(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0, 0, 0, 0, 0, 0, 1}, b)

	v, err := IntKey[int16]().FromBytes([]byte{0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, int16(math.MinInt16), v)
}

func TestIntKeyOrder(t *testing.T) {
	c := IntKey[int32]()
	values := []int32{math.MaxInt32, 1, 0, -1, math.MinInt32, 1000, -1000}

	encoded := make([][]byte, 0, len(values))
	for _, v := range values {
		b, err := c.Bytes(v)
		require.NoError(t, err)
		require.Len(t, b, 4)
		encoded = append(encoded, b)

		back, err := c.FromBytes(b)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}

	sort.Slice(encoded, func(i, j int) bool { return bytes.Compare(encoded[i], encoded[j]) < 0 })

	var decoded []int32
	for _, b := range encoded {
		v, err := c.FromBytes(b)
		require.NoError(t, err)
		decoded = append(decoded, v)
	}
	assert.Equal(t, []int32{math.MinInt32, -1000, -1, 0, 1, 1000, math.MaxInt32}, decoded)

	_, err := c.FromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestEncodeSegment(t *testing.T) {
	seg, err := encodeSegment(StringKey(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 'a', 'b', 'c'}, seg)

	seg, err = encodeSegment(BytesKey(), bytes.Repeat([]byte{0xff}, 255))
	require.NoError(t, err)
	assert.Len(t, seg, 256)
	assert.Equal(t, byte(255), seg[0])

	_, err = encodeSegment(BytesKey(), make([]byte, 256))
	assert.ErrorIs(t, err, ErrSegmentTooLong)
}
