package containers

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/tKV/lib/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLayout(t *testing.T) {
	s := newMockStore()
	users := NewMap(1, StringKey(), ItemValue(encoding.String()))

	alice, err := users.Access(s).Get("alice")
	require.NoError(t, err)
	require.NoError(t, alice.Set("Alice A."))

	raw, ok := s.raw(1, 5, 'a', 'l', 'i', 'c', 'e')
	require.True(t, ok)
	assert.Equal(t, []byte("Alice A."), raw)

	v, ok, err := alice.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Alice A.", v)

	bob, err := users.Access(s).Get("bob")
	require.NoError(t, err)
	_, ok, err = bob.Get()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapEmptyKey(t *testing.T) {
	s := newMockStore()
	m := NewMap(4, StringKey(), ItemValue(encoding.String()))

	empty, err := m.Access(s).Get("")
	require.NoError(t, err)
	require.NoError(t, empty.Set("empty"))

	_, ok := s.raw(4, 0)
	assert.True(t, ok)

	entries, err := Collect(m.Access(s).Iter())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Key.Key)
}

func TestNestedMapLayout(t *testing.T) {
	s := newMockStore()
	scores := NewMap(2, StringKey(), MapValue(StringKey(), ItemValue(encoding.LittleEndian[uint64]())))

	inner, err := scores.Access(s).Get("a")
	require.NoError(t, err)
	item, err := inner.Get("bb")
	require.NoError(t, err)
	require.NoError(t, item.Set(7))

	raw, ok := s.raw(2, 1, 'a', 2, 'b', 'b')
	require.True(t, ok)
	assert.Equal(t, []byte{7, 0, 0, 0, 0, 0, 0, 0}, raw)

	// inner iteration sees keys relative to the inner map
	innerEntries, err := Collect(inner.Iter())
	require.NoError(t, err)
	require.Len(t, innerEntries, 1)
	assert.Equal(t, "bb", innerEntries[0].Key.Key)
	assert.Equal(t, uint64(7), innerEntries[0].Value)

	// outer iteration decodes the full composite key
	outerEntries, err := Collect(scores.Access(s).Iter())
	require.NoError(t, err)
	require.Len(t, outerEntries, 1)
	assert.Equal(t, "a", outerEntries[0].Key.Key)
	assert.Equal(t, "bb", outerEntries[0].Key.Rest.Key)
	assert.Equal(t, uint64(7), outerEntries[0].Value)
}

func TestMapKeyRoundTrip(t *testing.T) {
	m := NewMap(0, StringKey(), MapValue(UintKey[uint16](), ItemValue(encoding.String())))

	for _, k := range []string{"", "x", strings.Repeat("z", 255), "ünïcödé"} {
		seg, err := encodeSegment(StringKey(), k)
		require.NoError(t, err)
		innerSeg, err := encodeSegment(UintKey[uint16](), 513)
		require.NoError(t, err)

		decoded, err := m.DecodeKey(append(seg, innerSeg...))
		require.NoError(t, err)
		assert.Equal(t, k, decoded.Key)
		assert.Equal(t, uint16(513), decoded.Rest.Key)
	}
}

func TestMapDecodeKeyMalformed(t *testing.T) {
	m := NewMap(0, StringKey(), ItemValue(encoding.String()))

	tests := []struct {
		name string
		key  []byte
	}{
		{"empty", nil},
		{"length past end", []byte{5, 'a', 'b'}},
		{"length byte only", []byte{1}},
		{"trailing bytes for item", []byte{1, 'a', 9}},
		{"invalid utf-8", []byte{2, 0xff, 0xfe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.DecodeKey(tt.key)
			var keyErr *KeyDecodeError
			require.ErrorAs(t, err, &keyErr)
		})
	}
}

func TestMapDecodeKeyNeverPanics(t *testing.T) {
	m := NewMap(0, BytesKey(), MapValue(UintKey[uint32](), ItemValue(encoding.Bytes())))

	// every key up to two bytes plus some longer patterns
	var keys [][]byte
	for a := 0; a < 256; a++ {
		keys = append(keys, []byte{byte(a)})
		for b := 0; b < 256; b += 17 {
			keys = append(keys, []byte{byte(a), byte(b)})
		}
	}
	keys = append(keys, []byte{0, 4}, []byte{0, 4, 1, 2, 3}, []byte{255, 255, 255})

	for _, k := range keys {
		assert.NotPanics(t, func() { _, _ = m.DecodeKey(k) }, "key %x", k)
	}
}

func TestMapSegmentTooLong(t *testing.T) {
	s := newMockStore()
	m := NewMap(0, StringKey(), ItemValue(encoding.String())).Access(s)

	_, err := m.Get(strings.Repeat("x", 255))
	require.NoError(t, err)

	_, err = m.Get(strings.Repeat("x", 256))
	var encErr *KeyEncodeError
	require.ErrorAs(t, err, &encErr)
	assert.ErrorIs(t, err, ErrSegmentTooLong)
	assert.Equal(t, 256, encErr.Len)

	// the same applies to iteration bounds
	long := strings.Repeat("x", 300)
	for _, err := range m.Entries(&long, nil) {
		assert.ErrorIs(t, err, ErrSegmentTooLong)
	}
}

func TestSiblingContainersAreDisjoint(t *testing.T) {
	s := newMockStore()

	counter := NewItem(1, encoding.LittleEndian[uint64]())
	names := NewMap(2, StringKey(), ItemValue(encoding.String()))
	other := NewMap(3, StringKey(), ItemValue(encoding.String()))

	require.NoError(t, counter.Access(s).Set(1))
	for _, k := range []string{"a", "b"} {
		acc, err := names.Access(s).Get(k)
		require.NoError(t, err)
		require.NoError(t, acc.Set("name-"+k))
	}
	acc, err := other.Access(s).Get("a")
	require.NoError(t, err)
	require.NoError(t, acc.Set("other"))

	entries, err := Collect(names.Access(s).Iter())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "name-a", entries[0].Value)
	assert.Equal(t, "name-b", entries[1].Value)

	v, err := counter.Access(s).TryGet()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}

func TestMapIterationOrderIsByteOrder(t *testing.T) {
	s := newMockStore()
	m := NewMap(0, StringKey(), ItemValue(encoding.String())).Access(s)

	for _, k := range []string{"c", "aa", "b", "a"} {
		acc, err := m.Get(k)
		require.NoError(t, err)
		require.NoError(t, acc.Set(k))
	}

	var keys []string
	for k, err := range m.Keys() {
		require.NoError(t, err)
		keys = append(keys, k.Key)
	}

	// the length byte sorts first: all one byte keys come before "aa"
	assert.Equal(t, []string{"a", "b", "c", "aa"}, keys)
}

func TestMapEntriesBounds(t *testing.T) {
	s := newMockStore()
	m := NewMap(9, UintKey[uint32](), ItemValue(encoding.LittleEndian[uint32]())).Access(s)

	for i := uint32(1); i <= 10; i++ {
		acc, err := m.Get(i)
		require.NoError(t, err)
		require.NoError(t, acc.Set(i*i))
	}

	from, to := uint32(3), uint32(7)

	var got []uint32
	for entry, err := range m.Entries(&from, &to) {
		require.NoError(t, err)
		assert.Equal(t, entry.Key.Key*entry.Key.Key, entry.Value)
		got = append(got, entry.Key.Key)
	}
	assert.Equal(t, []uint32{3, 4, 5, 6}, got)

	got = nil
	for v, err := range m.Values() {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []uint32{1, 4, 9, 16, 25, 36, 49, 64, 81, 100}, got)

	got = nil
	for entry, err := range m.Entries(nil, &from) {
		require.NoError(t, err)
		got = append(got, entry.Key.Key)
	}
	assert.Equal(t, []uint32{1, 2}, got)
}

func TestMapSignedKeysOrder(t *testing.T) {
	s := newMockStore()
	m := NewMap(0, IntKey[int64](), ItemValue(encoding.String())).Access(s)

	for _, k := range []int64{3, -1, 0, -500, 42} {
		acc, err := m.Get(k)
		require.NoError(t, err)
		require.NoError(t, acc.Set("v"))
	}

	var keys []int64
	for k, err := range m.Keys() {
		require.NoError(t, err)
		keys = append(keys, k.Key)
	}
	assert.Equal(t, []int64{-500, -1, 0, 3, 42}, keys)
}

func TestMapRemoveEntry(t *testing.T) {
	s := newMockStore()
	m := NewMap(0, StringKey(), ItemValue(encoding.String())).Access(s)

	acc, err := m.Get("gone")
	require.NoError(t, err)
	require.NoError(t, acc.Set("soon"))
	require.NoError(t, acc.Remove())

	entries, err := Collect(m.Iter())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
