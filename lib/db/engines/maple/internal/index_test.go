package internal

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexInsertDelete(t *testing.T) {
	idx := NewIndex()

	require.True(t, idx.Insert("b"))
	require.True(t, idx.Insert("a"))
	require.False(t, idx.Insert("a"), "duplicate insert must be rejected")
	assert.Equal(t, 2, idx.Len())

	assert.True(t, idx.Contains("a"))
	assert.False(t, idx.Contains("c"))

	require.True(t, idx.Delete("a"))
	require.False(t, idx.Delete("a"))
	assert.Equal(t, 1, idx.Len())
	assert.False(t, idx.Contains("a"))
}

func TestIndexSeek(t *testing.T) {
	idx := NewIndex()
	for _, k := range []string{"\x01", "\x01\x00", "\x02", "\xff"} {
		idx.Insert(k)
	}

	tests := []struct {
		from      string
		inclusive bool
		want      string
		ok        bool
	}{
		{"", true, "\x01", true},
		{"\x01", true, "\x01", true},
		{"\x01", false, "\x01\x00", true},
		{"\x01\x00", false, "\x02", true},
		{"\x01\x00\x00", false, "\x02", true},
		{"\x03", true, "\xff", true},
		{"\xff", false, "", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/%v", tt.from, tt.inclusive), func(t *testing.T) {
			got, ok := idx.Seek(tt.from, tt.inclusive)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexOrderedWalk(t *testing.T) {
	idx := NewIndex()
	var keys []string
	for i := 0; i < 500; i++ {
		k := fmt.Sprintf("key-%d", i*7%500)
		keys = append(keys, k)
		idx.Insert(k)
	}
	sort.Strings(keys)

	var walked []string
	cursor, inclusive := "", true
	for {
		k, ok := idx.Seek(cursor, inclusive)
		if !ok {
			break
		}
		walked = append(walked, k)
		cursor, inclusive = k, false
	}

	assert.Equal(t, keys, walked)

	idx.Clear()
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Seek("", true)
	assert.False(t, ok)
}

func TestIndexReuseAfterClear(t *testing.T) {
	idx := NewIndex()
	for i := 0; i < 1000; i++ {
		idx.Insert(fmt.Sprintf("%04d", i))
	}
	assert.Equal(t, 1000, idx.Len())

	idx.Clear()
	require.True(t, idx.Insert("b"))
	require.True(t, idx.Insert("a"))
	assert.Equal(t, 2, idx.Len())

	k, ok := idx.Seek("a", false)
	require.True(t, ok)
	assert.Equal(t, "b", k)
	assert.Equal(t, indexDegree, idx.Degree())
}
