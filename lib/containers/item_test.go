package containers

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/tKV/lib/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCodec fails to encode negative numbers
type failingCodec struct {
	encoding.Codec[int64]
}

func (c failingCodec) Encode(v int64) ([]byte, error) {
	if v < 0 {
		return nil, &encoding.EncodeError{Codec: "failing", Err: errors.New("negative value")}
	}
	return c.Codec.Encode(v)
}

func TestItemBasic(t *testing.T) {
	s := newMockStore()

	item0 := NewItem(0, encoding.LittleEndian[uint64]())
	item1 := NewItem(1, encoding.LittleEndian[uint64]())

	require.NoError(t, item0.Access(s).Set(42))

	raw, ok := s.raw(0)
	require.True(t, ok)
	assert.Equal(t, []byte{0x2a, 0, 0, 0, 0, 0, 0, 0}, raw)

	v, ok, err := item0.Access(s).Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), v)

	v, ok, err = item1.Access(s).Get()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)

	_, ok = s.raw(1)
	assert.False(t, ok)
}

func TestItemAtMultiBytePrefix(t *testing.T) {
	s := newMockStore()
	item := NewItemAt([]byte("config/version"), encoding.String())

	require.NoError(t, item.Access(s).Set("v1"))

	raw, ok := s.raw([]byte("config/version")...)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), raw)
}

func TestItemTryGetAndGetOr(t *testing.T) {
	s := newMockStore()
	access := NewItem(3, encoding.String()).Access(s)

	_, err := access.TryGet()
	assert.ErrorIs(t, err, ErrEmpty)
	assert.True(t, IsEmpty(err))

	v, err := access.GetOr("default")
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	require.NoError(t, access.Set("stored"))

	v, err = access.TryGet()
	require.NoError(t, err)
	assert.Equal(t, "stored", v)

	v, err = access.GetOr("default")
	require.NoError(t, err)
	assert.Equal(t, "stored", v)
}

func TestItemDecodeFailure(t *testing.T) {
	s := newMockStore()
	s.put([]byte{0}, []byte{1, 2, 3}) // not 8 bytes

	access := NewItem(0, encoding.LittleEndian[uint64]()).Access(s)

	_, ok, err := access.Get()
	assert.True(t, ok, "a corrupt value is still present")
	var decErr *encoding.DecodeError
	require.ErrorAs(t, err, &decErr)

	_, err = access.TryGet()
	require.ErrorAs(t, err, &decErr)
	assert.False(t, IsEmpty(err), "decode failures must be distinguishable from absence")

	_, err = access.GetOr(7)
	require.ErrorAs(t, err, &decErr)
}

func TestItemRemove(t *testing.T) {
	s := newMockStore()
	access := NewItem(0, encoding.LittleEndian[uint32]()).Access(s)

	require.NoError(t, access.Set(1))
	require.NoError(t, access.Remove())
	require.NoError(t, access.Remove(), "remove must be idempotent")

	_, ok, err := access.Get()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestItemUpdate(t *testing.T) {
	s := newMockStore()
	access := NewItem(0, encoding.LittleEndian[uint64]()).Access(s)

	increment := func(old uint64, ok bool) uint64 {
		if !ok {
			return 1
		}
		return old + 1
	}

	require.NoError(t, access.Update(increment))
	require.NoError(t, access.Update(increment))
	require.NoError(t, access.Update(increment))

	v, err := access.TryGet()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}

func TestItemUpdatePhases(t *testing.T) {
	t.Run("decode", func(t *testing.T) {
		s := newMockStore()
		s.put([]byte{0}, []byte{1})

		called := false
		err := NewItem(0, encoding.LittleEndian[uint64]()).Access(s).Update(func(old uint64, ok bool) uint64 {
			called = true
			return old
		})

		var updErr *UpdateError
		require.ErrorAs(t, err, &updErr)
		assert.Equal(t, UpdatePhaseDecode, updErr.Phase)
		assert.False(t, called)

		var decErr *encoding.DecodeError
		assert.ErrorAs(t, err, &decErr)
	})

	t.Run("encode", func(t *testing.T) {
		s := newMockStore()
		item := NewItem(0, encoding.Codec[int64](failingCodec{encoding.LittleEndian[int64]()}))

		err := item.Access(s).Update(func(int64, bool) int64 { return -1 })

		var updErr *UpdateError
		require.ErrorAs(t, err, &updErr)
		assert.Equal(t, UpdatePhaseEncode, updErr.Phase)

		var encErr *encoding.EncodeError
		assert.ErrorAs(t, err, &encErr)

		_, ok := s.raw(0)
		assert.False(t, ok, "nothing may be written when encoding fails")
	})

	t.Run("store", func(t *testing.T) {
		s := newMockStore()
		s.setErr = errors.New("read only")

		err := NewItem(0, encoding.String()).Access(s).Update(func(string, bool) string { return "x" })

		var updErr *UpdateError
		require.ErrorAs(t, err, &updErr)
		assert.Equal(t, UpdatePhaseStore, updErr.Phase)
		assert.EqualError(t, updErr.Err, "read only")
	})
}

func TestItemUpdateIsLastWriteWins(t *testing.T) {
	s := newMockStore()
	item := NewItem(0, encoding.LittleEndian[uint64]())
	require.NoError(t, item.Access(s).Set(10))

	// another writer changes the value between the read and the write of Update
	err := item.Access(s).Update(func(old uint64, _ bool) uint64 {
		require.NoError(t, item.Access(s).Set(100))
		return old + 1
	})
	require.NoError(t, err)

	v, err := item.Access(s).TryGet()
	require.NoError(t, err)
	assert.Equal(t, uint64(11), v, "the concurrent write is overwritten")
}

func TestItemStoreErrorsPropagate(t *testing.T) {
	s := newMockStore()
	s.getErr = errors.New("backend down")
	access := NewItem(0, encoding.String()).Access(s)

	_, _, err := access.Get()
	assert.EqualError(t, err, "backend down")

	_, err = access.TryGet()
	assert.EqualError(t, err, "backend down")

	s.setErr = errors.New("backend down")
	assert.EqualError(t, access.Set("x"), "backend down")
}

func TestItemSetEncodeError(t *testing.T) {
	s := newMockStore()
	item := NewItem(0, encoding.Codec[int64](failingCodec{encoding.LittleEndian[int64]()}))

	err := item.Access(s).Set(-5)
	var encErr *encoding.EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Empty(t, s.data)
}

func TestItemDecodeKey(t *testing.T) {
	item := NewItem(0, encoding.String())

	_, err := item.DecodeKey(nil)
	assert.NoError(t, err)

	_, err = item.DecodeKey([]byte{})
	assert.NoError(t, err)

	_, err = item.DecodeKey([]byte{1})
	var keyErr *KeyDecodeError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, []byte{1}, keyErr.Key)
}
