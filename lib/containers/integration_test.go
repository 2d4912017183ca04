package containers_test

import (
	"testing"

	"github.com/ValentinKolb/tKV/lib/containers"
	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/maple"
	"github.com/ValentinKolb/tKV/lib/encoding"
	"github.com/ValentinKolb/tKV/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name  string   `json:"name" cbor:"name"`
	Tags  []string `json:"tags" cbor:"tags"`
	Score int      `json:"score" cbor:"score"`
}

var (
	visits   = containers.NewItem(0, encoding.LittleEndian[uint64]())
	profiles = containers.NewMap(1, containers.StringKey(), containers.ItemValue(encoding.CBOR[profile]()))
	follows  = containers.NewMap(2, containers.StringKey(),
		containers.MapValue(containers.StringKey(), containers.ItemValue(encoding.JSON[bool]())))
)

func newStore() lstore.Store {
	return lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
}

func TestContainersOnLocalStore(t *testing.T) {
	s := newStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, visits.Access(s).Update(func(old uint64, _ bool) uint64 { return old + 1 }))
	}
	n, err := visits.Access(s).TryGet()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	for _, p := range []profile{
		{Name: "alice", Tags: []string{"admin"}, Score: 10},
		{Name: "bob", Score: 3},
	} {
		acc, err := profiles.Access(s).Get(p.Name)
		require.NoError(t, err)
		require.NoError(t, acc.Set(p))
	}

	for _, edge := range [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "alice"}} {
		inner, err := follows.Access(s).Get(edge[0])
		require.NoError(t, err)
		acc, err := inner.Get(edge[1])
		require.NoError(t, err)
		require.NoError(t, acc.Set(true))
	}

	all, err := containers.Collect(profiles.Access(s).Iter())
	require.NoError(t, err)
	require.Len(t, all, 2)
	// the length byte sorts the shorter "bob" before "alice"
	assert.Equal(t, "bob", all[0].Key.Key)
	assert.Equal(t, "alice", all[1].Key.Key)
	assert.Equal(t, "alice", all[1].Value.Name)
	assert.Equal(t, []string{"admin"}, all[1].Value.Tags)

	aliceFollows, err := follows.Access(s).Get("alice")
	require.NoError(t, err)
	var followed []string
	for k, err := range aliceFollows.Keys() {
		require.NoError(t, err)
		followed = append(followed, k.Key)
	}
	assert.Equal(t, []string{"bob", "carol"}, followed)

	edges, err := containers.Collect(follows.Access(s).Iter())
	require.NoError(t, err)
	assert.Len(t, edges, 3)

	info, err := s.GetDBInfo()
	require.NoError(t, err)
	assert.Equal(t, 1+2+3, info.KeyCount)
}

func TestRemoveWhileIterating(t *testing.T) {
	s := newStore()
	m := profiles.Access(s)

	for _, name := range []string{"a", "b", "c", "d"} {
		acc, err := m.Get(name)
		require.NoError(t, err)
		require.NoError(t, acc.Set(profile{Name: name}))
	}

	var seen []string
	for entry, err := range m.Iter() {
		require.NoError(t, err)
		seen = append(seen, entry.Key.Key)

		acc, err := m.Get(entry.Key.Key)
		require.NoError(t, err)
		require.NoError(t, acc.Remove())
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, seen)

	left, err := containers.Collect(m.Iter())
	require.NoError(t, err)
	assert.Empty(t, left)
}
