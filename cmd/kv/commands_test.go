package kv

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/maple"
	"github.com/ValentinKolb/tKV/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore() lstore.Store {
	return lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
}

func TestRawCommands(t *testing.T) {
	s := newLocalStore()
	var out bytes.Buffer

	require.NoError(t, runSet(&out, s, "user/1", "alice", false))
	require.NoError(t, runSet(&out, s, "757365722f32", "626f62", true))

	out.Reset()
	require.NoError(t, runGet(&out, s, "user/2", false))
	assert.Equal(t, "key=user/2, found=true, value=bob\n", out.String())

	out.Reset()
	require.NoError(t, runScan(&out, s, []string{"user/"}, 0, false))
	assert.Equal(t, "user/1=alice\nuser/2=bob\n(2 pairs)\n", out.String())

	out.Reset()
	require.NoError(t, runScan(&out, s, nil, 1, true))
	assert.Equal(t, "757365722f31=616c696365\n(1 pairs)\n", out.String())

	out.Reset()
	require.NoError(t, runDelete(&out, s, "user/1", false))
	require.NoError(t, runGet(&out, s, "user/1", false))
	assert.Contains(t, out.String(), "found=false")

	assert.Error(t, runGet(&out, s, "zz", true))
}

func TestInfoCommand(t *testing.T) {
	s := newLocalStore()
	require.NoError(t, s.Set([]byte("k"), []byte("v")))

	var out bytes.Buffer
	require.NoError(t, runInfo(&out, s))
	assert.Contains(t, out.String(), `"key_count": 1`)
}

func TestItemCommands(t *testing.T) {
	s := newLocalStore()
	var out bytes.Buffer

	codec, err := util.ValueCodecByName("uint64")
	require.NoError(t, err)
	opts := itemOptions{prefix: []byte{0x00}, codec: codec}

	require.NoError(t, runItemGet(&out, s, opts))
	assert.Equal(t, "found=false\n", out.String())

	require.NoError(t, runItemSet(&out, s, opts, "42"))

	raw, ok, err := s.Get([]byte{0x00})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{0x2a, 0, 0, 0, 0, 0, 0, 0}, raw)

	out.Reset()
	require.NoError(t, runItemGet(&out, s, opts))
	assert.Equal(t, "found=true, value=42\n", out.String())

	// a value of the wrong width does not decode
	other, err := util.ValueCodecByName("int64")
	require.NoError(t, err)
	require.NoError(t, s.Set([]byte{0x01}, []byte{1, 2}))
	assert.Error(t, runItemGet(&out, s, itemOptions{prefix: []byte{0x01}, codec: other}))

	require.NoError(t, runItemRemove(&out, s, opts))
	_, ok, err = s.Get([]byte{0x00})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, runItemSet(&out, s, opts, "not a number"))
}

func TestMapCommands(t *testing.T) {
	s := newLocalStore()
	var out bytes.Buffer

	keys, err := util.KeyCodecByName("string")
	require.NoError(t, err)
	values, err := util.ValueCodecByName("json")
	require.NoError(t, err)
	opts := mapOptions{prefix: []byte{0x01}, keys: keys, values: values}

	require.NoError(t, runMapSet(&out, s, opts, "aa", `{"n":1}`))
	require.NoError(t, runMapSet(&out, s, opts, "b", `[true]`))

	// prefix ++ len ++ segment
	raw, ok, err := s.Get([]byte{0x01, 0x02, 'a', 'a'})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"n":1}`, string(raw))

	out.Reset()
	require.NoError(t, runMapGet(&out, s, opts, "aa"))
	assert.Equal(t, "found=true, value={\"n\":1}\n", out.String())

	out.Reset()
	require.NoError(t, runMapGet(&out, s, opts, "c"))
	assert.Equal(t, "found=false\n", out.String())

	// shorter keys sort first because the length byte leads
	out.Reset()
	require.NoError(t, runMapList(&out, s, opts, 0))
	assert.Equal(t, "b=[true]\naa={\"n\":1}\n(2 entries, 0 failed)\n", out.String())

	require.NoError(t, runMapRemove(&out, s, opts, "b"))
	out.Reset()
	require.NoError(t, runMapList(&out, s, opts, 0))
	assert.Equal(t, "aa={\"n\":1}\n(1 entries, 0 failed)\n", out.String())
}

func TestMapListReportsBrokenEntries(t *testing.T) {
	s := newLocalStore()
	var out bytes.Buffer

	keys, err := util.KeyCodecByName("uint64")
	require.NoError(t, err)
	values, err := util.ValueCodecByName("string")
	require.NoError(t, err)
	opts := mapOptions{prefix: []byte{0x02}, keys: keys, values: values}

	require.NoError(t, runMapSet(&out, s, opts, "1", "one"))
	require.NoError(t, runMapSet(&out, s, opts, "3", "three"))

	// truncated key and a key of the wrong width between valid entries
	require.NoError(t, s.Set([]byte{0x02, 0x05, 0x00}, []byte("x")))
	require.NoError(t, s.Set([]byte{0x02, 0x01, 0x07}, []byte("y")))

	out.Reset()
	require.NoError(t, runMapList(&out, s, opts, 0))
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Equal(t, "! 07: invalid uint64 key: expected 8 byte integer key, got 1 bytes", string(lines[0]))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("! 0500: ")))
	assert.Equal(t, "1=one", string(lines[2]))
	assert.Equal(t, "3=three", string(lines[3]))
	assert.Equal(t, "(2 entries, 2 failed)", string(lines[4]))

	out.Reset()
	require.NoError(t, runMapList(&out, s, opts, 3))
	assert.Contains(t, out.String(), "(1 entries, 2 failed)")
}

func TestMapKeyTooLong(t *testing.T) {
	keys, err := util.KeyCodecByName("string")
	require.NoError(t, err)
	values, err := util.ValueCodecByName("string")
	require.NoError(t, err)

	var out bytes.Buffer
	long := string(bytes.Repeat([]byte("k"), 256))
	assert.Error(t, runMapSet(&out, newLocalStore(), mapOptions{prefix: []byte{0x03}, keys: keys, values: values}, long, "v"))
}
