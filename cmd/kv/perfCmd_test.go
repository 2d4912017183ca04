package kv

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/tKV/lib/store/lstore"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closableStore struct {
	lstore.Store
}

func (closableStore) Close() error { return nil }

func TestGetKeys(t *testing.T) {
	perfKeyPrefix, perfKeySpread = "__perf/run/", 3
	keys := getKeys("set")
	require.Len(t, keys, 3)
	assert.Equal(t, "__perf/run/set-0", string(keys[0]))
	assert.Equal(t, "__perf/run/set-2", string(keys[2]))
}

func TestShouldSkip(t *testing.T) {
	perfSkip = strings.Split("set,scan", ",")
	assert.True(t, shouldSkip("scan"))
	assert.False(t, shouldSkip("set-large"))
}

func TestRunPerfTest(t *testing.T) {
	if testing.Short() {
		t.Skip("benchmark run")
	}

	local := newLocalStore()
	rpcStore = closableStore{local}
	t.Cleanup(func() { rpcStore = nil })

	perfKeyPrefix, perfKeySpread, perfNumThreads = "__perf/test/", 5, 2

	res := runPerfTest(perfTest{
		name:    "get",
		prepare: true,
		op: func(key []byte) error {
			_, _, err := rpcStore.Get(key)
			return err
		},
	}, gometrics.NewRegistry())

	assert.Equal(t, "get", res.name)
	assert.Positive(t, res.result.N)
	assert.Positive(t, res.latency.Count())

	// the benchmark removes its keys
	for pair, err := range local.Pairs([]byte("__perf/test/"), nil) {
		require.NoError(t, err)
		t.Errorf("left over key %s", pair.Key)
	}
}
