package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/tKV/lib/store"
)

// StoreFactory creates a new, empty store for a single test
type StoreFactory func() store.IIterableStore

// RunStoreTests runs the store test suite against the stores created by factory.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("DeleteIdempotent", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("BinaryKeys", func(t *testing.T) {
			testBinaryKeys(t, factory())
		})

		t.Run("PairsOrder", func(t *testing.T) {
			testPairsOrder(t, factory())
		})

		t.Run("PairsBounds", func(t *testing.T) {
			testPairsBounds(t, factory())
		})

		t.Run("PairsEarlyBreak", func(t *testing.T) {
			testPairsEarlyBreak(t, factory())
		})

		t.Run("ManyPairs", func(t *testing.T) {
			testManyPairs(t, factory())
		})

		t.Run("WriteWhileIterating", func(t *testing.T) {
			testWriteWhileIterating(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// mustSet fails the test if the write fails
func mustSet(t *testing.T, s store.IStore, key, value []byte) {
	t.Helper()
	if err := s.Set(key, value); err != nil {
		t.Fatalf("Set(%x) failed: %v", key, err)
	}
}

// collect drains a range scan and returns the keys as strings
func collect(t *testing.T, s store.IIterableStore, start, end []byte) []string {
	t.Helper()
	var keys []string
	for pair, err := range s.Pairs(start, end) {
		if err != nil {
			t.Fatalf("Pairs failed: %v", err)
		}
		keys = append(keys, string(pair.Key))
	}
	return keys
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s store.IIterableStore) {
	mustSet(t, s, []byte("key"), []byte("value"))

	val, ok, err := s.Get([]byte("key"))
	if err != nil || !ok || !bytes.Equal(val, []byte("value")) {
		t.Errorf("expected (value, true, nil), got (%q, %v, %v)", val, ok, err)
	}

	// overwrite
	mustSet(t, s, []byte("key"), []byte("other"))
	val, _, _ = s.Get([]byte("key"))
	if !bytes.Equal(val, []byte("other")) {
		t.Errorf("expected overwritten value, got %q", val)
	}

	// absent key is not an error
	val, ok, err = s.Get([]byte("missing"))
	if err != nil || ok || val != nil {
		t.Errorf("expected (nil, false, nil) for missing key, got (%q, %v, %v)", val, ok, err)
	}

	// empty value
	mustSet(t, s, []byte("empty"), []byte{})
	val, ok, err = s.Get([]byte("empty"))
	if err != nil || !ok || len(val) != 0 {
		t.Errorf("expected empty value to be present, got (%q, %v, %v)", val, ok, err)
	}
}

func testDelete(t *testing.T, s store.IIterableStore) {
	mustSet(t, s, []byte("key"), []byte("value"))

	for i := 0; i < 2; i++ {
		if err := s.Delete([]byte("key")); err != nil {
			t.Fatalf("Delete #%d failed: %v", i, err)
		}
	}

	if _, ok, _ := s.Get([]byte("key")); ok {
		t.Errorf("key still present after delete")
	}
	if err := s.Delete([]byte("never-set")); err != nil {
		t.Errorf("deleting an absent key failed: %v", err)
	}
}

func testBinaryKeys(t *testing.T, s store.IIterableStore) {
	keys := [][]byte{{0x00}, {0x00, 0x00}, {0x01, 0xff}, {0xff}, {0xff, 0xff, 0xff}}
	for i, k := range keys {
		mustSet(t, s, k, []byte{byte(i)})
	}

	i := 0
	for pair, err := range s.Pairs(nil, nil) {
		if err != nil {
			t.Fatalf("Pairs failed: %v", err)
		}
		if i >= len(keys) || !bytes.Equal(pair.Key, keys[i]) || !bytes.Equal(pair.Value, []byte{byte(i)}) {
			t.Fatalf("unexpected pair #%d: %x=%x", i, pair.Key, pair.Value)
		}
		i++
	}
	if i != len(keys) {
		t.Errorf("expected %d pairs, got %d", len(keys), i)
	}
}

func testPairsOrder(t *testing.T, s store.IIterableStore) {
	for _, k := range []string{"b", "a", "ab", "aa", "c", "ba"} {
		mustSet(t, s, []byte(k), []byte(k))
	}

	want := []string{"a", "aa", "ab", "b", "ba", "c"}
	if got := collect(t, s, nil, nil); !equalKeys(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func testPairsBounds(t *testing.T, s store.IIterableStore) {
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		mustSet(t, s, []byte(k), []byte(k))
	}

	tests := []struct {
		start, end []byte
		want       []string
	}{
		{[]byte("b"), []byte("d"), []string{"b", "c"}},
		{nil, []byte("c"), []string{"a", "b"}},
		{[]byte("d"), nil, []string{"d", "e"}},
		{[]byte("bb"), []byte("cc"), []string{"c"}},
		{[]byte("c"), []byte("c"), nil},
		{[]byte("x"), nil, nil},
	}

	for _, tt := range tests {
		if got := collect(t, s, tt.start, tt.end); !equalKeys(got, tt.want) {
			t.Errorf("Pairs(%q, %q): expected %v, got %v", tt.start, tt.end, tt.want, got)
		}
	}
}

func testPairsEarlyBreak(t *testing.T, s store.IIterableStore) {
	for i := 0; i < 10; i++ {
		mustSet(t, s, []byte(fmt.Sprintf("key-%d", i)), []byte("v"))
	}

	n := 0
	for _, err := range s.Pairs(nil, nil) {
		if err != nil {
			t.Fatalf("Pairs failed: %v", err)
		}
		if n++; n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to stop after 3 pairs, got %d", n)
	}

	// the store stays usable
	mustSet(t, s, []byte("after"), []byte("v"))
}

func testManyPairs(t *testing.T, s store.IIterableStore) {
	const n = 1500
	for i := 0; i < n; i++ {
		mustSet(t, s, []byte(fmt.Sprintf("k%05d", i)), []byte(fmt.Sprintf("v%d", i)))
	}

	i := 0
	for pair, err := range s.Pairs([]byte("k"), []byte("l")) {
		if err != nil {
			t.Fatalf("Pairs failed: %v", err)
		}
		if want := fmt.Sprintf("k%05d", i); string(pair.Key) != want {
			t.Fatalf("expected key %s, got %s", want, pair.Key)
		}
		if want := fmt.Sprintf("v%d", i); string(pair.Value) != want {
			t.Fatalf("expected value %s, got %s", want, pair.Value)
		}
		i++
	}
	if i != n {
		t.Errorf("expected %d pairs, got %d", n, i)
	}
}

func testWriteWhileIterating(t *testing.T, s store.IIterableStore) {
	for _, k := range []string{"a", "b", "c"} {
		mustSet(t, s, []byte(k), []byte("old"))
	}

	seen := make(map[string]int)
	for pair, err := range s.Pairs(nil, nil) {
		if err != nil {
			t.Fatalf("Pairs failed: %v", err)
		}
		seen[string(pair.Key)]++
		// rewrite the current key and delete a later one
		mustSet(t, s, pair.Key, []byte("new"))
		if string(pair.Key) == "a" {
			if err := s.Delete([]byte("c")); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
		}
	}

	for k, n := range seen {
		if n != 1 {
			t.Errorf("key %s yielded %d times", k, n)
		}
	}
	if seen["a"] != 1 || seen["b"] != 1 {
		t.Errorf("expected a and b to be visited, got %v", seen)
	}

	val, _, _ := s.Get([]byte("b"))
	if !bytes.Equal(val, []byte("new")) {
		t.Errorf("expected b to be rewritten, got %q", val)
	}
}

func testConcurrent(t *testing.T, s store.IIterableStore) {
	const workers, perWorker = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := []byte(fmt.Sprintf("w%d-%03d", w, i))
				if err := s.Set(key, key); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if _, ok, err := s.Get(key); err != nil || !ok {
					t.Errorf("Get after Set failed: ok=%v err=%v", ok, err)
					return
				}
				for range s.Pairs(key, nil) {
					break
				}
			}
		}(w)
	}
	wg.Wait()

	if got := len(collect(t, s, nil, nil)); got != workers*perWorker {
		t.Errorf("expected %d keys, got %d", workers*perWorker, got)
	}
}
