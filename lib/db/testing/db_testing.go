package testing

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/tKV/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("RangeOrder", func(t *testing.T) {
			testRangeOrder(t, factory())
		})

		t.Run("RangeBounds", func(t *testing.T) {
			testRangeBounds(t, factory())
		})

		t.Run("RangeWhileWriting", func(t *testing.T) {
			testRangeWhileWriting(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("LoadInvalid", func(t *testing.T) {
			testLoadInvalid(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("CollisionHandling", func(t *testing.T) {
			testCollisionHandling(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// collectKeys drains a range scan and returns the keys as strings
func collectKeys(database db.KVDB, start, end []byte) []string {
	var keys []string
	for k := range database.Pairs(start, end) {
		keys = append(keys, string(k))
	}
	return keys
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	testKey := []byte("test-key")
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	database.Set(testKey, testValue1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists = database.Get([]byte("nonexistent-key"))
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// Get must return a copy
	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// Set must copy the input buffers
	keyBuf := []byte("buffer-key")
	valueBuf := []byte("buffer-value")
	database.Set(keyBuf, valueBuf)
	keyBuf[0] = 'X'
	valueBuf[0] = 'X'

	result, exists = database.Get([]byte("buffer-key"))
	if !exists {
		t.Errorf("Expected key to be stored independently of the caller's buffer")
	} else if !bytes.Equal(result, []byte("buffer-value")) {
		t.Errorf("Expected stored value to be independent of the caller's buffer, got %s", result)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	testKey := []byte("delete-test-key")
	testValue := []byte("delete-test-value")

	database.Set(testKey, testValue)

	_, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	database.Delete(testKey)

	_, exists = database.Get(testKey)
	if exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	// deleting twice or deleting an absent key is a no-op
	database.Delete(testKey)
	database.Delete([]byte("nonexistent-key"))

	if database.SupportsFeature(db.FeatureRange) {
		if keys := collectKeys(database, nil, nil); len(keys) != 0 {
			t.Errorf("Expected no keys in range scan after Delete, got %q", keys)
		}
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureHas)

	testKey := []byte("has-exists-test-key")
	testValue := []byte("has-exists-test-value")

	if database.Has(testKey) {
		t.Errorf("Expected Has to return false for nonexistent key")
	}

	database.Set(testKey, testValue)

	if !database.Has(testKey) {
		t.Errorf("Expected Has to return true after Set")
	}

	database.Delete(testKey)

	if database.Has(testKey) {
		t.Errorf("Expected Has to return false after Delete")
	}
}

func testRangeOrder(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureRange)

	// keys chosen to exercise byte order (not string length or insertion order)
	keys := []string{
		"\xff", "b", "a", "\x00", "ab", "a\x00", "\x01\x02", "\x01", "ba", "",
	}
	for i, k := range keys {
		database.Set([]byte(k), []byte(fmt.Sprintf("v%d", i)))
	}

	expected := append([]string(nil), keys...)
	sort.Strings(expected)

	got := collectKeys(database, nil, nil)
	if len(got) != len(expected) {
		t.Fatalf("Expected %d keys, got %d (%q)", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Position %d: expected key %q, got %q", i, expected[i], got[i])
		}
	}

	// values must belong to their keys
	for k, v := range database.Pairs(nil, nil) {
		for i, orig := range keys {
			if orig == string(k) && string(v) != fmt.Sprintf("v%d", i) {
				t.Errorf("Value mismatch for key %q: got %s", k, v)
			}
		}
	}
}

func testRangeBounds(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureRange)

	for _, k := range []string{"a", "b", "b\x00", "b\xff", "c", "d"} {
		database.Set([]byte(k), []byte(k))
	}

	tests := []struct {
		name       string
		start, end []byte
		expected   []string
	}{
		{"unbounded", nil, nil, []string{"a", "b", "b\x00", "b\xff", "c", "d"}},
		{"start inclusive", []byte("b"), nil, []string{"b", "b\x00", "b\xff", "c", "d"}},
		{"end exclusive", nil, []byte("c"), []string{"a", "b", "b\x00", "b\xff"}},
		{"prefix b", []byte("b"), []byte("c"), []string{"b", "b\x00", "b\xff"}},
		{"between keys", []byte("a\x00"), []byte("b\x01"), []string{"b", "b\x00"}},
		{"empty interval", []byte("c"), []byte("c"), nil},
		{"inverted interval", []byte("d"), []byte("a"), nil},
		{"after last", []byte("e"), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectKeys(database, tt.start, tt.end)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %q, got %q", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %q, got %q", tt.expected, got)
					break
				}
			}
		})
	}

	// early termination
	count := 0
	for range database.Pairs(nil, nil) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("Expected loop to stop after 2 pairs, got %d", count)
	}
}

func testRangeWhileWriting(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureRange)

	for i := 0; i < 100; i++ {
		database.Set([]byte(fmt.Sprintf("k%03d", i)), []byte("v"))
	}

	// the consumer deletes every pair it sees and writes keys behind the cursor,
	// this must neither deadlock nor yield a key twice
	seen := make(map[string]bool)
	for k := range database.Pairs([]byte("k"), []byte("l")) {
		if seen[string(k)] {
			t.Fatalf("Key %q yielded twice", k)
		}
		seen[string(k)] = true
		database.Delete(k)
		database.Set([]byte("a-"+string(k)), []byte("moved"))
	}

	if len(seen) != 100 {
		t.Errorf("Expected 100 keys to be visited, got %d", len(seen))
	}

	if keys := collectKeys(database, []byte("k"), []byte("l")); len(keys) != 0 {
		t.Errorf("Expected all k-keys to be deleted, got %d left", len(keys))
	}
	if keys := collectKeys(database, []byte("a-"), []byte("a.")); len(keys) != 100 {
		t.Errorf("Expected 100 moved keys, got %d", len(keys))
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	// close the databases after the test
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureSave)
	requireFeature(t, database, db.FeatureLoad)

	numEntries := 1000
	originalKeys := make([][]byte, numEntries)
	originalValues := make([][]byte, numEntries)

	for i := 0; i < numEntries; i++ {
		key := []byte(fmt.Sprintf("save-load-test-key-%d", i))
		value := []byte(fmt.Sprintf("save-load-test-value-%d", i))
		originalKeys[i] = key
		originalValues[i] = value

		database.Set(key, value)
	}

	// binary key with a zero byte and an empty value
	database.Set([]byte{0x00, 0xff, 0x00}, nil)

	// stale data in the target must be replaced by the snapshot
	database2.Set([]byte("stale"), []byte("stale"))

	var buf bytes.Buffer
	err := database.Save(&buf)
	if err != nil {
		t.Errorf("Unexpected error during Save: %v", err)
	}

	err = database2.Load(&buf)
	if err != nil {
		t.Errorf("Unexpected error during Load: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		key := originalKeys[i]
		expectedValue := originalValues[i]

		actualValue, exists := database2.Get(key)
		if !exists {
			t.Errorf("Key %s not found after Load", key)
			continue
		}

		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value mismatch for key %s: expected %s, got %s", key, expectedValue, actualValue)
		}
	}

	if v, exists := database2.Get([]byte{0x00, 0xff, 0x00}); !exists || len(v) != 0 {
		t.Errorf("Binary key with empty value not restored correctly (exists=%v, value=%v)", exists, v)
	}

	if _, exists := database2.Get([]byte("stale")); exists {
		t.Errorf("Load should replace the previous content of the database")
	}

	if database2.SupportsFeature(db.FeatureRange) {
		if got := collectKeys(database2, nil, nil); len(got) != numEntries+1 {
			t.Errorf("Expected %d keys in range scan after Load, got %d", numEntries+1, len(got))
		} else if !sort.StringsAreSorted(got) {
			t.Errorf("Range scan after Load is not sorted")
		}
	}

	// the original database is untouched
	for i := 0; i < numEntries; i++ {
		actualValue, exists := database.Get(originalKeys[i])
		if !exists || !bytes.Equal(actualValue, originalValues[i]) {
			t.Errorf("Value mismatch in original database for key %s", originalKeys[i])
		}
	}
}

func testLoadInvalid(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureLoad)

	database.Set([]byte("keep"), []byte("me"))

	if err := database.Load(bytes.NewReader([]byte("NOT A SNAPSHOT AT ALL"))); err == nil {
		t.Errorf("Expected an error when loading garbage")
	}

	if err := database.Load(bytes.NewReader(nil)); err == nil {
		t.Errorf("Expected an error when loading an empty snapshot")
	}

	if v, ok := database.Get([]byte("keep")); !ok || string(v) != "me" {
		t.Errorf("A failed Load must not modify the database")
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	emptyKeyValue := []byte("value for empty key")

	database.Set([]byte{}, emptyKeyValue)

	result, exists := database.Get(nil)
	if !exists {
		t.Errorf("Empty key not found after Set")
	} else if !bytes.Equal(result, emptyKeyValue) {
		t.Errorf("Value mismatch for empty key")
	}

	emptyValueKey := []byte("empty-value-key")
	database.Set(emptyValueKey, []byte{})

	result, exists = database.Get(emptyValueKey)
	if !exists {
		t.Errorf("Key for empty value not found after Set")
	} else if len(result) != 0 {
		t.Errorf("Empty value mismatch")
	}

	nilValueKey := []byte("nil-value-key")
	database.Set(nilValueKey, nil)

	result, exists = database.Get(nilValueKey)
	if !exists {
		t.Errorf("Key for nil value not found after Set")
	} else if len(result) != 0 {
		t.Errorf("Nil value resulted in non-empty value: %v", result)
	}

	binaryKey := []byte{0x00, 0x00, 0xff}
	database.Set(binaryKey, []byte("binary"))
	if result, exists = database.Get(binaryKey); !exists || string(result) != "binary" {
		t.Errorf("Binary key not found after Set")
	}
	if _, exists = database.Get([]byte{0x00, 0x00}); exists {
		t.Errorf("Prefix of a binary key must not be found")
	}

	if !t.Failed() {

		largeKey := make([]byte, 1000)
		largeKeyValue := []byte("value for large key")

		database.Set(largeKey, largeKeyValue)

		result, exists = database.Get(largeKey)
		if !exists {
			t.Errorf("Large key not found after Set")
		} else if !bytes.Equal(result, largeKeyValue) {
			t.Errorf("Value mismatch for large key")
		}

		largeValueKey := []byte("large-value-key")
		largeValue := make([]byte, 16*1024*1024)

		for i := range largeValue {
			largeValue[i] = byte(i % 256)
		}

		database.Set(largeValueKey, largeValue)

		result, exists = database.Get(largeValueKey)
		if !exists {
			t.Errorf("Key for large value not found after Set")
		} else if !bytes.Equal(result, largeValue) {
			t.Errorf("Large value mismatch (got %d bytes, expected %d)", len(result), len(largeValue))
		}
	}
}

func testCollisionHandling(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	prefix := "collision-test-"
	numKeys := 1000

	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("%s%d", prefix, i))
		value := []byte(fmt.Sprintf("value-%d", i))

		database.Set(key, value)
	}

	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("%s%d", prefix, i))
		expectedValue := []byte(fmt.Sprintf("value-%d", i))

		actualValue, exists := database.Get(key)
		if !exists {
			t.Errorf("Key %s not found", key)
			continue
		}

		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value for key %s does not match: expected %s, got %s",
				key, expectedValue, actualValue)
		}
	}

	for i := 0; i < numKeys; i += 2 {
		database.Delete([]byte(fmt.Sprintf("%s%d", prefix, i)))
	}

	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("%s%d", prefix, i))
		_, exists := database.Get(key)

		if i%2 == 0 {
			if exists {
				t.Errorf("Key %s should be deleted", key)
			}
		} else {
			if !exists {
				t.Errorf("Key %s should still exist", key)
			}
		}
	}

	if database.SupportsFeature(db.FeatureRange) {
		if keys := collectKeys(database, []byte(prefix), nil); len(keys) != numKeys/2 {
			t.Errorf("Expected %d keys in range scan, got %d", numKeys/2, len(keys))
		}
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	type operation struct {
		op    string
		key   []byte
		value []byte
	}

	numOperations := 10_000
	operations := make([]operation, numOperations)

	for i := 0; i < numOperations; i++ {
		var op string
		switch i % 10 {
		case 0, 1, 2, 3, 4, 5:
			op = "set"
		case 6, 7:
			op = "get"
		case 8:
			op = "scan"
		case 9:
			op = "delete"
		}

		var key string
		if i%5 == 0 {
			// Hot keys
			key = fmt.Sprintf("hot-key-%d", i%50)
		} else {
			key = fmt.Sprintf("key-%d", i)
		}

		var value []byte
		if op == "set" {
			valueSize := 64
			if i%10 == 0 {
				valueSize = 1024
			}
			value = make([]byte, valueSize)

			for j := 0; j < valueSize; j++ {
				value[j] = byte((i + j) % 256)
			}
		}

		operations[i] = operation{op, []byte(key), value}
	}

	allKeys := make(map[string]bool)
	for _, op := range operations {
		allKeys[string(op.key)] = true
	}

	numWorkers := 8
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	opsPerWorker := numOperations / numWorkers
	canScan := database.SupportsFeature(db.FeatureRange)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			start := workerId * opsPerWorker
			end := start + opsPerWorker

			for i := start; i < end; i++ {
				op := operations[i]

				switch op.op {
				case "set":
					database.Set(op.key, op.value)
				case "get":
					database.Get(op.key)
				case "scan":
					if !canScan {
						continue
					}
					n := 0
					for range database.Pairs(op.key, nil) {
						n++
						if n == 10 {
							break
						}
					}
				case "delete":
					database.Delete(op.key)
				}
			}
		}(w)
	}

	wg.Wait()

	// after the writers are done, point reads and the ordered index must agree
	if canScan {
		scanned := make(map[string][]byte)
		for k, v := range database.Pairs(nil, nil) {
			scanned[string(k)] = v
		}

		for key := range allKeys {
			value, exists := database.Get([]byte(key))
			scannedValue, inScan := scanned[key]

			if exists != inScan {
				t.Errorf("Consistency error: Key %s Get=%v but scan=%v", key, exists, inScan)
				continue
			}
			if exists && !bytes.Equal(value, scannedValue) {
				t.Errorf("Value mismatch for key %s between Get and scan", key)
			}
		}
	}
}
