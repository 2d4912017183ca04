package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"runtime"
	"sync"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/maple/internal"
	"github.com/ValentinKolb/tKV/lib/db/util"
	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for database behavior and structure
const (
	magicNum     = "MAPLEDB\x00" // File format identifier
	mapleVersion = 4             // Database version (4 = ordered byte keys)
)

var Logger = logger.GetLogger("maple")

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements an in-memory ordered database.
// Point operations go to hash sharded maps, the ordered index serves range scans.
type mapleImpl struct {
	numShards int               // Number of shards
	seed      uint64            // Seed for hash function
	shards    []*internal.Shard // Array of shards
	index     *internal.Index   // Ordered set of all keys

	// mu serializes writers and guards the index and the shard slice.
	// Readers only share it, so point reads never wait for each other.
	mu sync.RWMutex
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
//
// Thread-safety: This function is not thread-safe and should only be called once
// during initialization.
func NewMapleDB(opts *DBOptions) db.KVDB {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = runtime.NumCPU()
	}

	return &mapleImpl{
		numShards: opts.NumShards,
		seed:      util.GenerateSeed(),
		shards:    newShards(opts.NumShards),
		index:     internal.NewIndex(),
	}
}

func newShards(n int) []*internal.Shard {
	shards := make([]*internal.Shard, n)
	for i := 0; i < n; i++ {
		shards[i] = internal.NewShard()
	}
	return shards
}

// shardFor returns the shard responsible for the given key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) shardFor(key string) *internal.Shard {
	return internal.GetShard(util.HashString(key, maple.seed), maple.shards)
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key and value.
// If the key already exists, the old value is overwritten.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Set(key, value []byte) {
	k := string(key)
	valueCopy := cloneBytes(value) // Copy value to prevent memory corruption

	maple.mu.Lock()
	defer maple.mu.Unlock()

	maple.shardFor(k).Data.Store(k, valueCopy)
	maple.index.Insert(k)
}

// Delete removes the entry for the given key. Deleting an absent key is a no-op.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(key []byte) {
	k := string(key)

	maple.mu.Lock()
	defer maple.mu.Unlock()

	if _, loaded := maple.shardFor(k).Data.LoadAndDelete(k); loaded {
		maple.index.Delete(k)
	}
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get retrieves a copy of the value for the given key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key []byte) ([]byte, bool) {
	k := string(key)
	maple.mu.RLock()
	value, ok := maple.shardFor(k).Data.Load(k)
	maple.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneBytes(value), true
}

// Has checks whether a key exists in the database.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Has(key []byte) bool {
	k := string(key)
	maple.mu.RLock()
	_, ok := maple.shardFor(k).Data.Load(k)
	maple.mu.RUnlock()
	return ok
}

// Pairs yields all entries with start <= key < end in ascending key order.
//
// The scan re-seeks the index after the last yielded key on every step and only
// holds the read lock while seeking, never while the consumer runs. Writes issued
// by the consumer (or other goroutines) during the scan are therefore safe; keys
// inserted behind the cursor are not seen, keys inserted ahead of it are.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Pairs(start, end []byte) iter.Seq2[[]byte, []byte] {
	var (
		cursor = string(start)
		limit  = string(end)
		open   = end == nil
	)

	return func(yield func([]byte, []byte) bool) {
		pos, inclusive := cursor, true
		for {
			maple.mu.RLock()
			k, ok := maple.index.Seek(pos, inclusive)
			var value []byte
			if ok {
				// the index and the shards are only mutated together under the write lock
				value, _ = maple.shardFor(k).Data.Load(k)
			}
			maple.mu.RUnlock()

			if !ok || (!open && k >= limit) {
				return
			}

			if !yield([]byte(k), cloneBytes(value)) {
				return
			}
			pos, inclusive = k, false
		}
	}
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save writes a snapshot of the database to w.
// The format is:
//
//	magic (8 bytes) | version (uint8) | seed (uint64) | count (uint64) |
//	count x ( keyLen (uint32) | key | valueLen (uint32) | value )
//
// All integers are little endian, entries are written in ascending key order.
//
// Thread-safety: The snapshot is consistent, writers are blocked while the entries are collected.
func (maple *mapleImpl) Save(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	type entryToSave struct {
		key   string
		value []byte
	}

	// Collect all entries under the read lock
	maple.mu.RLock()
	entries := make([]entryToSave, 0, maple.index.Len())
	pos, inclusive := "", true
	for {
		k, ok := maple.index.Seek(pos, inclusive)
		if !ok {
			break
		}
		if value, found := maple.shardFor(k).Data.Load(k); found {
			entries = append(entries, entryToSave{k, value})
		}
		pos, inclusive = k, false
	}
	seed := maple.seed
	maple.mu.RUnlock()

	// Write header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint8(mapleVersion)); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, seed); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	// Write entries (values are never mutated in place, so no copy is needed here)
	for _, e := range entries {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(e.key))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.key); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(e.value))); err != nil {
			return err
		}
		if _, err := bw.Write(e.value); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load replaces the content of the database with the snapshot read from r.
// On error the database is left unchanged.
//
// Thread-safety: Writers and scans are blocked while the new state is swapped in.
func (maple *mapleImpl) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}

	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}

	if int(version) != mapleVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, mapleVersion)
	}

	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	// Build the new state aside, so a truncated snapshot doesn't leave a half loaded db
	shards := newShards(maple.numShards)
	index := internal.NewIndex()

	for i := uint64(0); i < count; i++ {
		var keyLen uint32
		if err := binary.Read(br, binary.LittleEndian, &keyLen); err != nil {
			return err
		}
		key := make([]byte, keyLen)
		if _, err := io.ReadFull(br, key); err != nil {
			return err
		}

		var valueLen uint32
		if err := binary.Read(br, binary.LittleEndian, &valueLen); err != nil {
			return err
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(br, value); err != nil {
			return err
		}

		k := string(key)
		internal.GetShard(util.HashString(k, seed), shards).Data.Store(k, value)
		index.Insert(k)
	}

	maple.mu.Lock()
	maple.seed = seed
	maple.shards = shards
	maple.index = index
	maple.mu.Unlock()

	Logger.Debugf("loaded %d entries from snapshot", count)

	return nil
}

// --------------------------------------------------------------------------
// Info and Feature Support
// --------------------------------------------------------------------------

// GetInfo returns estimated information about the database.
// Value sizes are sampled per shard, so SizeBytes is an estimate.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {

	maple.mu.RLock()
	shards := maple.shards
	keyCount := maple.index.Len()
	indexDegree := maple.index.Degree()
	maple.mu.RUnlock()

	histogram := util.NewSizeHistogram()
	samplesPerShard := 100
	wg := sync.WaitGroup{}
	wg.Add(len(shards))

	shardSizes := make([]float64, len(shards))

	for shardIndex, shard := range shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()
			count := 0
			s.Data.Range(func(key string, value []byte) bool {
				histogram.AddSample(len(key) + len(value))
				count++
				return count < samplesPerShard
			})
			shardSizes[i] = float64(s.Data.Size())
		}(shardIndex, shard)
	}

	wg.Wait()

	entryOverhead := 48 // map entry + index slot (approx.)
	medianSize := histogram.MedianEstimate() + entryOverhead
	avgSize := histogram.AverageSize() + entryOverhead

	// Estimate the per entry size (weighted median and average) and scale by the key count
	sizeBytes := (medianSize*60 + avgSize*40) / 100 * keyCount

	meta := &struct {
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		IndexDegree       int                    `json:"index_degree"`
		P90EntrySize      int                    `json:"p90_entry_size"`
		Info              string                 `json:"info"`
	}{
		ShardCount:        len(shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		IndexDegree:       indexDegree,
		P90EntrySize:      histogram.GetPercentileEstimate(90),
		Info:              "All values (including SizeBytes) are estimates and may vary depending on the database state.",
	}

	var supportedFeatures []db.Feature
	for _, f := range db.AllFeatures {
		if maple.SupportsFeature(f) {
			supportedFeatures = append(supportedFeatures, f)
		}
	}

	return db.DatabaseInfo{
		SizeBytes:         sizeBytes,
		KeyCount:          keyCount,
		DbType:            db.ImplMaple,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureRange |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close drops all data held by the database.
func (maple *mapleImpl) Close() error {
	maple.mu.Lock()
	defer maple.mu.Unlock()

	maple.shards = newShards(maple.numShards)
	maple.index.Clear()
	return nil
}
