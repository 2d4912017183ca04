// Package maple implements an in-memory, ordered key-value database (KVDB).
// It provides a complete implementation of the db.KVDB interface with a focus
// on thread safety, cheap point operations and lock-friendly range scans.
//
// The package focuses on:
//   - Point reads and writes on hash sharded concurrent maps
//   - Ordered iteration over arbitrary byte keys through a btree index
//   - Persistent storage with consistent snapshots and efficient binary encoding
//   - Estimated metrics and statistics for monitoring
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.KVDB. It owns
//     the shards and the ordered index and provides the public API for key-value
//     operations.
//
//   - Shard: A partition of the key space holding the values. Keys are spread
//     across shards with the seeded FNV-1a hash from the util package. Each shard
//     is an xsync.MapOf keyed by the raw key bytes (as a string).
//
//   - Index: A google/btree containing every key of the database in ascending byte
//     order. It is the only ordered structure and is consulted by Pairs and Save.
//
// Internal Mechanisms:
//
//   - Locking: A single RWMutex pairs every shard mutation with the matching index
//     mutation, so the two structures never disagree. Reads only share the lock.
//
//   - Range scans: Pairs is a lazy iter.Seq2. Every step seeks the index for the
//     first key after the previously yielded one while holding the read lock,
//     then releases the lock before yielding. A consumer may therefore write to
//     the database from inside its loop body without deadlocking. A scan observes
//     keys inserted ahead of its cursor and never yields a key twice.
//
//   - Persistence: Save writes all entries in key order using the format
//     magic | version | seed | count | (keyLen | key | valueLen | value)*.
//     Load builds the new state aside and swaps it in only after the whole
//     snapshot was read, so a corrupt snapshot leaves the database untouched.
//
// Usage Example:
//
//	database := maple.NewMapleDB(nil)
//	database.Set([]byte("user/1"), []byte("alice"))
//	database.Set([]byte("user/2"), []byte("bob"))
//
//	for k, v := range database.Pairs([]byte("user/"), []byte("user0")) {
//		fmt.Printf("%s=%s\n", k, v)
//	}
package maple
