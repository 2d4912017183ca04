// Package store provides the byte-range store capability that the typed containers
// of tKV are built on. A store is an ordered mapping from byte keys to byte values
// with point reads, overwriting writes, idempotent deletes and (optionally) ascending
// range scans over a half-open key interval.
//
// The package focuses on:
//   - A unified interface (IStore, IIterableStore) for key-value operations across different backends
//   - Pluggable storage backend architecture through DBFactory pattern
//
// Key Components:
//
//   - IStore Interface: The core abstraction with Get, Set and Delete. Keys and values
//     are opaque byte strings. All implementations share this common interface, allowing
//     applications to switch between different storage backends without code changes.
//
//   - IIterableStore Interface: Extends IStore with Pairs(start, end), a lazy
//     iter.Seq2 over all pairs with start <= key < end in ascending byte order.
//     Prefix scans (all keys starting with P) are expressed as the interval
//     [P, successor(P)).
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. This system allows applications to make informed
//     decisions based on specific error conditions rather than generic errors.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances, providing dependency injection and flexible configuration of
//     storage backends.
//
// Implementations:
//
//	- Local Store (lstore): A simple, non-distributed implementation that directly
//	  utilizes a db.KVDB instance.
//	  Available in the "github.com/ValentinKolb/tKV/lib/store/lstore" package.
//
//	- Distributed Store (dstore): A implementation built on the Dragonboat
//	  RAFT consensus library. Writes are proposed to the raft group, reads and
//	  range scans are served by linearizable reads. Range scans are paged.
//	  Available in the "github.com/ValentinKolb/tKV/lib/store/dstore" package.
//
//	- Metered Store (mstore): A decorator that records counters and latency
//	  histograms for every operation of a wrapped store.
//	  Available in the "github.com/ValentinKolb/tKV/lib/store/mstore" package.
//
//	- Remote Store: the rpc client (github.com/ValentinKolb/tKV/rpc/client) implements
//	  IIterableStore on top of a tKV server.
package store
