// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IIterableStore interface. It provides a thin wrapper around any db.KVDB
// implementation. Data is stored entirely in memory and is not persisted between
// process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Direct integration with db.KVDB implementations
//   - Ordered range scans (Pairs) passed through to the database
//   - Feature detection to handle unsupported operations gracefully
//
// Implementation Details:
//
//   - Feature Detection: Before executing operations, the store checks if the underlying
//     db.KVDB implementation supports the requested feature through the SupportsFeature
//     method. Unsupported operations return a *store.Error with code
//     RetCUnsupportedOperation rather than failing silently. For Pairs the error is
//     yielded as the first and only element of the sequence.
//
//   - Composition Architecture: The store.DBFactory factory function injects the
//     underlying db.KVDB implementation. This allows the store to work with any
//     db.KVDB-compatible engine without modification.
//
// Thread Safety:
//
//	The store keeps no state of its own. Thread safety and the behaviour of writes
//	made while a range scan is running are those of the underlying db.KVDB.
//
// Usage Example:
//
//	factory := func() db.KVDB { return maple.NewMapleDB(maple.DefaultOptions()) }
//	s := lstore.NewLocalStore(factory)
//
//	_ = s.Set([]byte("user/1"), []byte("alice"))
//	value, exists, err := s.Get([]byte("user/1"))
//
//	for pair, err := range s.Pairs([]byte("user/"), []byte("user0")) {
//		...
//	}
//
// For distributed scenarios requiring consensus across multiple nodes, consider
// using the dstore package instead, which provides a RAFT-based implementation
// of the same interface with strong consistency guarantees.
package lstore
