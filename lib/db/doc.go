// Package db provides a standardized interface for ordered key-value database implementations.
// It defines the KVDB interface that allows for consistent interaction
// with various database backends while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for byte keyed operations
//   - Ordered range scans over half-open key intervals
//   - Feature discovery through capability flags
//   - Standardized persistence operations
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Set, Get, Has, Delete),
//     ordered iteration (Pairs), metadata retrieval (GetInfo),
//     and persistence operations (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "maple").
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including size statistics, implementation type,
//     and implementation-specific metadata. Note: For most implementations all
//     size statistics will be estimated since a precise calculation can be
//     expensive.
//
// Note on Ordering:
//   - Keys compare with bytes.Compare. Pairs(start, end) yields every key k with
//     start <= k < end. A nil bound is open on that side.
//   - Pairs is lazy. Implementations must not hold locks while the consumer's
//     loop body runs, so the consumer may write to the same database while
//     iterating. Such writes may or may not be observed by the running scan.
//
// Related Packages:
//
// The engines/maple package (github.com/ValentinKolb/tKV/lib/db/engines/maple) provides an
// in-memory implementation of the KVDB interface: a concurrent hash map for point
// operations and a btree index for ordered scans, plus binary persistence.
//
// The util package (github.com/ValentinKolb/tKV/lib/db/util) provides complementary
// tools for working with db.KVDB implementations:
//   - SizeHistogram: Utilities for analyzing data size distributions
//   - Stats: Summary statistics used for database info reports
//
// The testing package (github.com/ValentinKolb/tKV/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
