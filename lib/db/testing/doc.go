// Package testing is the conformance suite for db.KVDB engines.
//
// RunKVDBTests checks the contract every engine has to meet: point operations,
// ordered and bounded range scans over arbitrary byte keys, snapshot Save/Load and
// the reported DatabaseInfo. RunKVDBBenchmarks measures the same operations.
//
//	factory := func() db.KVDB {
//		return maple.NewMapleDB(nil)
//	}
//
//	func TestMaple(t *testing.T) {
//		testing.RunKVDBTests(t, "maple", factory)
//	}
//
//	func BenchmarkMaple(b *testing.B) {
//		testing.RunKVDBBenchmarks(b, "maple", factory)
//	}
package testing
