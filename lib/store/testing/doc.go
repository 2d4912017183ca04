// Package testing provides a standardized test suite for store.IIterableStore
// implementations. The local store, the metered store, the distributed store and
// the rpc client all run the same suite, so every backend a container may be bound
// to shows the same behaviour for point operations and range scans.
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//		storeTesting.RunStoreTests(t, "mystore", func() store.IIterableStore {
//			return newMyStore()
//		})
//	}
package testing
