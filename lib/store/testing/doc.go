// Package testing provides a standardised conformance test suite for
// store implementations that satisfy the store.IStore interface.
//
// Example usage:
//
//	func Test(t *testing.T) {
//		storetesting.RunStoreTests(t, "MemStore", func() store.IStore {
//			return memstore.NewMemStore()
//		})
//	}
package testing
