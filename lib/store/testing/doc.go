// Package testing provides a conformance suite for store.IStore implementations.
//
//	storetesting.RunIStoreTests(t, "sqlstore", func(t *testing.T) store.IStore {
//		s, err := sqlstore.Open(filepath.Join(t.TempDir(), "meta.db"))
//		...
//		return s
//	})
package testing
