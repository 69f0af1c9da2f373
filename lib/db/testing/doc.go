// Package testing provides a standardised conformance suite for engines that
// satisfy the db.KVDB interface.
//
// Example usage:
//
//	factory := func() db.KVDB {
//		return NewMyDatabase()
//	}
//
//	dbtesting.RunKVDBTests(t, "MyDatabase", factory)
package testing
