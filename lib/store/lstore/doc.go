// Package lstore implements a local, in-memory, single-process key-value store based
// on the store.IStore interface. It is a thin wrapper around any db.KVDB
// implementation with automatic write index management. Data is not persisted
// between process restarts, see fstore and sqlstore for durable variants.
//
// Implementation Details:
//
//   - Write Index Management: The store keeps an atomic counter that increments with
//     each write operation and is passed to the engine as the logical timestamp.
//
//   - Feature Detection: Before executing an operation the store checks
//     SupportsFeature and returns a RetCUnsupportedOperation error instead of
//     calling into an engine that cannot serve it.
//
// Usage Example:
//
//	factory := func() db.KVDB { return maple.NewMapleDB(nil) }
//	s := lstore.NewLocalStore(factory)
//	err := s.Set("1-organization-7", encodedRecord)
//	value, exists, err := s.Get("1-organization-7")
package lstore
