// Package db provides a standardized interface for the byte-level key-value engines
// that back the metasync stores. Records are encoded by the layers above; an engine
// only ever sees opaque keys and byte values.
//
// Key Components:
//
//   - KVDB Interface: The interface all engines satisfy. It covers the write
//     operations (Set, Delete), the query operations (Get, Has, Keys), snapshot
//     persistence (Save, Load) and metadata (GetInfo, SupportsFeature).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     advertise through SupportsFeature, so stores can reject operations an engine
//     does not provide instead of failing silently.
//
//   - Database Information: DatabaseInfo reports entry count, estimated size and
//     engine specific metadata.
//
// Note on Write Indexes:
//   - Every write carries a write index used as a logical timestamp. Engines keep the
//     highest index they have seen and ignore writes whose index is lower than the
//     one stored for the key. The stores in lib/store own the index counter.
//
// Related Packages:
//
// The engines/maple package provides a sharded in-memory implementation with a
// binary snapshot format. The testing package provides RunKVDBTests, a conformance
// suite every engine is expected to pass.
package db
