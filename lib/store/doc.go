// Package store provides the byte oriented key-value store contract that the
// metasync record stores are built on. A store maps scope keys to encoded
// records; encoding is handled one layer up in lib/metastore.
//
// Key Components:
//
//   - IStore Interface: Set, Get, Has, Delete and Keys plus database metadata.
//     All implementations share this interface, so a writer can persist into a
//     local engine, a SQLite file or a remote server without code changes.
//
//   - Error System: *Error carries a RetCode and a message, letting callers tell
//     unsupported operations apart from internal failures.
//
//   - DBFactory: abstracts the creation of the underlying db.KVDB engine.
//
// Implementations:
//
//   - lstore: in-memory store over any db.KVDB with an atomic write index.
//   - fstore: lstore whose engine snapshot is kept in a file, guarded by an
//     inter-process file lock.
//   - sqlstore: SQLite backed store with one row per key.
//   - rpc/client: remote store served by the metasync server.
package store
