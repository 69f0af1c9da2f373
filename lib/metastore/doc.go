// Package metastore defines IMetaStore, the record level store the metasync writer
// persists to, together with two implementations:
//
//   - KVMetaStore encodes records with a record.ICodec and keeps them in any
//     store.IStore (local, file, SQLite or remote over RPC).
//   - MemoryMetaStore keeps records in process memory.
//
// A meta store only ever replaces whole records. Field level merging is done by the
// writer, which reads the current record before writing it back.
package metastore
