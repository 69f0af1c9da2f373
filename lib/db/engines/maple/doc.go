// Package maple provides an in-memory implementation of the db.KVDB interface.
// Keys are spread across shards, each backed by a concurrent xsync map, which
// keeps contention low when many stores write at the same time.
//
// Key Features:
//   - Sharded storage: keys are hashed (FNV-1a with a per-instance seed) and
//     assigned to one of NumShards shards.
//   - Write ordering: every entry remembers the write index it was written with.
//     Writes and deletes carrying a lower index than the stored one are ignored.
//   - Snapshots: Save writes a compact binary snapshot, Load replaces the content
//     of the database with a snapshot. Load builds the new shards before swapping
//     them in, a corrupt snapshot leaves the database untouched.
//
// Snapshot Format (little endian):
//
//	magic "MAPLEDB\x00" | version u8 | seed u64 | count u64 |
//	count * ( index u64 | keyLen u32 | key | valueLen u32 | value )
//
// Usage Example:
//
//	database := maple.NewMapleDB(nil)
//	database.Set("1-organization-7", encodedRecord, 1)
//	value, ok := database.Get("1-organization-7")
//
// Thread Safety:
//
//	All methods are safe for concurrent use. Load takes an exclusive lock for the
//	short moment the shards are swapped.
package maple
