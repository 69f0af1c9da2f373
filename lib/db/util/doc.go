// Package util provides small helpers shared by the engines that satisfy the
// db.KVDB interface: seeded string hashing for shard selection, seed generation
// and shard distribution statistics reported through db.DatabaseInfo.
package util
