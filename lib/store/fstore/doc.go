// Package fstore implements a durable local store: a maple engine whose content is
// written to a snapshot file after every write and read back on open.
//
// The snapshot is replaced atomically (temporary file + rename), so a crash never
// leaves a torn file behind. Access from several processes is coordinated with a
// file lock next to the snapshot (<path>.lock): writers hold it exclusively, readers
// shared. The file starts with a generation number (uint64, big endian) that every
// save increments. Before every operation the store reads it and reloads the snapshot
// if another process wrote a newer one, which gives key level read-after-write
// consistency across processes without relying on file timestamps.
//
// Rewriting the whole snapshot per write is only reasonable because the metasync
// writer already coalesces updates into few writes per interval.
package fstore
