// Package sqlstore implements store.IStore on top of SQLite (github.com/mattn/go-sqlite3).
//
// All keys live in a single table meta(key, value, updated_at). Writes are upserts,
// so the store never holds more than one row per key. File databases are opened in
// WAL mode with a busy timeout, which lets several processes share one database.
package sqlstore
