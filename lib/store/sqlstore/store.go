package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	_ "github.com/mattn/go-sqlite3"
)

var Logger = logger.GetLogger("store")

const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// Store is an IStore backed by a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path and ensures the schema exists.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path == ":memory:" {
		// a shared cache keeps all pooled connections on the same in-memory database
		dsn = fmt.Sprintf("file:metasync-%d?mode=memory&cache=shared", time.Now().UnixNano())
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	Logger.Infof("opened sqlite store %s", path)
	return &Store{db: conn, path: path}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Set(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.Exec(`
		INSERT INTO meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to set %q: %s", key, err))
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM meta WHERE key = ?`, key); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to delete %q: %s", key, err))
	}
	return nil
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to get %q: %s", key, err))
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *Store) Has(key string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM meta WHERE key = ?)`, key).Scan(&exists)
	if err != nil {
		return false, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to check %q: %s", key, err))
	}
	return exists, nil
}

func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM meta`)
	if err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to list keys: %s", err))
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to scan key: %s", err))
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to list keys: %s", err))
	}
	return keys, nil
}

// storeInfo is reported as metadata by GetDBInfo
type storeInfo struct {
	Path        string `json:"path"`
	LastUpdated int64  `json:"last_updated_ms"`
}

func (s *Store) GetDBInfo() (db.DatabaseInfo, error) {
	var (
		entries   int
		sizeBytes sql.NullInt64
		updated   sql.NullInt64
	)
	err := s.db.QueryRow(`SELECT COUNT(*), SUM(LENGTH(key) + LENGTH(value)), MAX(updated_at) FROM meta`).
		Scan(&entries, &sizeBytes, &updated)
	if err != nil {
		return db.DatabaseInfo{}, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to read info: %s", err))
	}

	return db.DatabaseInfo{
		SizeBytes: int(sizeBytes.Int64),
		Entries:   entries,
		DbType:    db.ImplSQLite,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureHas, db.FeatureKeys,
		},
		Metadata: storeInfo{Path: s.path, LastUpdated: updated.Int64},
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
