package fstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/db/engines/maple"
	"github.com/ValentinKolb/metasync/lib/store"
	"github.com/ValentinKolb/metasync/lib/store/lstore"
	"github.com/gofrs/flock"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"os"
	"path/filepath"
	"sync"
)

var Logger = logger.GetLogger("store")

// Store is a local store whose content is mirrored into a snapshot file.
type Store struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	engine db.KVDB
	inner  store.IStore

	// generation of the snapshot as last loaded or written by this process.
	// Every save increments it, 0 means nothing was loaded yet.
	gen uint64
}

// Open opens (or creates) the snapshot file at path.
// The directory is created if it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	engine := maple.NewMapleDB(nil)
	s := &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		engine: engine,
		inner:  lstore.Wrap(engine),
	}

	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock snapshot: %w", err)
	}
	defer s.unlock()

	if err := s.refreshLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Set(key string, value []byte) error {
	return s.write(func() error { return s.inner.Set(key, value) })
}

func (s *Store) Delete(key string) error {
	return s.write(func() error { return s.inner.Delete(key) })
}

func (s *Store) Get(key string) (value []byte, loaded bool, err error) {
	err = s.read(func() error {
		value, loaded, err = s.inner.Get(key)
		return err
	})
	return value, loaded, err
}

func (s *Store) Has(key string) (loaded bool, err error) {
	err = s.read(func() error {
		loaded, err = s.inner.Has(key)
		return err
	})
	return loaded, err
}

func (s *Store) Keys() (keys []string, err error) {
	err = s.read(func() error {
		keys, err = s.inner.Keys()
		return err
	})
	return keys, err
}

func (s *Store) GetDBInfo() (db.DatabaseInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.GetDBInfo()
}

// Close releases the file lock handle and the engine.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.lock.Close(), s.engine.Close())
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// read runs fn under a shared file lock after picking up changes other
// processes wrote to the snapshot.
func (s *Store) read(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to lock snapshot: %s", err))
	}
	defer s.unlock()

	if err := s.refreshLocked(); err != nil {
		return err
	}
	return fn()
}

// write runs fn under an exclusive file lock and persists the snapshot afterwards.
func (s *Store) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to lock snapshot: %s", err))
	}
	defer s.unlock()

	if err := s.refreshLocked(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return s.saveLocked()
}

func (s *Store) unlock() {
	if err := s.lock.Unlock(); err != nil {
		Logger.Warningf("failed to unlock %s: %v", s.lock.Path(), err)
	}
}

// refreshLocked reloads the snapshot if another process wrote a newer generation.
// The caller must hold s.mu and the file lock.
func (s *Store) refreshLocked() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to open snapshot: %s", err))
	}
	defer f.Close()

	var header [8]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to read snapshot header %s: %s", s.path, err))
	}
	gen := binary.BigEndian.Uint64(header[:])
	if gen == s.gen {
		return nil
	}

	if err := s.engine.Load(f); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to load snapshot %s: %s", s.path, err))
	}

	// continue the write index from the loaded snapshot
	s.inner = lstore.Wrap(s.engine)
	s.gen = gen
	Logger.Debugf("loaded snapshot %s (generation %d)", s.path, gen)
	return nil
}

// saveLocked writes the snapshot to a temporary file and renames it into place.
// The caller must hold s.mu and the exclusive file lock.
func (s *Store) saveLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to create snapshot: %s", err))
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	var header [8]byte
	binary.BigEndian.PutUint64(header[:], s.gen+1)
	if _, err := tmp.Write(header[:]); err != nil {
		tmp.Close()
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to write snapshot: %s", err))
	}
	if err := s.engine.Save(tmp); err != nil {
		tmp.Close()
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to write snapshot: %s", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to sync snapshot: %s", err))
	}
	if err := tmp.Close(); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to close snapshot: %s", err))
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to replace snapshot: %s", err))
	}
	s.gen++
	return nil
}
