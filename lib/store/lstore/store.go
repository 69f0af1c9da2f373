package lstore

import (
	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/store"
	"sync/atomic"
)

type storeImpl struct {
	db    db.KVDB
	index atomic.Uint64
}

// NewLocalStore creates a new local store instance.
// This store implementation only works in a single process, the data lives in the
// engine created by the factory.
func NewLocalStore(factory store.DBFactory) store.IStore {
	return newStore(factory())
}

// Wrap creates a local store over an existing engine. The write index continues
// from the engine's current index, which keeps writes after a Load ordered.
func Wrap(database db.KVDB) store.IStore {
	return newStore(database)
}

func newStore(database db.KVDB) *storeImpl {
	s := &storeImpl{db: database}
	s.index.Store(database.WriteIdx())
	return s
}

// incAndGetIndex increments the index and returns the new value.
// It is used to ensure that each write operation has a unique index.
//
// Thread-safety: This method is thread-safe since it uses atomic operations.
func (s *storeImpl) incAndGetIndex() uint64 {
	return s.index.Add(1)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if !s.db.SupportsFeature(db.FeatureSet) {
		return store.NewError(store.RetCUnsupportedOperation, "Set operation is not supported")
	}
	s.db.Set(key, value, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) Delete(key string) error {
	if !s.db.SupportsFeature(db.FeatureDelete) {
		return store.NewError(store.RetCUnsupportedOperation, "Delete operation is not supported")
	}
	s.db.Delete(key, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if !s.db.SupportsFeature(db.FeatureGet) {
		return nil, false, store.NewError(store.RetCUnsupportedOperation, "Get operation is not supported")
	}
	val, ok := s.db.Get(key)
	return val, ok, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	if !s.db.SupportsFeature(db.FeatureHas) {
		return false, store.NewError(store.RetCUnsupportedOperation, "Has operation is not supported")
	}
	return s.db.Has(key), nil
}

func (s *storeImpl) Keys() ([]string, error) {
	if !s.db.SupportsFeature(db.FeatureKeys) {
		return nil, store.NewError(store.RetCUnsupportedOperation, "Keys operation is not supported")
	}
	return s.db.Keys(), nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}

func (s *storeImpl) Close() error {
	return s.db.Close()
}
