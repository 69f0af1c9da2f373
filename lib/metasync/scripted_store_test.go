package metasync

import (
	"context"
	"fmt"
	"sync"

	"github.com/ValentinKolb/metasync/lib/record"
)

// scriptedStore is an in-memory meta store with hooks to delay or fail
// single operations.
type scriptedStore struct {
	mu      sync.Mutex
	items   map[string]record.Record
	history map[string][]record.Record // every record written, per key
	reads   int
	writes  int

	failRead  map[string]error
	failWrite map[string]error
	// beforeWrite is called (without the store lock) before a record is written
	beforeWrite func(key string, rec record.Record)
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{
		items:     make(map[string]record.Record),
		history:   make(map[string][]record.Record),
		failRead:  make(map[string]error),
		failWrite: make(map[string]error),
	}
}

func (s *scriptedStore) GetItem(_ context.Context, key string) (record.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if err := s.failRead[key]; err != nil {
		return nil, false, err
	}
	rec, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (s *scriptedStore) SetItem(_ context.Context, key string, rec record.Record) error {
	s.mu.Lock()
	hook := s.beforeWrite
	s.mu.Unlock()
	if hook != nil {
		hook(key, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failWrite[key]; err != nil {
		return err
	}
	s.writes++
	s.items[key] = rec.Clone()
	s.history[key] = append(s.history[key], rec.Clone())
	return nil
}

func (s *scriptedStore) put(key string, rec record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = rec.Clone()
}

func (s *scriptedStore) get(key string) record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[key].Clone()
}

func (s *scriptedStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *scriptedStore) failWritesFor(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite[key] = fmt.Errorf("scripted write failure for %s", key)
}

func (s *scriptedStore) failReadsFor(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead[key] = fmt.Errorf("scripted read failure for %s", key)
}
