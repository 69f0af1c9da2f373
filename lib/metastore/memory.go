package metastore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ValentinKolb/metasync/lib/record"
)

// MemoryMetaStore keeps records in memory. Records are copied on the way in and out
// through JSON, so callers never share maps with the store and values come back in
// the same generic shapes a serializing store would return.
type MemoryMetaStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryMetaStore creates an empty in-memory meta store.
func NewMemoryMetaStore() *MemoryMetaStore {
	return &MemoryMetaStore{items: make(map[string][]byte)}
}

func (m *MemoryMetaStore) GetItem(ctx context.Context, key string) (record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	data, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	rec := record.Record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return rec, true, nil
}

func (m *MemoryMetaStore) SetItem(ctx context.Context, key string, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil {
		rec = record.Record{}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	m.mu.Lock()
	m.items[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryMetaStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of stored records.
func (m *MemoryMetaStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
