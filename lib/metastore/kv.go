package metastore

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/ValentinKolb/metasync/lib/store"
)

// KVMetaStore stores encoded records in a byte oriented store.IStore.
type KVMetaStore struct {
	store store.IStore
	codec record.ICodec
}

// NewKVMetaStore creates a meta store over s. A nil codec selects JSON.
func NewKVMetaStore(s store.IStore, codec record.ICodec) *KVMetaStore {
	if codec == nil {
		codec = record.NewJSONCodec()
	}
	return &KVMetaStore{store: s, codec: codec}
}

func (m *KVMetaStore) GetItem(ctx context.Context, key string) (record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	data, found, err := m.store.Get(key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}

	rec, err := m.codec.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return rec, true, nil
}

func (m *KVMetaStore) SetItem(ctx context.Context, key string, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := m.codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if err := m.store.Set(key, data); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (m *KVMetaStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := m.store.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Store returns the underlying byte store.
func (m *KVMetaStore) Store() store.IStore {
	return m.store
}

// Close closes the underlying store if it holds resources.
func (m *KVMetaStore) Close() error {
	if c, ok := m.store.(store.ICloser); ok {
		return c.Close()
	}
	return nil
}
