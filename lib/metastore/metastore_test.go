package metastore

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/db/engines/maple"
	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/ValentinKolb/metasync/lib/store/lstore"
)

type metaStore interface {
	IMetaStore
	IKeyLister
}

func runMetaStoreTests(t *testing.T, name string, factory func() metaStore) {
	t.Run(name, func(t *testing.T) {
		ctx := context.Background()

		t.Run("Missing", func(t *testing.T) {
			s := factory()
			rec, found, err := s.GetItem(ctx, "1-organization-1")
			if err != nil || found || rec != nil {
				t.Errorf("Expected missing record, got %v found=%v err=%v", rec, found, err)
			}
		})

		t.Run("SetGet", func(t *testing.T) {
			s := factory()
			in := record.Record{"theme": "dark", "zoom": float64(0), "pinned": false}
			if err := s.SetItem(ctx, "1-organization-1", in); err != nil {
				t.Fatalf("SetItem failed: %v", err)
			}

			// the stored record must not alias the caller's map
			in["theme"] = "light"

			out, found, err := s.GetItem(ctx, "1-organization-1")
			if err != nil || !found {
				t.Fatalf("Expected record, got found=%v err=%v", found, err)
			}
			want := record.Record{"theme": "dark", "zoom": float64(0), "pinned": false}
			if !reflect.DeepEqual(out, want) {
				t.Errorf("Expected %v, got %v", want, out)
			}
		})

		t.Run("Replace", func(t *testing.T) {
			s := factory()
			s.SetItem(ctx, "k", record.Record{"a": "1"})
			s.SetItem(ctx, "k", record.Record{"b": "2"})

			out, _, _ := s.GetItem(ctx, "k")
			if !reflect.DeepEqual(out, record.Record{"b": "2"}) {
				t.Errorf("Expected record to be replaced, got %v", out)
			}
		})

		t.Run("Keys", func(t *testing.T) {
			s := factory()
			s.SetItem(ctx, "b", record.Record{})
			s.SetItem(ctx, "a", nil)

			keys, err := s.Keys(ctx)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			sort.Strings(keys)
			if !reflect.DeepEqual(keys, []string{"a", "b"}) {
				t.Errorf("Unexpected keys %v", keys)
			}
		})

		t.Run("CancelledContext", func(t *testing.T) {
			s := factory()
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			if err := s.SetItem(cctx, "k", record.Record{}); err == nil {
				t.Errorf("Expected error for cancelled context")
			}
		})
	})
}

func TestMetaStores(t *testing.T) {
	runMetaStoreTests(t, "memory", func() metaStore {
		return NewMemoryMetaStore()
	})

	for _, codec := range []record.ICodec{record.NewJSONCodec(), record.NewGOBCodec()} {
		runMetaStoreTests(t, "kv-"+codec.Name(), func() metaStore {
			s := lstore.NewLocalStore(func() db.KVDB {
				return maple.NewMapleDB(nil)
			})
			return NewKVMetaStore(s, codec)
		})
	}
}

func TestKVMetaStoreCorruptValue(t *testing.T) {
	s := lstore.NewLocalStore(func() db.KVDB {
		return maple.NewMapleDB(nil)
	})
	s.Set("broken", []byte("{not json"))

	m := NewKVMetaStore(s, nil)
	if _, _, err := m.GetItem(context.Background(), "broken"); err == nil {
		t.Errorf("Expected decode error")
	}
}
