package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/store"
	storetesting "github.com/ValentinKolb/metasync/lib/store/testing"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetesting.RunIStoreTests(t, "sqlite-file", func(t *testing.T) store.IStore {
		return openTestStore(t, filepath.Join(t.TempDir(), "meta.db"))
	})
	storetesting.RunIStoreTests(t, "sqlite-memory", func(t *testing.T) store.IStore {
		return openTestStore(t, ":memory:")
	})
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := first.Set("1-organization-1", []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	second := openTestStore(t, path)
	value, found, err := second.Get("1-organization-1")
	if err != nil || !found {
		t.Fatalf("Expected key after reopen, got found=%v err=%v", found, err)
	}
	if string(value) != `{"theme":"dark"}` {
		t.Errorf("Unexpected value %s", value)
	}
}

func TestGetDBInfo(t *testing.T) {
	s := openTestStore(t, ":memory:")

	info, err := s.GetDBInfo()
	if err != nil {
		t.Fatalf("GetDBInfo failed: %v", err)
	}
	if info.Entries != 0 || info.SizeBytes != 0 {
		t.Errorf("Expected empty info, got %+v", info)
	}

	s.Set("ab", []byte("cde"))
	s.Set("ab", []byte("fgh"))

	info, err = s.GetDBInfo()
	if err != nil {
		t.Fatalf("GetDBInfo failed: %v", err)
	}
	if info.DbType != db.ImplSQLite {
		t.Errorf("Expected db type %s, got %s", db.ImplSQLite, info.DbType)
	}
	if info.Entries != 1 {
		t.Errorf("Expected upsert to keep one entry, got %d", info.Entries)
	}
	if info.SizeBytes != 5 {
		t.Errorf("Expected size 5, got %d", info.SizeBytes)
	}
}
