package maple

import (
	"bytes"
	"github.com/ValentinKolb/metasync/lib/db"
	dbtesting "github.com/ValentinKolb/metasync/lib/db/testing"
	"testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}

func TestSingleShard(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB(1 shard)", func() db.KVDB {
		return NewMapleDB(&DBOptions{NumShards: 1})
	})
}

func TestLoadRejectsCorruptSnapshot(t *testing.T) {
	database := NewMapleDB(nil)
	defer database.Close()

	database.Set("kept", []byte("value"), 1)

	if err := database.Load(bytes.NewReader([]byte("NOTMAPLE"))); err == nil {
		t.Fatalf("Expected an error for an invalid magic number")
	}

	// truncated snapshot: valid header, missing entries
	var buf bytes.Buffer
	source := NewMapleDB(nil)
	source.Set("a", []byte("1"), 1)
	source.Set("b", []byte("2"), 2)
	if err := source.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-3]
	if err := database.Load(bytes.NewReader(truncated)); err == nil {
		t.Fatalf("Expected an error for a truncated snapshot")
	}

	if value, ok := database.Get("kept"); !ok || string(value) != "value" {
		t.Errorf("Expected database content to survive a failed load, got %q (found=%v)", value, ok)
	}
}
