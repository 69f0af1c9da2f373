package testing

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/metasync/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("StaleWrites", func(t *testing.T) {
			testStaleWrites(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentUsage", func(t *testing.T) {
			testConcurrentUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "1-organization-1"
	testValue1 := []byte(`{"theme":"dark"}`)
	testValue2 := []byte(`{"theme":"light"}`)

	database.Set(testKey, testValue1, 1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2, 2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	if database.WriteIdx() != 2 {
		t.Errorf("Expected write index 2, got %d", database.WriteIdx())
	}
}

func testStaleWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("key", []byte("new"), 10)
	database.Set("key", []byte("old"), 5)

	if result, _ := database.Get("key"); string(result) != "new" {
		t.Errorf("Expected stale write to be ignored, got %s", result)
	}

	database.Delete("key", 7)
	if _, exists := database.Get("key"); !exists {
		t.Errorf("Expected stale delete to be ignored")
	}

	database.Set("key", []byte("same-index"), 10)
	if result, _ := database.Get("key"); string(result) != "same-index" {
		t.Errorf("Expected write with equal index to overwrite, got %s", result)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	prefix := "delete-test-"
	numKeys := 100

	for i := 0; i < numKeys; i++ {
		database.Set(fmt.Sprintf("%s%d", prefix, i), []byte(fmt.Sprintf("value-%d", i)), 1)
	}

	for i := 0; i < numKeys; i += 2 {
		database.Delete(fmt.Sprintf("%s%d", prefix, i), 2)
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		_, exists := database.Get(key)

		if i%2 == 0 && exists {
			t.Errorf("Key %s should be deleted", key)
		} else if i%2 == 1 && !exists {
			t.Errorf("Key %s should still exist", key)
		}
	}

	// deleting a missing key is a no-op
	database.Delete("never-written", 3)
	if _, exists := database.Get("never-written"); exists {
		t.Errorf("Expected deleting a missing key to not create it")
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas|db.FeatureDelete)

	if database.Has("has-key") {
		t.Errorf("Expected Has to return false before Set")
	}

	database.Set("has-key", []byte("value"), 1)
	if !database.Has("has-key") {
		t.Errorf("Expected Has to return true after Set")
	}

	database.Delete("has-key", 2)
	if database.Has("has-key") {
		t.Errorf("Expected Has to return false after Delete")
	}
}

func testKeys(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureKeys|db.FeatureDelete)

	if keys := database.Keys(); len(keys) != 0 {
		t.Errorf("Expected no keys in an empty database, got %v", keys)
	}

	expected := []string{"a", "b", "c"}
	for i, key := range expected {
		database.Set(key, []byte(key), uint64(i+1))
	}
	database.Set("d", []byte("d"), 4)
	database.Delete("d", 5)

	keys := database.Keys()
	sort.Strings(keys)
	if fmt.Sprint(keys) != fmt.Sprint(expected) {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	// close the databases after the test
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureSave|db.FeatureLoad)

	numEntries := 1000
	for i := 0; i < numEntries; i++ {
		database.Set(fmt.Sprintf("save-load-test-key-%d", i), []byte(fmt.Sprintf("save-load-test-value-%d", i)), uint64(i+1))
	}

	// content of database2 must be replaced, not merged
	database2.Set("stale-key", []byte("stale"), 1)

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}
	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("save-load-test-key-%d", i)
		expectedValue := []byte(fmt.Sprintf("save-load-test-value-%d", i))

		actualValue, exists := database2.Get(key)
		if !exists {
			t.Errorf("Key %s not found after Load", key)
			continue
		}
		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value mismatch for key %s: expected %s, got %s", key, expectedValue, actualValue)
		}
	}

	if _, exists := database2.Get("stale-key"); exists {
		t.Errorf("Expected Load to replace the previous content")
	}

	if database2.WriteIdx() != uint64(numEntries) {
		t.Errorf("Expected write index %d after Load, got %d", numEntries, database2.WriteIdx())
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	emptyKeyValue := []byte("value for empty key")
	database.Set("", emptyKeyValue, 1)

	result, exists := database.Get("")
	if !exists {
		t.Errorf("Empty key not found after Set")
	} else if !bytes.Equal(result, emptyKeyValue) {
		t.Errorf("Value mismatch for empty key")
	}

	database.Set("nil-value-key", nil, 2)

	result, exists = database.Get("nil-value-key")
	if !exists {
		t.Errorf("Key for nil value not found after Set")
	} else if len(result) != 0 {
		t.Errorf("Nil value resulted in non-empty value: %v", result)
	}

	largeValue := make([]byte, 1024*1024)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}
	database.Set("large-value-key", largeValue, 3)

	result, exists = database.Get("large-value-key")
	if !exists {
		t.Errorf("Key for large value not found after Set")
	} else if !bytes.Equal(result, largeValue) {
		t.Errorf("Large value mismatch (len %d, expected %d)", len(result), len(largeValue))
	}
}

func testConcurrentUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	numWorkers := 8
	opsPerWorker := 500

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i%50)
				database.Set(key, []byte(fmt.Sprintf("%d", i)), uint64(workerId*opsPerWorker+i+1))
				database.Get(key)
			}
		}(w)
	}

	wg.Wait()

	// each worker's keys hold the last value it wrote
	for w := 0; w < numWorkers; w++ {
		for k := 0; k < 50; k++ {
			key := fmt.Sprintf("worker-%d-key-%d", w, k)
			expected := fmt.Sprintf("%d", opsPerWorker-50+k)
			if value, ok := database.Get(key); !ok || string(value) != expected {
				t.Errorf("Expected %s=%s, got %s (found=%v)", key, expected, value, ok)
			}
		}
	}
}
