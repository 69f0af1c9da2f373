package testing

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/metasync/lib/store"
)

// StoreFactory creates a fresh, empty store for one test case.
// Cleanup of resources (files, connections) is registered on t by the factory.
type StoreFactory func(t *testing.T) store.IStore

// RunIStoreTests runs the store conformance suite
func RunIStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(t))
		})

		t.Run("Delete&Has", func(t *testing.T) {
			testDeleteHas(t, factory(t))
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory(t))
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory(t))
		})
	})
}

func testSetGet(t *testing.T, s store.IStore) {
	if _, found, err := s.Get("missing"); err != nil || found {
		t.Fatalf("Expected missing key to be not found, got found=%v err=%v", found, err)
	}

	if err := s.Set("1-organization-1", []byte("first")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("1-organization-1", []byte("second")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := s.Get("1-organization-1")
	if err != nil || !found {
		t.Fatalf("Expected key to be found, got found=%v err=%v", found, err)
	}
	if !bytes.Equal(value, []byte("second")) {
		t.Errorf("Expected value second, got %s", value)
	}

	if err := s.Set("empty", []byte{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if value, found, _ := s.Get("empty"); !found || len(value) != 0 {
		t.Errorf("Expected empty value to be stored, got %q (found=%v)", value, found)
	}
}

func testDeleteHas(t *testing.T, s store.IStore) {
	if err := s.Set("key", []byte("value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ok, err := s.Has("key"); err != nil || !ok {
		t.Fatalf("Expected Has=true, got %v (err=%v)", ok, err)
	}

	if err := s.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, err := s.Has("key"); err != nil || ok {
		t.Errorf("Expected Has=false after Delete, got %v (err=%v)", ok, err)
	}
	if err := s.Delete("never-written"); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
}

func testKeys(t *testing.T, s store.IStore) {
	expected := []string{"1-organization-1", "1-organization-2", "2-organization-1"}
	for _, key := range expected {
		if err := s.Set(key, []byte(key)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if fmt.Sprint(keys) != fmt.Sprint(expected) {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}
}

func testConcurrentWriters(t *testing.T, s store.IStore) {
	numWorkers := 4
	numKeys := 25

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers*numKeys)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for k := 0; k < numKeys; k++ {
				if err := s.Set(fmt.Sprintf("w%d-k%d", worker, k), []byte(fmt.Sprintf("%d", k))); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent Set failed: %v", err)
	}

	for w := 0; w < numWorkers; w++ {
		for k := 0; k < numKeys; k++ {
			key := fmt.Sprintf("w%d-k%d", w, k)
			if value, found, err := s.Get(key); err != nil || !found || string(value) != fmt.Sprintf("%d", k) {
				t.Errorf("Expected %s=%d, got %s (found=%v, err=%v)", key, k, value, found, err)
			}
		}
	}
}
