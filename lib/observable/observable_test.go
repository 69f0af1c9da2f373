package observable

import (
	"sync"
	"testing"
)

func TestSetNotifiesOnlyOnChange(t *testing.T) {
	v := NewValue(1)

	var got []int
	v.OnChange(func(n int) { got = append(got, n) })

	v.Set(1)
	v.Set(2)
	v.Set(2)
	v.Set(3)

	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Expected notifications [2 3], got %v", got)
	}
	if v.Get() != 3 {
		t.Errorf("Expected 3, got %d", v.Get())
	}
}

func TestDeepEqualDefault(t *testing.T) {
	v := NewValue([]string{"a"})

	calls := 0
	v.Subscribe(func() { calls++ })

	v.Set([]string{"a"})
	if calls != 0 {
		t.Errorf("Expected deep equal slice to be ignored, got %d calls", calls)
	}
	v.Set([]string{"a", "b"})
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestWithEqual(t *testing.T) {
	// never equal: every Set notifies
	v := NewValue(0, WithEqual(func(a, b int) bool { return false }))

	calls := 0
	v.Subscribe(func() { calls++ })
	v.Set(0)
	v.Set(0)

	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestDispose(t *testing.T) {
	v := NewValue("")

	var a, b int
	disposeA := v.Subscribe(func() { a++ })
	v.Subscribe(func() { b++ })

	v.Set("x")
	disposeA()
	disposeA()
	v.Set("y")

	if a != 1 || b != 2 {
		t.Errorf("Expected a=1 b=2, got a=%d b=%d", a, b)
	}
}

func TestDisposeInsideCallback(t *testing.T) {
	v := NewValue(0)

	calls := 0
	var dispose func()
	dispose = v.Subscribe(func() {
		calls++
		dispose()
	})

	v.Set(1)
	v.Set(2)

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestUpdate(t *testing.T) {
	v := NewValue(1)
	v.Update(func(n int) int { return n + 41 })
	if v.Get() != 42 {
		t.Errorf("Expected 42, got %d", v.Get())
	}
}

func TestWatch(t *testing.T) {
	type state struct {
		user string
		org  string
	}
	src := NewValue(state{user: "1", org: "a"})

	var seen []string
	dispose := Watch(src, func() string { return src.Get().org }, func(org string) {
		seen = append(seen, org)
	})

	if len(seen) != 0 {
		t.Fatalf("Expected no effect on registration, got %v", seen)
	}

	src.Set(state{user: "2", org: "a"}) // accessor result unchanged
	src.Set(state{user: "2", org: "b"})
	src.Set(state{user: "3", org: "c"})
	dispose()
	src.Set(state{user: "3", org: "d"})

	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Errorf("Expected effects [b c], got %v", seen)
	}
}

// switchingSource changes the watched value while a subscription is registered
type switchingSource struct {
	*Value[string]
	next string
}

func (s *switchingSource) Subscribe(fn func()) func() {
	s.Set(s.next)
	return s.Value.Subscribe(fn)
}

func TestWatchSeesChangeDuringSubscribe(t *testing.T) {
	src := &switchingSource{Value: NewValue("a"), next: "b"}

	var seen []string
	dispose := Watch[string](src, src.Get, func(org string) {
		seen = append(seen, org)
	})
	defer dispose()

	if len(seen) != 1 || seen[0] != "b" {
		t.Fatalf("Expected the change during registration to run the effect, got %v", seen)
	}

	src.Set("a")
	if len(seen) != 2 || seen[1] != "a" {
		t.Errorf("Expected switching back to run the effect, got %v", seen)
	}
}

func TestConcurrentSet(t *testing.T) {
	v := NewValue(0, WithEqual(func(a, b int) bool { return a == b }))

	var mu sync.Mutex
	calls := 0
	v.Subscribe(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v.Set(n)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 100 {
		t.Errorf("Expected 100 calls, got %d", calls)
	}
}
