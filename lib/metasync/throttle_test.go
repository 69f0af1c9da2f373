package metasync

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestThrottleTrailingEdge(t *testing.T) {
	var runs atomic.Int32
	th := newThrottle(30*time.Millisecond, func() { runs.Add(1) })

	for i := 0; i < 10; i++ {
		th.Trigger()
	}
	if !th.Scheduled() {
		t.Fatalf("Expected a scheduled run")
	}
	if runs.Load() != 0 {
		t.Fatalf("Expected no run before the interval elapsed")
	}

	waitFor(t, time.Second, "throttled run", func() bool { return runs.Load() == 1 })
	waitFor(t, time.Second, "timer reset", func() bool { return !th.Scheduled() })

	th.Trigger()
	waitFor(t, time.Second, "second run", func() bool { return runs.Load() == 2 })
}

func TestThrottleCancel(t *testing.T) {
	var runs atomic.Int32
	th := newThrottle(20*time.Millisecond, func() { runs.Add(1) })

	if th.Cancel() {
		t.Errorf("Expected cancel without scheduled run to report false")
	}

	th.Trigger()
	if !th.Cancel() {
		t.Errorf("Expected cancel to stop the scheduled run")
	}
	time.Sleep(60 * time.Millisecond)
	if runs.Load() != 0 {
		t.Errorf("Expected no run after cancel, got %d", runs.Load())
	}
}
