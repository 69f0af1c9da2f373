package metasync

import (
	"sync"
	"time"
)

// throttle runs fn at most once per interval, at the end of the interval
// (trailing edge). Triggers while a run is scheduled are absorbed by it.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	fn       func()
}

func newThrottle(interval time.Duration, fn func()) *throttle {
	return &throttle{interval: interval, fn: fn}
}

// Trigger schedules fn unless a run is already scheduled.
func (t *throttle) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.interval, t.fire)
}

func (t *throttle) fire() {
	t.mu.Lock()
	t.timer = nil
	t.mu.Unlock()
	t.fn()
}

// Cancel drops a scheduled run. It reports whether a run was scheduled.
func (t *throttle) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return false
	}
	stopped := t.timer.Stop()
	t.timer = nil
	return stopped
}

// Scheduled reports whether a run is scheduled.
func (t *throttle) Scheduled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}
