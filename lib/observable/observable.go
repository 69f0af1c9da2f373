package observable

import (
	"reflect"
	"sync"
)

// Observable is anything that can notify about changes.
type Observable interface {
	// Subscribe registers fn to be called after every change. The returned function
	// removes the subscription; calling it more than once has no effect.
	Subscribe(fn func()) (dispose func())
}

// Option configures a Value
type Option[T any] func(*Value[T])

// WithEqual sets the function used to decide whether a Set changes the value.
// The default is reflect.DeepEqual.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(v *Value[T]) {
		v.equal = equal
	}
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Value is an observable cell holding a single value of type T.
// It is safe for concurrent use. Subscribers are called synchronously on the
// goroutine calling Set, in registration order, after the value was updated.
type Value[T any] struct {
	mu     sync.RWMutex
	value  T
	equal  func(a, b T) bool
	nextID uint64
	subs   []subscriber[T]
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T, opts ...Option[T]) *Value[T] {
	v := &Value[T]{
		value: initial,
		equal: func(a, b T) bool { return reflect.DeepEqual(a, b) },
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores next and notifies subscribers if it differs from the current value.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	if v.equal(v.value, next) {
		v.mu.Unlock()
		return
	}
	v.value = next
	subs := make([]subscriber[T], len(v.subs))
	copy(subs, v.subs)
	v.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.Set(fn(v.Get()))
}

// OnChange registers fn to be called with the new value after every change.
func (v *Value[T]) OnChange(fn func(T)) (dispose func()) {
	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribe implements Observable.
func (v *Value[T]) Subscribe(fn func()) (dispose func()) {
	return v.OnChange(func(T) { fn() })
}

// Watch runs effect whenever the result of accessor changes after src notified
// about a change. The effect does not run for the value at registration time; a
// change that happens while Watch subscribes runs it once before Watch returns.
func Watch[T comparable](src Observable, accessor func() T, effect func(T)) (dispose func()) {
	var (
		mu   sync.Mutex
		last = accessor()
	)
	react := func() {
		mu.Lock()
		next := accessor()
		if next == last {
			mu.Unlock()
			return
		}
		last = next
		mu.Unlock()

		effect(next)
	}

	dispose = src.Subscribe(react)
	react()
	return dispose
}
