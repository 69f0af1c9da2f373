package metasync

import (
	"context"
	"sync"
	"time"

	"github.com/ValentinKolb/metasync/lib/observable"
	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/ValentinKolb/metasync/lib/session"
)

// ScopeResolver returns the current scope key, see session.ScopeResolver.
type ScopeResolver = session.ScopeResolver

type scopeState struct {
	key string
	ok  bool
}

// Binding keeps one field of a scoped record in sync with an observable host value.
// It is created by AutoSave.
type Binding struct {
	w       *Writer
	field   string
	resolve ScopeResolver
	cfg     bindConfig

	// bind loads the field for scope into the host and subscribes to host changes.
	// setDefault assigns the default without subscribing. get reads the host.
	bind       func(scope string, gen uint64) (unsubscribe func())
	setDefault func()
	get        func() any

	mu          sync.Mutex
	gen         uint64 // incremented on every rebind, stale callbacks compare against it
	bound       bool   // scope holds the result of a rebind
	scope       scopeState
	unsubscribe func()
	timer       *time.Timer
	closed      bool

	unwatch func()
}

// AutoSave binds host to field of the record of the current scope.
//
// The stored value (or def, if the record has no such field or no scope resolves)
// is assigned to host right away. Afterwards every change of host is staged in w
// under the scope that was current when the change happened. Whenever scopeSrc
// notifies and the resolved scope differs from the bound one, the binding drops
// its subscription and any debounced change, then loads the new scope.
//
// scopeSrc may be nil for a fixed scope.
func AutoSave[T any](w *Writer, resolver ScopeResolver, scopeSrc observable.Observable, host *observable.Value[T], field string, def T, opts ...BindOption) *Binding {
	b := &Binding{
		w:       w,
		field:   field,
		resolve: resolver,
	}
	for _, opt := range opts {
		opt(&b.cfg)
	}

	b.setDefault = func() {
		host.Set(def)
	}
	b.get = func() any {
		return host.Get()
	}
	b.bind = func(scope string, gen uint64) func() {
		host.Set(loadField(b, scope, def))
		return host.OnChange(func(T) {
			b.changed(gen, scope)
		})
	}

	// the watch is registered first, a scope change during registration then
	// either reaches scopeChanged or is seen by the initial bind below
	if scopeSrc != nil {
		b.unwatch = observable.Watch(scopeSrc, b.current, b.scopeChanged)
	}

	b.mu.Lock()
	if next := b.current(); !b.bound || next != b.scope {
		b.rebindLocked(next)
	}
	b.mu.Unlock()
	return b
}

// loadField reads the bound field of scope, falling back to def when the field is
// absent, nil or cannot be decoded into T.
func loadField[T any](b *Binding, scope string, def T) T {
	ctx := context.Background()
	if b.cfg.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.loadTimeout)
		defer cancel()
	}

	rec, err := b.w.Load(ctx, scope)
	if err != nil {
		b.w.log.Errorf("failed to load %s.%s, using default: %v", scope, b.field, err)
		return def
	}

	raw, ok := rec[b.field]
	if !ok || raw == nil {
		return def
	}
	v, err := record.Decode[T](raw)
	if err != nil {
		b.w.log.Warningf("stored value of %s.%s does not fit, using default: %v", scope, b.field, err)
		return def
	}
	return v
}

func (b *Binding) current() scopeState {
	key, ok := b.resolve()
	return scopeState{key: key, ok: ok}
}

func (b *Binding) scopeChanged(next scopeState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || (b.bound && next == b.scope) {
		return
	}
	b.w.log.Debugf("rebinding %s: %q -> %q", b.field, b.scope.key, next.key)
	b.rebindLocked(next)
}

// rebindLocked tears down the current subscription and binds to next.
// The caller must hold b.mu.
func (b *Binding) rebindLocked(next scopeState) {
	b.gen++
	b.stopLocked()

	b.scope = next
	b.bound = true
	if !next.ok {
		b.setDefault()
		return
	}
	b.unsubscribe = b.bind(next.key, b.gen)
}

func (b *Binding) stopLocked() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// changed is called for every change of the host value made while bound to scope.
// It stages the value the host holds now rather than the notified one: notifications
// of concurrent Sets may arrive out of order, the host value is always the latest.
func (b *Binding) changed(gen uint64, scope string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || gen != b.gen {
		return
	}

	if b.cfg.debounce <= 0 {
		b.w.Stage(scope, b.field, b.get())
		return
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(b.cfg.debounce, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// only the most recent timer stages
		if b.closed || gen != b.gen || b.timer != t {
			return
		}
		b.timer = nil
		b.w.Stage(scope, b.field, b.get())
	})
	b.timer = t
}

// Scope returns the scope key the binding currently writes to.
func (b *Binding) Scope() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scope.key, b.scope.ok
}

// Close detaches the binding: host changes are no longer staged and scope changes
// are ignored. A debounced change that has not been staged yet is discarded.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.gen++
	b.stopLocked()
	b.mu.Unlock()

	if b.unwatch != nil {
		b.unwatch()
	}
}
