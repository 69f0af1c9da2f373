package metasync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/metasync/lib/metastore"
	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("metasync")

// ErrClosed is returned by Flush after the writer was closed and drained.
var ErrClosed = errors.New("metasync: writer closed")

// maxLoadAttempts bounds how often Load retries when a flush pass moved fields
// while it was reading.
const maxLoadAttempts = 3

// flushCycle is one run of flush passes, from the first pass until no retry is queued.
type flushCycle struct {
	done chan struct{}
	err  error
}

// Writer collects staged field updates per scope and writes them to the store in
// throttled flush passes. A single Writer is meant to be shared by all bindings of
// a process; it is safe for concurrent use.
type Writer struct {
	store        metastore.IMetaStore
	interval     time.Duration
	flushTimeout time.Duration
	log          logger.ILogger

	// pending holds staged fields per scope key. Field maps are never modified
	// after they were stored, updates replace them (copy on write).
	pending *xsync.MapOf[string, record.Record]
	// inflight holds the fields a running pass is currently writing.
	inflight *xsync.MapOf[string, record.Record]
	// moves counts transfers from pending to inflight
	moves atomic.Uint64

	throttle *throttle

	mu     sync.Mutex
	cycle  *flushCycle // nil while no pass is running
	queued int         // retry requests for the running cycle

	// stageMu is held shared by Stage and exclusively while Close marks the
	// writer closed, so no stage lands after the final flush started
	stageMu sync.RWMutex
	closed  atomic.Bool
	drained atomic.Bool

	metricSet *metrics.Set
	metrics   *writerMetrics
}

// NewWriter creates a writer persisting into store.
func NewWriter(store metastore.IMetaStore, opts ...Option) *Writer {
	w := &Writer{
		store:    store,
		interval: DefaultInterval,
		log:      Logger,
		pending:  xsync.NewMapOf[string, record.Record](),
		inflight: xsync.NewMapOf[string, record.Record](),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metricSet == nil {
		w.metricSet = metrics.NewSet()
	}
	w.metrics = newWriterMetrics(w.metricSet, func() float64 {
		return float64(w.pending.Size())
	})
	w.throttle = newThrottle(w.interval, w.flushInBackground)
	return w
}

// --------------------------------------------------------------------------
// Staging
// --------------------------------------------------------------------------

// Stage merges {field: value} into the pending fields of scope and schedules a
// flush pass. A value staged earlier for the same field that was not flushed yet
// is replaced. Stage never blocks on I/O.
//
// After Close, staged values are dropped.
func (w *Writer) Stage(scope, field string, value any) {
	w.stageMu.RLock()
	defer w.stageMu.RUnlock()
	if w.closed.Load() {
		w.log.Warningf("dropping %s.%s: writer is closed", scope, field)
		return
	}

	w.pending.Compute(scope, func(old record.Record, _ bool) (record.Record, bool) {
		return old.Merge(record.Record{field: value}), false
	})
	w.metrics.staged.Inc()
	w.throttle.Trigger()
}

// Pending returns the number of scopes with staged, unflushed fields.
func (w *Writer) Pending() int {
	return w.pending.Size()
}

// --------------------------------------------------------------------------
// Flushing
// --------------------------------------------------------------------------

func (w *Writer) flushInBackground() {
	if err := w.Flush(context.Background()); err != nil && !errors.Is(err, ErrClosed) {
		w.log.Debugf("background flush finished with errors: %v", err)
	}
}

// Flush writes all pending fields to the store and returns when they are written.
//
// Flush passes never run concurrently. If a pass is already running, the call
// queues one more pass behind it and waits for both. The returned error joins the
// per-scope failures of the cycle; failed fields are not retried. Waiting ends
// early with the context's error if ctx is done, the flush itself continues.
// Passes queued by other callers run to completion even if ctx is cancelled, and
// scopes left pending by a cancelled pass are picked up by a later background pass.
func (w *Writer) Flush(ctx context.Context) error {
	if w.drained.Load() {
		return ErrClosed
	}

	w.mu.Lock()
	if c := w.cycle; c != nil {
		w.queued++
		w.metrics.retries.Inc()
		w.mu.Unlock()

		select {
		case <-c.done:
			return c.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c := &flushCycle{done: make(chan struct{})}
	w.cycle = c
	w.mu.Unlock()

	var errs []error
	passCtx := ctx
	for {
		if err := w.pass(passCtx); err != nil {
			errs = append(errs, err)
		}

		w.mu.Lock()
		if w.queued == 0 {
			c.err = errors.Join(errs...)
			w.cycle = nil
			close(c.done)
			w.mu.Unlock()

			if w.pending.Size() > 0 && !w.closed.Load() {
				w.throttle.Trigger()
			}
			return c.err
		}
		w.queued = 0
		w.mu.Unlock()

		// the retry serves the callers that queued it, not only the owner of ctx
		passCtx = context.WithoutCancel(ctx)
	}
}

// pass drains the scopes pending at its start, one after the other.
func (w *Writer) pass(ctx context.Context) error {
	w.metrics.passes.Inc()
	start := time.Now()
	defer w.metrics.flushDuration.UpdateDuration(start)

	scopes := make([]string, 0, w.pending.Size())
	w.pending.Range(func(scope string, _ record.Record) bool {
		scopes = append(scopes, scope)
		return true
	})

	var errs []error
	for _, scope := range scopes {
		// scopes not reached stay pending for the next pass
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		fields, ok := w.pending.LoadAndDelete(scope)
		if !ok {
			continue
		}
		w.inflight.Store(scope, fields)
		w.moves.Add(1)

		err := w.writeScope(ctx, scope, fields)
		w.inflight.Delete(scope)
		if err != nil {
			w.log.Errorf("failed to persist %d field(s) of %s: %v", len(fields), scope, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeScope merges fields over the stored record of scope and writes it back.
func (w *Writer) writeScope(ctx context.Context, scope string, fields record.Record) error {
	if w.flushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.flushTimeout)
		defer cancel()
	}

	existing, _, err := w.store.GetItem(ctx, scope)
	if err != nil {
		w.metrics.readErrors.Inc()
		return fmt.Errorf("read %s: %w", scope, err)
	}

	if err := w.store.SetItem(ctx, scope, existing.Merge(fields)); err != nil {
		w.metrics.writeErrors.Inc()
		return fmt.Errorf("write %s: %w", scope, err)
	}
	w.metrics.recordsWritten.Inc()
	return nil
}

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

// Load returns the record of scope as it will be once all staged fields are
// flushed: the stored record overlaid with the fields currently being written and
// the fields still pending. A missing record loads as an empty one.
func (w *Writer) Load(ctx context.Context, scope string) (record.Record, error) {
	var (
		rec record.Record
		err error
	)
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		moves := w.moves.Load()

		// pending is read before inflight and both before the store: a field
		// missed in one of them has already been moved on to the next
		pending, _ := w.pending.Load(scope)
		inflight, _ := w.inflight.Load(scope)

		var stored record.Record
		stored, _, err = w.store.GetItem(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", scope, err)
		}

		rec = stored.Merge(inflight).Merge(pending)
		if w.moves.Load() == moves {
			break
		}
	}
	return rec, nil
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Close stops accepting staged values, cancels a scheduled pass and flushes what
// is pending. Calling Close again is a no-op.
func (w *Writer) Close(ctx context.Context) error {
	w.stageMu.Lock()
	first := w.closed.CompareAndSwap(false, true)
	w.stageMu.Unlock()
	if !first {
		return nil
	}
	w.throttle.Cancel()

	err := w.Flush(ctx)
	w.drained.Store(true)
	if n := w.pending.Size(); n > 0 {
		w.log.Warningf("closed with %d unflushed scope(s)", n)
	}
	return err
}

// Stats returns the current writer counters.
func (w *Writer) Stats() Stats {
	return Stats{
		Staged:         w.metrics.staged.Get(),
		Passes:         w.metrics.passes.Get(),
		Retries:        w.metrics.retries.Get(),
		ReadErrors:     w.metrics.readErrors.Get(),
		WriteErrors:    w.metrics.writeErrors.Get(),
		RecordsWritten: w.metrics.recordsWritten.Get(),
		Pending:        w.pending.Size(),
	}
}

// WritePrometheus writes the writer metrics in Prometheus text format.
func (w *Writer) WritePrometheus(out io.Writer) {
	w.metricSet.WritePrometheus(out)
}
