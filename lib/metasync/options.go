package metasync

import (
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

// DefaultInterval is the minimum time between two flush passes of a Writer.
const DefaultInterval = 500 * time.Millisecond

// Option configures a Writer
type Option func(*Writer)

// WithInterval sets the throttle interval of the writer.
// A burst of staged changes within one interval results in a single flush pass.
func WithInterval(d time.Duration) Option {
	return func(w *Writer) {
		if d >= 0 {
			w.interval = d
		}
	}
}

// WithLogger sets the logger used for flush errors and warnings.
func WithLogger(l logger.ILogger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// WithMetrics registers the writer metrics in set instead of a private set.
func WithMetrics(set *metrics.Set) Option {
	return func(w *Writer) {
		if set != nil {
			w.metricSet = set
		}
	}
}

// WithFlushTimeout bounds the read and write of a single scope during a flush pass.
// Zero (the default) means no timeout.
func WithFlushTimeout(d time.Duration) Option {
	return func(w *Writer) {
		w.flushTimeout = d
	}
}

// BindOption configures a Binding created by AutoSave
type BindOption func(*bindConfig)

type bindConfig struct {
	debounce    time.Duration
	loadTimeout time.Duration
}

// WithDebounce delays staging of host changes until the value has been stable for d.
// Only the last value of a burst is staged. A pending value is discarded when the
// scope changes.
func WithDebounce(d time.Duration) BindOption {
	return func(c *bindConfig) {
		c.debounce = d
	}
}

// WithLoadTimeout bounds the store read performed when the binding (re)loads its scope.
func WithLoadTimeout(d time.Duration) BindOption {
	return func(c *bindConfig) {
		c.loadTimeout = d
	}
}
