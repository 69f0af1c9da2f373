package metasync

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

type writerMetrics struct {
	staged         *metrics.Counter
	passes         *metrics.Counter
	retries        *metrics.Counter
	readErrors     *metrics.Counter
	writeErrors    *metrics.Counter
	recordsWritten *metrics.Counter
	flushDuration  *metrics.Histogram
}

func newWriterMetrics(set *metrics.Set, pending func() float64) *writerMetrics {
	set.GetOrCreateGauge("metasync_pending_scopes", pending)
	return &writerMetrics{
		staged:         set.GetOrCreateCounter("metasync_staged_total"),
		passes:         set.GetOrCreateCounter("metasync_flush_passes_total"),
		retries:        set.GetOrCreateCounter("metasync_flush_retries_total"),
		readErrors:     set.GetOrCreateCounter(fmt.Sprintf(`metasync_flush_errors_total{op=%q}`, "read")),
		writeErrors:    set.GetOrCreateCounter(fmt.Sprintf(`metasync_flush_errors_total{op=%q}`, "write")),
		recordsWritten: set.GetOrCreateCounter("metasync_records_written_total"),
		flushDuration:  set.GetOrCreateHistogram("metasync_flush_duration_seconds"),
	}
}

// Stats is a point in time view of the writer counters.
type Stats struct {
	Staged         uint64
	Passes         uint64
	Retries        uint64
	ReadErrors     uint64
	WriteErrors    uint64
	RecordsWritten uint64
	Pending        int
}

func (s Stats) String() string {
	return fmt.Sprintf("staged=%d passes=%d retries=%d records_written=%d read_errors=%d write_errors=%d pending=%d",
		s.Staged, s.Passes, s.Retries, s.RecordsWritten, s.ReadErrors, s.WriteErrors, s.Pending)
}
