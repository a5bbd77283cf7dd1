// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from entity operations.
//
//   - Backend is a narrow interface focused on counters and timing data.
//   - The global backend defaults to a no-op implementation, so metrics are
//     always safe to call even when no real backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog), the
//     same way executors live under internal/storage.
package metrics

import "time"

// Metric names emitted by this package.
const (
	OpTotal           = "casmidb_op_total"
	OpDurationSeconds = "casmidb_op_duration_seconds"
	RowsTotal         = "casmidb_rows_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
// It must be called before any entity operation runs.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency and success/failure of one operation
// (bind, save, delete, populate, ...) on the given table.
func RecordStep(job, op string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"op":     op,
		"status": status,
	}

	backend.IncCounter(OpTotal, 1, lbls)
	backend.ObserveHistogram(OpDurationSeconds, d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds used by the entity package:
//   - "inserted"
//   - "updated"
//   - "deleted"
//   - "loaded"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
