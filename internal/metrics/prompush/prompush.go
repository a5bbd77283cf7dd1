// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Operation metrics are collected in client_golang CounterVec and SummaryVec
// collectors on a private registry and pushed to a Pushgateway on Flush,
// since a short-lived CLI has no scrape endpoint. The metrics "job" label
// (the entity table) is exported as "table"; the Pushgateway job grouping
// key is the backend's own job name.
package prompush

import (
	"fmt"

	"casmidb/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	opCounter  *prometheus.CounterVec // casmidb_op_total
	opDuration *prometheus.SummaryVec // casmidb_op_duration_seconds
	rowCounter *prometheus.CounterVec // casmidb_rows_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "casmidb"
	}

	reg := prometheus.NewRegistry()

	opCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.OpTotal,
			Help: "Total number of entity operations, partitioned by table, op, and status.",
		},
		[]string{"table", "op", "status"},
	)
	opDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.OpDurationSeconds,
			Help:       "Duration of entity operations in seconds, partitioned by table, op, and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"table", "op", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows touched per table and kind (inserted, updated, deleted, loaded).",
		},
		[]string{"table", "kind"},
	)

	if err := reg.Register(opCounter); err != nil {
		return nil, fmt.Errorf("prompush: register op counter: %w", err)
	}
	if err := reg.Register(opDuration); err != nil {
		return nil, fmt.Errorf("prompush: register op summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        reg,
		opCounter:  opCounter,
		opDuration: opDuration,
		rowCounter: rowCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.OpTotal:
		if b.opCounter == nil {
			return
		}
		b.opCounter.WithLabelValues(labels["job"], labels["op"], labels["status"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["job"], labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.OpDurationSeconds || b.opDuration == nil {
		return
	}
	b.opDuration.WithLabelValues(labels["job"], labels["op"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
