// Package metrics records run statistics with prometheus. A batch tool has no
// scrape endpoint, so the registry is written to a node-exporter textfile
// after each run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "billsum"

// Metrics holds the collectors for statement runs. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	statements  *prometheus.CounterVec
	mismatches  prometheus.Counter
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	lastRun     prometheus.Gauge
	lastRows    prometheus.Gauge
	lastPrinted prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statements_processed_total",
			Help:      "Statements processed, by result.",
		}, []string{"result"}),
		mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "totals_mismatch_total",
			Help:      "Statements whose computed total differs from the printed total.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Summary runs, by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a summary run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		lastRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_statements",
			Help:      "Rows in the last summary table.",
		}),
		lastPrinted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_statement_printed_total",
			Help:      "Printed total of the most recent statement, in currency units.",
		}),
	}

	m.registry.MustRegister(
		m.statements,
		m.mismatches,
		m.runs,
		m.runDuration,
		m.lastRun,
		m.lastRows,
		m.lastPrinted,
	)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStatement counts one processed statement.
func (m *Metrics) ObserveStatement(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.statements.WithLabelValues(result).Inc()
}

// ObserveMismatch counts one totals mismatch.
func (m *Metrics) ObserveMismatch() {
	if m == nil {
		return
	}
	m.mismatches.Inc()
}

// ObserveRun records the outcome of a whole run started at start.
func (m *Metrics) ObserveRun(start time.Time, rows int, lastPrinted float64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(time.Since(start).Seconds())
	m.lastRun.SetToCurrentTime()
	if err == nil {
		m.lastRows.Set(float64(rows))
		m.lastPrinted.Set(lastPrinted)
	}
}

// WriteTextfile writes the registry in the text exposition format to path.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
