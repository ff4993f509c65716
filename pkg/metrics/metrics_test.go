package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			key := fam.GetName()
			for _, lp := range metric.GetLabel() {
				key += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				values[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[key] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				values[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.ObserveStatement(true)
	m.ObserveStatement(true)
	m.ObserveStatement(false)
	m.ObserveMismatch()
	m.ObserveRun(time.Now().Add(-time.Second), 2, 97.33, nil)
	m.ObserveRun(time.Now(), 0, 0, errors.New("boom"))

	v := gathered(t, m)
	assert.Equal(t, 2.0, v["billsum_statements_processed_total{result=ok}"])
	assert.Equal(t, 1.0, v["billsum_statements_processed_total{result=failed}"])
	assert.Equal(t, 1.0, v["billsum_totals_mismatch_total"])
	assert.Equal(t, 1.0, v["billsum_runs_total{result=ok}"])
	assert.Equal(t, 1.0, v["billsum_runs_total{result=failed}"])
	assert.Equal(t, 2.0, v["billsum_run_duration_seconds"])
	// A failed run leaves the last good row count in place.
	assert.Equal(t, 2.0, v["billsum_last_run_statements"])
	assert.Equal(t, 97.33, v["billsum_last_statement_printed_total"])
	assert.Greater(t, v["billsum_last_run_timestamp_seconds"], 0.0)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ObserveStatement(true)

	path := filepath.Join(t.TempDir(), "billsum.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `billsum_statements_processed_total{result="ok"} 1`)

	assert.NoError(t, m.WriteTextfile(""))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStatement(true)
		m.ObserveMismatch()
		m.ObserveRun(time.Now(), 1, 1, nil)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
