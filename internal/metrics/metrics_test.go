package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns the value of the series of name whose labels include want.
func sample(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m.GetLabel(), want) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("series %s%v not found", name, want)
	return 0
}

func labelsMatch(labels []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, l := range labels {
		if v, ok := want[l.GetName()]; ok && v == l.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestMetricsRecord(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	m.ObserveGenerationAttempt("bluelm", "success", 300*time.Millisecond)
	m.ObserveGenerationAttempt("bluelm", "transient_error", time.Second)
	m.ObserveGenerationAttempt("bluelm", "transient_error", time.Second)
	m.ObserveDispatch("live", "skipped")
	m.ObserveDelivery("sent")
	m.SetLiveConnections(3)

	assert.Equal(t, 1.0, sample(t, reg, "taskpulse_generation_attempts_total",
		map[string]string{"provider": "bluelm", "outcome": "success"}))
	assert.Equal(t, 2.0, sample(t, reg, "taskpulse_generation_attempts_total",
		map[string]string{"provider": "bluelm", "outcome": "transient_error"}))
	assert.Equal(t, 3.0, sample(t, reg, "taskpulse_generation_duration_seconds",
		map[string]string{"provider": "bluelm"}))
	assert.Equal(t, 1.0, sample(t, reg, "taskpulse_dispatch_outcomes_total",
		map[string]string{"channel": "live", "outcome": "skipped"}))
	assert.Equal(t, 1.0, sample(t, reg, "taskpulse_reminder_deliveries_total",
		map[string]string{"result": "sent"}))
	assert.Equal(t, 3.0, sample(t, reg, "taskpulse_live_connections", nil))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGenerationAttempt("gemini", "error", time.Second)
		m.ObserveDispatch("durable", "delivered")
		m.ObserveDelivery("failed")
		m.SetLiveConnections(1)
	})
}

func TestMustNewPanicsOnDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	MustNew(reg)
	assert.Panics(t, func() { MustNew(reg) })
}
