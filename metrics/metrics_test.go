package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/canopy"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	require.NotNil(t, m.Counter)
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	require.NotNil(t, m.Gauge)
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	require.True(t, ok, "observer %T does not implement prometheus.Metric", o)
	var m dto.Metric
	require.NoError(t, metric.Write(&m))
	require.NotNil(t, m.Histogram)
	return m.GetHistogram().GetSampleCount()
}

func TestObserveCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(WithRegistry(reg), WithNamespace("ui"))

	obs.ObserveCycle(canopy.CycleStats{
		Cycle:      1,
		Events:     4,
		Resolved:   3,
		LaidOut:    3,
		Geometry:   2,
		Deferred:   1,
		Entities:   3,
		Animating:  2,
		LayoutTime: time.Millisecond,
		TotalTime:  2 * time.Millisecond,
	})
	obs.ObserveCycle(canopy.CycleStats{Cycle: 2, Events: 1, Entities: 5})

	assert.Equal(t, 2.0, metricCounterValue(t, obs.cycles))
	assert.Equal(t, uint64(2), metricHistogramCount(t, obs.cycleDuration))
	assert.Equal(t, uint64(2), metricHistogramCount(t, obs.phaseDuration.WithLabelValues(PhaseLayout)))
	assert.Equal(t, 5.0, metricCounterValue(t, obs.work.WithLabelValues("events")))
	assert.Equal(t, 3.0, metricCounterValue(t, obs.work.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, metricCounterValue(t, obs.deferred))
	assert.Equal(t, 5.0, metricGaugeValue(t, obs.entities))
	assert.Equal(t, 0.0, metricGaugeValue(t, obs.animating))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ui_cycles_total")
	assert.Contains(t, names, "ui_phase_duration_seconds")
}

func TestObserverWithContext(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(WithRegistry(reg))
	cx := canopy.New(canopy.WithViewport(100, 100), canopy.WithObserver(obs))
	cx.Entity(canopy.Root).Add()

	cx.Update(0)
	cx.Update(0)

	assert.Equal(t, 2.0, metricCounterValue(t, obs.cycles))
	assert.Equal(t, 2.0, metricGaugeValue(t, obs.entities))
	assert.Equal(t, 2.0, metricCounterValue(t, obs.work.WithLabelValues("geometry")))
	assert.Equal(t, uint64(2), metricHistogramCount(t, obs.phaseDuration.WithLabelValues(PhaseEvents)))
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegistry(reg))
	assert.Panics(t, func() { New(WithRegistry(reg)) })
}
