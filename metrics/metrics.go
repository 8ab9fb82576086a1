// Package metrics exports canopy cycle statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phanxgames/canopy"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "canopy").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for phase durations.
	// Default: exponential from 50µs to ~100ms.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "canopy",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Phase labels used on canopy_phase_duration_seconds.
const (
	PhaseBindings  = "bindings"
	PhaseEvents    = "events"
	PhaseStyle     = "style"
	PhaseAnimation = "animation"
	PhaseLayout    = "layout"
)

// Observer is a canopy.Observer recording every cycle.
type Observer struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	work          *prometheus.CounterVec
	deferred      prometheus.Counter
	entities      prometheus.Gauge
	animating     prometheus.Gauge
}

var _ canopy.Observer = (*Observer)(nil)

// New registers the canopy metrics and returns an observer feeding them.
// Pass it to canopy.WithObserver.
//
// Metrics collected:
//   - canopy_cycles_total: Counter of Update cycles
//   - canopy_cycle_duration_seconds: Histogram of whole-cycle duration
//   - canopy_phase_duration_seconds: Histogram of duration by phase
//   - canopy_work_total: Counter of work items by kind (events, updates,
//     resolved, laid_out, geometry)
//   - canopy_events_deferred_total: Counter of events pushed to a later cycle
//   - canopy_entities: Gauge of live entities
//   - canopy_animating: Gauge of running property tracks
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cycles_total",
			Help:        "Total number of Update cycles",
			ConstLabels: config.ConstLabels,
		}),

		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cycle_duration_seconds",
			Help:        "Update cycle duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "phase_duration_seconds",
			Help:        "Update phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"phase"}),

		work: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "work_total",
			Help:        "Total work items processed by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		deferred: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_deferred_total",
			Help:        "Total events left queued by the per-cycle limit",
			ConstLabels: config.ConstLabels,
		}),

		entities: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "entities",
			Help:        "Number of live entities, root included",
			ConstLabels: config.ConstLabels,
		}),

		animating: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "animating",
			Help:        "Number of running animation and transition tracks",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveCycle records one cycle.
func (o *Observer) ObserveCycle(s canopy.CycleStats) {
	o.cycles.Inc()
	o.cycleDuration.Observe(s.TotalTime.Seconds())

	o.phaseDuration.WithLabelValues(PhaseBindings).Observe(s.BindingTime.Seconds())
	o.phaseDuration.WithLabelValues(PhaseEvents).Observe(s.EventTime.Seconds())
	o.phaseDuration.WithLabelValues(PhaseStyle).Observe(s.StyleTime.Seconds())
	o.phaseDuration.WithLabelValues(PhaseAnimation).Observe(s.AnimationTime.Seconds())
	o.phaseDuration.WithLabelValues(PhaseLayout).Observe(s.LayoutTime.Seconds())

	o.work.WithLabelValues("events").Add(float64(s.Events))
	o.work.WithLabelValues("updates").Add(float64(s.Updates))
	o.work.WithLabelValues("resolved").Add(float64(s.Resolved))
	o.work.WithLabelValues("laid_out").Add(float64(s.LaidOut))
	o.work.WithLabelValues("geometry").Add(float64(s.Geometry))

	o.deferred.Add(float64(s.Deferred))
	o.entities.Set(float64(s.Entities))
	o.animating.Set(float64(s.Animating))
}
