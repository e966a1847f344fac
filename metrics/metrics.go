package metrics

import (
	"context"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name.
	Namespace string
	// Registry receives the collectors. Defaults to a fresh registry.
	Registry *prometheus.Registry
	// RuntimeCollectors adds the Go runtime and process collectors.
	RuntimeCollectors bool
}

// Collector holds the playback metrics.
type Collector struct {
	registry *prometheus.Registry

	plays          prometheus.Counter
	playDuration   prometheus.Histogram
	eventsPlayed   prometheus.Counter
	actionsPlayed  prometheus.Counter
	errors         *prometheus.CounterVec
	stateChanges   *prometheus.CounterVec
	ended          prometheus.Counter
	activeSessions prometheus.Gauge
}

// New creates a Collector and registers its metrics.
func New(optFns ...func(o *Options)) *Collector {
	opts := Options{Namespace: "playback"}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.RuntimeCollectors {
		opts.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	f := promauto.With(opts.Registry)
	ns := opts.Namespace
	return &Collector{
		registry: opts.Registry,
		plays: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "plays_total",
			Help:      "Total number of Play calls that completed successfully.",
		}),
		playDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "play_duration_seconds",
			Help:      "Wall time of successful Play calls, including user gates.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		eventsPlayed: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "events_played_total",
			Help:      "Total number of events played.",
		}),
		actionsPlayed: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "actions_compiled_total",
			Help:      "Total number of animation actions compiled for playback.",
		}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "errors_total",
			Help:      "Total number of failed operations by operation and error kind.",
		}, []string{"operation", "kind"}),
		stateChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "state_transitions_total",
			Help:      "Total number of session state transitions by target state.",
		}, []string{"to"}),
		ended: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "experiences_ended_total",
			Help:      "Total number of experiences ended.",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "active_sessions",
			Help:      "Number of open playback sessions.",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// SessionOpened increments the active session gauge.
func (c *Collector) SessionOpened() { c.activeSessions.Inc() }

// SessionClosed decrements the active session gauge.
func (c *Collector) SessionClosed() { c.activeSessions.Dec() }

// Callbacks returns the engine callbacks feeding the collector.
func (c *Collector) Callbacks() []engine.Callback {
	return []engine.Callback{
		engine.NewFunctionCallback(engine.CallbackAfterPlay, c.afterPlay),
		engine.NewFunctionCallback(engine.CallbackOnError, c.onError),
		engine.NewFunctionCallback(engine.CallbackOnStateChange, c.onStateChange),
		engine.NewFunctionCallback(engine.CallbackOnEnd, c.onEnd),
	}
}

func (c *Collector) afterPlay(_ context.Context, cb *engine.CallbackContext) error {
	c.plays.Inc()
	c.playDuration.Observe(cb.Elapsed.Seconds())
	c.eventsPlayed.Add(float64(cb.Events))
	c.actionsPlayed.Add(float64(cb.Actions))
	return nil
}

func (c *Collector) onError(_ context.Context, cb *engine.CallbackContext) error {
	c.errors.WithLabelValues(cb.Operation, string(core.KindOf(cb.Err))).Inc()
	return nil
}

func (c *Collector) onStateChange(_ context.Context, cb *engine.CallbackContext) error {
	c.stateChanges.WithLabelValues(string(cb.To)).Inc()
	return nil
}

func (c *Collector) onEnd(_ context.Context, _ *engine.CallbackContext) error {
	c.ended.Inc()
	return nil
}
