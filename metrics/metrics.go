// Package metrics is the engine's Prometheus recorder (SPEC_FULL.md §10/§11),
// grounded on mpisat-qumo/observability's Setup/Config/Recorder idiom, pared
// down to the one exporter this repo actually wires: Prometheus. Disabled
// by default — an engine constructed without calling Setup gets a
// Recorder whose methods are safe, cheap no-ops, so a host never has to
// branch on whether metrics are enabled.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls whether metrics are collected and, if so, where they are
// served from.
type Config struct {
	// Addr, if non-empty, starts an HTTP server exposing /metrics on this
	// address. Empty means metrics are recorded into the registry but not
	// served (a host may still scrape Registry() itself, e.g. in tests).
	Addr string
}

var (
	enabled  bool
	registry = prometheus.NewRegistry()

	replans = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "altroute_replans_total",
		Help: "Total number of router replans started across all ambulances.",
	})
	unreachable = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "altroute_router_unreachable_total",
		Help: "Total number of router searches that concluded unreachable.",
	})
	preemptTriggered = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "altroute_preemption_triggered_total",
		Help: "Total number of traffic lights transitioned to ACTIVE preemption.",
	}, []string{"light"})
	preemptReleased = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "altroute_preemption_released_total",
		Help: "Total number of traffic lights released from ACTIVE preemption.",
	}, []string{"light"})
	expansionsPerStep = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "altroute_router_expansions_per_step",
		Help:    "Node expansions performed per router.Step call.",
		Buckets: prometheus.LinearBuckets(5, 10, 10),
	})
)

// Enabled reports whether Setup has been called with metrics turned on.
func Enabled() bool { return enabled }

// Setup enables metrics collection and, if cfg.Addr is non-empty, starts a
// background HTTP server exposing them at /metrics. It never blocks.
func Setup(cfg Config) error {
	enabled = true
	if cfg.Addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()

	return nil
}

// Registry exposes the underlying Prometheus registry, e.g. for tests that
// want to assert on collected samples via testutil.
func Registry() *prometheus.Registry { return registry }

// Recorder implements engine.Recorder (and therefore preempt.Recorder); a
// *Recorder obtained from New is always safe to call, enabled or not.
type Recorder struct{}

// New returns a Recorder. Its methods are no-ops unless Setup has enabled
// metrics collection.
func New() *Recorder { return &Recorder{} }

// ReplanStarted increments the replan counter.
func (r *Recorder) ReplanStarted() {
	if !enabled {
		return
	}
	replans.Inc()
}

// Unreachable increments the router-unreachable counter.
func (r *Recorder) Unreachable() {
	if !enabled {
		return
	}
	unreachable.Inc()
}

// ExpansionsObserved records one router.Step call's expansion count.
func (r *Recorder) ExpansionsObserved(n int) {
	if !enabled {
		return
	}
	expansionsPerStep.Observe(float64(n))
}

// PreemptionTriggered implements preempt.Recorder.
func (r *Recorder) PreemptionTriggered(lightID string) {
	if !enabled {
		return
	}
	preemptTriggered.WithLabelValues(lightID).Inc()
}

// PreemptionReleased implements preempt.Recorder.
func (r *Recorder) PreemptionReleased(lightID string) {
	if !enabled {
		return
	}
	preemptReleased.WithLabelValues(lightID).Inc()
}
