// Package metrics exposes Prometheus collectors for the shell.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level collectors, registered via Register.
var (
	regOK atomic.Bool

	coreStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prism_shell",
			Subsystem: "core",
			Name:      "starts_total",
			Help:      "Number of core processes spawned by the shell.",
		},
	)
	coreStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prism_shell",
			Subsystem: "core",
			Name:      "stops_total",
			Help:      "Number of core processes released (stopped or reaped).",
		},
	)
	coreRestarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prism_shell",
			Subsystem: "core",
			Name:      "restarts_total",
			Help:      "Number of restarts triggered by the recovery policy.",
		},
	)
	coreRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "prism_shell",
			Subsystem: "core",
			Name:      "running",
			Help:      "1 when a core process is held by the shell.",
		},
	)
	healthChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prism_shell",
			Subsystem: "monitor",
			Name:      "checks_total",
			Help:      "Number of health checks by outcome.",
		}, []string{"health"},
	)
	probeLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prism_shell",
			Subsystem: "probe",
			Name:      "latency_seconds",
			Help:      "Health probe round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	visibilityTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prism_shell",
			Subsystem: "window",
			Name:      "transitions_total",
			Help:      "Number of visibility transitions.",
		}, []string{"event", "from", "to"},
	)
	commandCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prism_shell",
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Number of command surface calls by method and status code.",
		}, []string{"method", "code"},
	)
)

// Register registers all metrics with r. It is safe to call multiple times.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{
		coreStarts, coreStops, coreRestarts, coreRunning,
		healthChecks, probeLatency, visibilityTransitions, commandCalls,
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves metrics for the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// HandlerFor serves metrics for g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// The helpers below no-op until Register succeeds.

func IncCoreStart() {
	if regOK.Load() {
		coreStarts.Inc()
		coreRunning.Set(1)
	}
}

func IncCoreStop() {
	if regOK.Load() {
		coreStops.Inc()
		coreRunning.Set(0)
	}
}

func IncCoreRestart() {
	if regOK.Load() {
		coreRestarts.Inc()
	}
}

func ObserveHealth(health string, latencySeconds float64) {
	if regOK.Load() {
		healthChecks.WithLabelValues(health).Inc()
		if latencySeconds > 0 {
			probeLatency.Observe(latencySeconds)
		}
	}
}

func RecordTransition(event, from, to string) {
	if regOK.Load() {
		visibilityTransitions.WithLabelValues(event, from, to).Inc()
	}
}

func IncCall(method, code string) {
	if regOK.Load() {
		commandCalls.WithLabelValues(method, code).Inc()
	}
}
