// SPDX-License-Identifier: BSD-3-Clause

// Package turbotelemetry exposes Prometheus metrics for long-running
// processes that call turbomin repeatedly (the `telemetry` CLI
// subcommand).
package turbotelemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"turbomin/internal/turboresult"
)

// Registry bundles the metrics recorded per Minify call.
type Registry struct {
	BytesIn        prometheus.Counter
	BytesOut       prometheus.Counter
	CallsTotal     *prometheus.CounterVec // labeled by strategy_used
	DurationMicros prometheus.Histogram
	Errors         *prometheus.CounterVec // labeled by error kind
}

// NewRegistry constructs and registers a fresh metric set.
func NewRegistry() *Registry {
	return &Registry{
		BytesIn: promauto.NewCounter(prometheus.CounterOpts{
			Name: "turbomin_input_bytes_total",
			Help: "Total bytes of JSON input processed.",
		}),
		BytesOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "turbomin_output_bytes_total",
			Help: "Total bytes of minified JSON output produced.",
		}),
		CallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "turbomin_calls_total",
			Help: "Total minify calls, labeled by strategy used.",
		}, []string{"strategy"}),
		DurationMicros: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "turbomin_call_duration_micros",
			Help:    "Minify call duration in microseconds.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 10),
		}),
		Errors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "turbomin_errors_total",
			Help: "Total minify errors, labeled by error kind.",
		}, []string{"kind"}),
	}
}

// Observe records one successful Result.
func (r *Registry) Observe(res turboresult.Result) {
	r.BytesIn.Add(float64(res.InputSize))
	r.BytesOut.Add(float64(res.OutputSize))
	r.CallsTotal.WithLabelValues(string(res.StrategyUsed)).Inc()
	r.DurationMicros.Observe(float64(res.DurationMicros))
}

// ObserveError records a failed call, labeled by its TurboError kind, or
// "unknown" if err isn't one.
func (r *Registry) ObserveError(err error) {
	kind := "unknown"
	if te, ok := err.(*turboresult.TurboError); ok {
		kind = te.Kind
	}
	r.Errors.WithLabelValues(kind).Inc()
}

// Handler returns the HTTP handler serving these metrics in the
// Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}
