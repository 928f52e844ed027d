// Package metrics exposes search and render counters to Prometheus.
//
// Collectors are registered on the default registry at init. The CLI serves
// them with Handler when --metrics-addr is set; otherwise they are only
// observable in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes, used as the "outcome" label.
const (
	OutcomeEscaped  = "escaped"
	OutcomeSparse   = "sparse"
	OutcomePeriodic = "periodic"
	OutcomeAccepted = "accepted"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attractor_search_attempts_total",
		Help: "Coefficient vectors tried by the search, by outcome",
	}, []string{"outcome"})

	attemptDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attractor_search_attempt_duration_seconds",
		Help:    "Time spent on one search attempt",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})

	exhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attractor_search_exhausted_total",
		Help: "Searches that hit their attempt budget",
	})

	acceptedDensity = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attractor_accepted_density_ratio",
		Help:    "Filled-bin fraction of accepted attractors",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
	})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attractor_render_duration_seconds",
		Help:    "Time to sample or rasterize an accepted attractor",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30},
	}, []string{"stage"})
)

func ObserveAttempt(outcome string, d time.Duration) {
	attemptsTotal.WithLabelValues(outcome).Inc()
	attemptDuration.Observe(d.Seconds())
}

func ObserveAccepted(density float64) {
	acceptedDensity.Observe(density)
}

func ObserveExhausted() {
	exhaustedTotal.Inc()
}

// ObserveRender records a pipeline stage, "sample" or "raster".
func ObserveRender(stage string, d time.Duration) {
	renderDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
