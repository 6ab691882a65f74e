package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineObserver receives callbacks at recommendation entry and exit. The
// pipeline itself never depends on metrics being enabled.
type PipelineObserver interface {
	RecommendStarted()
	RecommendFinished(menuCount int, elapsed time.Duration)
}

// NopObserver is the default when metrics are disabled.
type NopObserver struct{}

func (NopObserver) RecommendStarted()                    {}
func (NopObserver) RecommendFinished(int, time.Duration) {}

var (
	recommendationRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation pipeline runs",
		},
	)

	recommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "recommendation_duration_seconds",
			Help: "Duration of one recommendation pipeline run in seconds",
		},
	)

	recommendationMenus = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_menus_returned",
			Help:    "Number of menu recommendations returned per run",
			Buckets: []float64{1, 2, 3, 4},
		},
	)
)

// PrometheusObserver publishes pipeline counters and timings.
type PrometheusObserver struct{}

func (PrometheusObserver) RecommendStarted() {
	recommendationRequests.Inc()
}

func (PrometheusObserver) RecommendFinished(menuCount int, elapsed time.Duration) {
	recommendationDuration.Observe(elapsed.Seconds())
	recommendationMenus.Observe(float64(menuCount))
}
