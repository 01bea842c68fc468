package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	essaysScoredTotal     *prometheus.CounterVec
	penaltiesAppliedTotal *prometheus.CounterVec
	adjustedScoreBands    *prometheus.HistogramVec
	combinedScoresTotal   prometheus.Counter
	combinedScoreFailures prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the writing service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "writing_http_requests_total",
			Help: "Total number of writing API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "writing_http_latency_seconds",
			Help:    "Latency distribution for writing API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"})

		essaysScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "writing_essays_scored_total",
			Help: "Essay scoring attempts by task type and outcome.",
		}, []string{"task_type", "outcome"})

		penaltiesAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "writing_penalties_applied_total",
			Help: "Scored essays that received a penalty, by kind.",
		}, []string{"task_type", "kind"})

		adjustedScoreBands = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "writing_adjusted_score_band",
			Help:    "Distribution of adjusted band scores.",
			Buckets: []float64{1, 2, 3, 4, 5, 5.5, 6, 6.5, 7, 7.5, 8, 9},
		}, []string{"task_type"})

		combinedScoresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "writing_combined_scores_created_total",
			Help: "Combined writing scores created.",
		})

		combinedScoreFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "writing_combined_score_failures_total",
			Help: "Combined score recalculations that failed.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			essaysScoredTotal,
			penaltiesAppliedTotal,
			adjustedScoreBands,
			combinedScoresTotal,
			combinedScoreFailures,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// EssaysScored exposes the scoring outcome counter.
func EssaysScored() *prometheus.CounterVec {
	RegisterMetrics()
	return essaysScoredTotal
}

// PenaltiesApplied exposes the penalty counter.
func PenaltiesApplied() *prometheus.CounterVec {
	RegisterMetrics()
	return penaltiesAppliedTotal
}

// AdjustedScores exposes the adjusted band histogram.
func AdjustedScores() *prometheus.HistogramVec {
	RegisterMetrics()
	return adjustedScoreBands
}

// CombinedScoresCreated exposes the combined score counter.
func CombinedScoresCreated() prometheus.Counter {
	RegisterMetrics()
	return combinedScoresTotal
}

// CombinedScoreFailures exposes the combined score failure counter.
func CombinedScoreFailures() prometheus.Counter {
	RegisterMetrics()
	return combinedScoreFailures
}
