package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching Prometheus metrics.
var (
	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entmatch",
			Name:      "match_requests_total",
			Help:      "Total number of match queries scored",
		},
		[]string{"algorithm", "status"},
	)

	MatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "entmatch",
			Name:      "match_duration_seconds",
			Help:      "Per-query match duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"algorithm"},
	)

	MatchCandidatesScored = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "entmatch",
			Name:      "match_candidates_scored",
			Help:      "Candidates scored per query",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	MatchScoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entmatch",
			Name:      "match_score_errors_total",
			Help:      "Candidates skipped due to scoring errors",
		},
		[]string{"algorithm"},
	)

	IndexSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "entmatch",
			Name:      "index_search_duration_seconds",
			Help:      "Candidate index search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"provider"},
	)
)

var matchMetricsRegistered bool

// RegisterMatchMetrics registers Prometheus matching metrics. Must be called once from main.
func RegisterMatchMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(MatchRequestsTotal)
	prometheus.MustRegister(MatchDuration)
	prometheus.MustRegister(MatchCandidatesScored)
	prometheus.MustRegister(MatchScoreErrorsTotal)
	prometheus.MustRegister(IndexSearchDuration)
	matchMetricsRegistered = true
}
