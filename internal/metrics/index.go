package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index and ranking Prometheus metrics.
var (
	RebuildDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_documents_total",
			Help:      "Documents written by index rebuilds",
		},
		[]string{"collection"},
	)

	RebuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"collection", "status"},
	)

	RankingCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_candidates",
			Help:      "Candidates handed to the ranking engine per query",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	RankingSurvivors = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_survivors",
			Help:      "Candidates left after hard filters per query",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers rebuild and ranking metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(RebuildDocumentsTotal)
	prometheus.MustRegister(RebuildDuration)
	prometheus.MustRegister(RankingCandidates)
	prometheus.MustRegister(RankingSurvivors)
	indexMetricsRegistered = true
}
