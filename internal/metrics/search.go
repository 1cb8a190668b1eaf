package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "prodsearch"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of product searches by outcome",
		},
		[]string{"outcome"}, // "ok" / "empty" / "error"
	)

	SearchResultsCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of items returned per search section",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10, 20},
		},
		[]string{"section"}, // "ranked" / "graph"
	)

	QueryExpansionTerms = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_expansion_terms",
			Help:      "Number of terms in the expanded query",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchResultsCount)
	prometheus.MustRegister(QueryExpansionTerms)
	searchMetricsRegistered = true
}
