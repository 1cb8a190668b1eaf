package prodsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "prodsearch"
	metricsSubsystem = "sdk"
)

// sdkMetrics holds the collectors registered for the embedded client.
type sdkMetrics struct {
	searches  *prometheus.CounterVec   // outcome: ok, empty, error
	duration  prometheus.Histogram     // search latency
	results   *prometheus.HistogramVec // list: ranked, graph
	expansion prometheus.Histogram     // expanded term count
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "searches_total",
			Help:      "Embedded client searches by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "search_duration_seconds",
			Help:      "Embedded client search latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "search_results",
			Help:      "Items returned per embedded client search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}, []string{"list"}),
		expansion: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "expanded_terms",
			Help:      "Terms per expanded query.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32},
		}),
	}
	if err := registerOrReuse(reg, &m.searches); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.expansion); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one, so two
// clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("prodsearch: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("prodsearch: register metric: %w", err)
	}
	return nil
}

// observer logs and measures client searches. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func searchOutcome(resp *Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case len(resp.Results) == 0 && len(resp.GraphMatches) == 0:
		return "empty"
	}
	return "ok"
}

// observeSearch records one search. resp is only read when err is nil.
func (o *observer) observeSearch(start time.Time, resp *Response, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	outcome := searchOutcome(resp, err)

	if m := o.metrics; m != nil {
		m.searches.WithLabelValues(outcome).Inc()
		m.duration.Observe(dur.Seconds())
		if err == nil {
			m.results.WithLabelValues("ranked").Observe(float64(len(resp.Results)))
			m.results.WithLabelValues("graph").Observe(float64(len(resp.GraphMatches)))
			m.expansion.Observe(float64(len(resp.ExpandedTerms)))
		}
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("search failed", "duration", dur, "error", err)
		return
	}
	o.logger.Debug("search completed",
		"query", resp.Query,
		"outcome", outcome,
		"duration", dur,
		"expanded_terms", len(resp.ExpandedTerms),
		"results", len(resp.Results),
		"graph_matches", len(resp.GraphMatches),
	)
}
