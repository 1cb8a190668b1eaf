package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service answers searches with reduced capability.
	Degraded Status = "degraded"
	// Unhealthy indicates searches cannot be answered.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckCatalog   = "catalog"
	CheckEmbedding = "embedding"
	CheckCache     = "cache"
)

// DefaultCheckTimeout bounds each individual probe.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	catalog   CatalogSizer
	embedding EmbeddingChecker
	cache     CachePinger
	timeout   time.Duration
}

// New creates a Service. embedding and cache can be nil: providers without a
// health endpoint and the "none" cache driver are simply not probed.
func New(catalog CatalogSizer, embedding EmbeddingChecker, cache CachePinger) *Service {
	return &Service{catalog: catalog, embedding: embedding, cache: cache, timeout: DefaultCheckTimeout}
}

// Check runs health checks against all components.
// An empty catalog is fatal; a failing provider or cache only degrades.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)
	status := Healthy

	if s.catalog.Len() > 0 {
		checks[CheckCatalog] = CheckOK
	} else {
		checks[CheckCatalog] = CheckError
		status = Unhealthy
	}

	if s.embedding != nil {
		checks[CheckEmbedding] = s.probe(ctx, s.embedding.HealthCheck)
	}
	if s.cache != nil {
		checks[CheckCache] = s.probe(ctx, s.cache.Ping)
	}

	if status == Healthy {
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
