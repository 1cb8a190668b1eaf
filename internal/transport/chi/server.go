// Package chi is the HTTP transport: an HTML search page and a JSON API.
package chi

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	healthuc "github.com/kailas-cloud/prodsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

// Defaults for page rendering.
const (
	DefaultTitle       = "Product Semantic Search Engine"
	DefaultPreviewLen  = 100
	DefaultFilterParam = "color"
)

// Options controls page rendering and query binding.
type Options struct {
	Title       string
	PreviewLen  int    // description preview length in runes
	FilterParam string // query parameter carrying filter values
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(err error) (status int, code ErrorCode, ok bool)

// Server serves the search page and API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	opts          Options
	page          *template.Template
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.PreviewLen <= 0 {
		opts.PreviewLen = DefaultPreviewLen
	}
	if opts.FilterParam == "" || opts.FilterParam == paramQuery {
		opts.FilterParam = DefaultFilterParam
	}
	return &Server{
		search: search,
		health: health,
		opts:   opts,
		page:   pageTemplate,
		logger: logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeEmptyQuery),
			sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
			sentinelHandler(domain.ErrVectorDimMismatch,
				http.StatusInternalServerError, ErrorCodeVectorDimMismatch),
			sentinelHandler(domain.ErrEmbeddingProviderError,
				http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		},
	}
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Index)
	r.Get("/search", s.SearchPage)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.SearchProducts)
		r.Get("/filters", s.ListFilters)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
