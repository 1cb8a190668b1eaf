package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prodsearch/internal/domain/graph"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/scope"
	"github.com/kailas-cloud/prodsearch/internal/domain/vector"
	"github.com/kailas-cloud/prodsearch/internal/logger"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
)

// DefaultTopK is the number of ranked items and graph matches returned.
const DefaultTopK = 5

// Options tunes the search pipeline.
type Options struct {
	TopK            int
	FilterAttribute string
	Scope           scope.Scope
}

// Response is the outcome of one search. Either list may be empty.
type Response struct {
	Query         string
	ExpandedTerms []string
	Results       []result.Ranked
	GraphMatches  []graph.Match
}

// Service runs expand → embed → rank → filter → graph match over a fixed catalog.
// All dependencies are read-only, so one Service serves concurrent requests.
type Service struct {
	catalog *catalog.Catalog
	graph   *graph.Graph
	expand  Expander
	embed   Embedder
	opts    Options
}

// New creates a search service. Zero options fall back to defaults.
func New(c *catalog.Catalog, g *graph.Graph, expand Expander, embed Embedder, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Scope == "" {
		opts.Scope = scope.Ranked
	}
	return &Service{catalog: c, graph: g, expand: expand, embed: embed, opts: opts}
}

// FilterAttribute returns the attribute user filters apply to.
func (s *Service) FilterAttribute() string { return s.opts.FilterAttribute }

// FilterValues returns the distinct filter attribute values in catalog order.
func (s *Service) FilterValues() []string {
	return s.catalog.AttributeValues(s.opts.FilterAttribute)
}

// Search executes the full pipeline for one request.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	resp, err := s.search(ctx, req)
	switch {
	case err != nil:
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
	case len(resp.Results) == 0 && len(resp.GraphMatches) == 0:
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
	default:
		metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	}
	return resp, err
}

func (s *Service) search(ctx context.Context, req *request.Request) (Response, error) {
	q := s.expand.Expand(req.Query())
	if q.IsEmpty() {
		return Response{}, domain.ErrEmptyQuery
	}

	f, err := filter.NewAttribute(s.opts.FilterAttribute, req.FilterValues())
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	metrics.QueryExpansionTerms.Observe(float64(len(q.Terms())))

	// Unfiltered requests never need more than K candidates.
	pool := s.opts.TopK
	if s.opts.Scope == scope.Catalog && !f.IsEmpty() {
		pool = 0
	}

	ranked, err := s.Rank(ctx, q.String(), pool)
	if err != nil {
		return Response{}, err
	}
	results := f.Apply(ranked, s.opts.TopK)
	matches := s.graph.Match(req.Query(), s.opts.TopK)

	metrics.SearchResultsCount.WithLabelValues("ranked").Observe(float64(len(results)))
	metrics.SearchResultsCount.WithLabelValues("graph").Observe(float64(len(matches)))

	logger.FromContext(ctx).Debug("Search completed",
		zap.String("query", req.Query()),
		zap.String("expanded", q.String()),
		zap.String("filter_attribute", f.Key()),
		zap.Strings("filter", f.Values()),
		zap.Int("candidates", len(ranked)),
		zap.Int("results", len(results)),
		zap.Int("graph_matches", len(matches)),
	)

	return Response{
		Query:         req.Query(),
		ExpandedTerms: q.Terms(),
		Results:       results,
		GraphMatches:  matches,
	}, nil
}

// Rank embeds text and returns the k catalog items most similar to it,
// best first. Ties keep catalog order. k <= 0 returns the whole catalog.
// Empty text yields no results and no embedding call.
func (s *Service) Rank(ctx context.Context, text string, k int) ([]result.Ranked, error) {
	if text == "" || s.catalog.Len() == 0 {
		return nil, nil
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if len(emb.Embedding) != s.catalog.Dim() {
		return nil, fmt.Errorf("%w: query has %d dimensions, catalog has %d",
			domain.ErrVectorDimMismatch, len(emb.Embedding), s.catalog.Dim())
	}

	qv := emb.Embedding
	if !vector.IsFinite(qv) {
		return nil, fmt.Errorf("%w: query embedding has NaN or infinite components",
			domain.ErrEmbeddingProviderError)
	}
	qn := vector.Norm(qv)

	ranked := make([]result.Ranked, s.catalog.Len())
	for i := range ranked {
		it := s.catalog.At(i)
		ranked[i] = result.New(it, vector.CosineWithNorm(qv, qn, it.Embedding()), i)
	}
	slices.SortFunc(ranked, func(a, b result.Ranked) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		}
		return cmp.Compare(a.Position(), b.Position())
	})

	return result.Truncate(ranked, k), nil
}
