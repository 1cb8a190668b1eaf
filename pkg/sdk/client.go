package prodsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/graph"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/scope"
	catalogrepo "github.com/kailas-cloud/prodsearch/internal/repository/catalog"
	"github.com/kailas-cloud/prodsearch/internal/repository/lexicon"
	localEmb "github.com/kailas-cloud/prodsearch/internal/transport/local"
	openaiEmb "github.com/kailas-cloud/prodsearch/internal/transport/openai"
	"github.com/kailas-cloud/prodsearch/internal/usecase/expansion"
	healthuc "github.com/kailas-cloud/prodsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

// Internal interfaces for test doubles.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
	FilterAttribute() string
	FilterValues() []string
}

// Client is the embedded search entry point. It is immutable after New and
// safe for concurrent use.
type Client struct {
	searchSvc searchUseCase
	healthSvc healthUseCase
	size      int
	obs       *observer
}

// New loads the catalog and wires the search pipeline.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.catalogPath == "" || cfg.embeddingsPath == "" {
		return nil, errors.New("prodsearch: catalog paths required (use WithCatalog)")
	}
	if len(cfg.attributeColumns) == 0 {
		cfg.attributeColumns = []string{catalogrepo.ColumnColor}
	}
	if cfg.filterAttribute == "" {
		cfg.filterAttribute = cfg.attributeColumns[0]
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs)
}

func wireClient(cfg *clientConfig, obs *observer) (*Client, error) {
	cat, err := catalogrepo.Load(catalogrepo.Config{
		Path:           cfg.catalogPath,
		EmbeddingsPath: cfg.embeddingsPath,
		CSV: catalogrepo.CSVConfig{
			IDColumn:         cfg.idColumn,
			AttributeColumns: cfg.attributeColumns,
		},
	}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("prodsearch: load catalog: %w", err)
	}

	domEmb, dim := buildEmbedder(cfg)
	if dim > 0 && dim != cat.Dim() {
		return nil, fmt.Errorf("prodsearch: %w: catalog has %d dimensions, embedder %d",
			domain.ErrVectorDimMismatch, cat.Dim(), dim)
	}

	// A nil interface (not a typed nil pointer) disables expansion.
	var lex expansion.Lexicon
	if !cfg.noExpansion {
		l, err := lexicon.Load(cfg.synonymsPath)
		if err != nil {
			return nil, fmt.Errorf("prodsearch: load synonyms: %w", err)
		}
		lex = l
	}

	sc := scope.Ranked
	if cfg.catalogScope {
		sc = scope.Catalog
	}

	searchSvc := searchuc.New(
		cat,
		graph.New(cat, cfg.attributeColumns, cfg.filterAttribute),
		expansion.New(lex),
		domEmb,
		searchuc.Options{TopK: cfg.topK, FilterAttribute: cfg.filterAttribute, Scope: sc},
	)

	var checker healthuc.EmbeddingChecker
	if hc, ok := domEmb.(domain.HealthChecker); ok {
		checker = hc
	}

	return &Client{
		searchSvc: searchSvc,
		healthSvc: healthuc.New(cat, checker, nil),
		size:      cat.Len(),
		obs:       obs,
	}, nil
}

// buildEmbedder returns the query embedder and its fixed dimension (0 = unknown).
func buildEmbedder(cfg *clientConfig) (domain.Embedder, int) {
	var (
		emb domain.Embedder = &noopEmbedder{}
		dim int
	)
	switch {
	case cfg.embedder != nil:
		emb = &embedderAdapter{inner: cfg.embedder}
	case cfg.localDim > 0:
		emb, dim = localEmb.NewEmbedder(cfg.localDim), cfg.localDim
	case cfg.openai != nil:
		emb = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:            cfg.openai.APIKey,
			BaseURL:           cfg.openai.BaseURL,
			Model:             cfg.openai.Model,
			Dimensions:        cfg.openai.Dimensions,
			Provider:          "openai",
			RequestsPerSecond: cfg.openai.RequestsPerSecond,
			Logger:            zap.NewNop(),
		})
		dim = cfg.openai.Dimensions
	}
	if cfg.queryPrefix != "" {
		emb = domain.NewInstructionEmbedder(emb, cfg.queryPrefix)
	}
	return emb, dim
}

// Len returns the number of catalog items.
func (c *Client) Len() int { return c.size }

// Filters returns the filter attribute and its values in catalog order.
func (c *Client) Filters() Filters {
	return Filters{
		Attribute: c.searchSvc.FilterAttribute(),
		Values:    c.searchSvc.FilterValues(),
	}
}

// Search ranks the catalog against query, keeps results whose filter
// attribute is one of filter (no values = no filtering) and matches the raw
// query against the knowledge graph.
func (c *Client) Search(ctx context.Context, query string, filter ...string) (resp Response, err error) {
	start := time.Now()
	defer func() { c.obs.observeSearch(start, &resp, err) }()

	req, err := request.New(query, filter)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	out, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	return toResponse(&out), nil
}

func toResponse(r *searchuc.Response) Response {
	resp := Response{
		Query:         r.Query,
		ExpandedTerms: r.ExpandedTerms,
		Results:       make([]Result, len(r.Results)),
		GraphMatches:  make([]GraphMatch, len(r.GraphMatches)),
	}
	for i := range r.Results {
		it := r.Results[i].Item()
		resp.Results[i] = Result{
			ID:          it.ID(),
			Name:        it.Name(),
			Subtitle:    it.Subtitle(),
			Description: it.Description(),
			Attributes:  it.Attributes(),
			Score:       r.Results[i].Score(),
		}
	}
	for i := range r.GraphMatches {
		m := &r.GraphMatches[i]
		resp.GraphMatches[i] = GraphMatch{
			ID:          m.Item().ID(),
			Name:        m.Item().Name(),
			Value:       m.Value(),
			MatchedOn:   m.MatchedOn(),
			Description: m.Item().Description(),
		}
	}
	return resp
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck probes the wrapped embedder when it has a HealthCheck method.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
	}
	return nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"prodsearch: embedder not configured (use WithEmbedder, WithOpenAI or WithLocalEmbedder)",
	)
}
