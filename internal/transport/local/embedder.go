// Package local is an in-process embedding provider for offline use and tests.
//
// Texts are embedded by feature hashing: every lower-cased word token is
// hashed into one of Dimensions buckets with a hash-derived sign, and the
// vector is L2-normalized. Texts that share words score higher, which is
// enough to run the whole pipeline without a model server.
package local

import (
	"context"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/vector"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
)

// Provider is the provider label used in metrics and cache namespaces.
const Provider = "local"

// DefaultDimensions matches the sentence-transformer models the catalog is usually built with.
const DefaultDimensions = 384

// Embedder is stateless and safe for concurrent use.
type Embedder struct {
	dim   int
	model string
}

// NewEmbedder creates a hashing embedder. dim <= 0 uses DefaultDimensions.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	return &Embedder{dim: dim, model: "hashing"}
}

// Embed implements domain.Embedder. Token counts are word counts.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // context error is self-describing
	}

	start := time.Now()
	vec, n := e.vectorize(text)

	metrics.EmbeddingRequestsTotal.WithLabelValues(Provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(Provider, e.model).Observe(time.Since(start).Seconds())
	metrics.EmbeddingTokensTotal.WithLabelValues(Provider, e.model, "total").Add(float64(n))

	return domain.EmbeddingResult{Embedding: vec, PromptTokens: n, TotalTokens: n}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return domain.BatchFallback(ctx, e, texts)
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vectorize(text string) ([]float32, int) {
	v := make([]float32, e.dim)
	tokens := tokenize(text)
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		bucket := int(sum % uint64(e.dim))
		if sum>>63 == 1 {
			v[bucket]--
		} else {
			v[bucket]++
		}
	}
	vector.NormalizeL2(v)
	return v, len(tokens)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
