package prodsearch

import "github.com/kailas-cloud/prodsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrInvalidCatalog         = domain.ErrInvalidCatalog
	ErrCatalogMisaligned      = domain.ErrCatalogMisaligned
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
