package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrInvalidRequest signals malformed request parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidCatalog signals a catalog that violates its load-time invariants.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrCatalogMisaligned signals a catalog/embedding row count mismatch.
	ErrCatalogMisaligned = errors.New("catalog and embeddings are misaligned")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// MisalignmentError wraps ErrCatalogMisaligned with both row counts.
type MisalignmentError struct {
	CatalogRows   int
	EmbeddingRows int
}

func (e *MisalignmentError) Error() string {
	return fmt.Sprintf("%s: catalog has %d rows, embedding cache has %d",
		ErrCatalogMisaligned.Error(), e.CatalogRows, e.EmbeddingRows)
}

func (e *MisalignmentError) Unwrap() error { return ErrCatalogMisaligned }

// NewMisalignment creates a catalog misalignment error.
func NewMisalignment(catalogRows, embeddingRows int) error {
	return &MisalignmentError{CatalogRows: catalogRows, EmbeddingRows: embeddingRows}
}
