package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

// MaxQueryLength is the maximum allowed search query length in bytes.
const MaxQueryLength = 1024

// Request is a validated search query.
type Request struct {
	query        string
	filterValues []string
}

// New trims and validates a search query.
// A blank query is domain.ErrEmptyQuery: the caller warns, no search runs.
func New(query string, filterValues []string) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, domain.ErrEmptyQuery
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d bytes)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	return Request{query: query, filterValues: append([]string(nil), filterValues...)}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// FilterValues returns the allowed attribute values (empty = no filtering).
func (r *Request) FilterValues() []string { return r.filterValues }
