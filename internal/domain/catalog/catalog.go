// Package catalog models the static product catalog searched by prodsearch.
package catalog

import (
	"fmt"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

// Catalog is the ordered, read-only set of items loaded at startup.
// Order is the source row order and breaks ranking ties.
type Catalog struct {
	items []Item
	dim   int
}

// New validates and creates a Catalog.
// IDs must be unique and all embeddings must share one dimension.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{items: make([]Item, len(items))}
	copy(c.items, items)

	seen := make(map[string]struct{}, len(items))
	for i := range c.items {
		it := &c.items[i]
		if _, dup := seen[it.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate item ID %q at row %d", domain.ErrInvalidCatalog, it.ID(), i)
		}
		seen[it.ID()] = struct{}{}

		d := len(it.Embedding())
		if c.dim == 0 {
			c.dim = d
		} else if d != c.dim {
			return nil, fmt.Errorf("%w: row %d has dimension %d, expected %d",
				domain.ErrVectorDimMismatch, i, d, c.dim)
		}
	}
	return c, nil
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Dim returns the embedding dimension (0 for an empty catalog).
func (c *Catalog) Dim() int { return c.dim }

// At returns the item at catalog position i.
func (c *Catalog) At(i int) *Item { return &c.items[i] }

// AttributeValues returns the distinct non-empty values of key in first-seen order.
func (c *Catalog) AttributeValues(key string) []string {
	seen := make(map[string]struct{})
	var values []string
	for i := range c.items {
		v, ok := c.items[i].Attribute(key)
		if !ok || v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
