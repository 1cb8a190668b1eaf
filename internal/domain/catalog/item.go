package catalog

import (
	"fmt"
	"maps"

	"github.com/kailas-cloud/prodsearch/internal/domain/vector"
)

// Item is a single catalog product (immutable value object).
type Item struct {
	id          string
	name        string
	subtitle    string
	description string
	attributes  map[string]string
	embedding   []float32
}

// NewItem validates and creates an Item. Attributes and embedding are copied.
func NewItem(
	id, name, subtitle, description string,
	attributes map[string]string, embedding []float32,
) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if name == "" {
		return Item{}, fmt.Errorf("item %q: name is required", id)
	}
	if len(embedding) == 0 {
		return Item{}, fmt.Errorf("item %q: embedding is required", id)
	}
	if !vector.IsFinite(embedding) {
		return Item{}, fmt.Errorf("item %q: embedding has NaN or infinite components", id)
	}

	var attrs map[string]string
	if attributes != nil {
		attrs = maps.Clone(attributes)
	}
	emb := make([]float32, len(embedding))
	copy(emb, embedding)

	return Item{
		id:          id,
		name:        name,
		subtitle:    subtitle,
		description: description,
		attributes:  attrs,
		embedding:   emb,
	}, nil
}

// ID returns the unique item identifier.
func (i *Item) ID() string { return i.id }

// Name returns the product name.
func (i *Item) Name() string { return i.name }

// Subtitle returns the product subtitle (e.g. "Men's Shoes").
func (i *Item) Subtitle() string { return i.subtitle }

// Description returns the product description.
func (i *Item) Description() string { return i.description }

// Attributes returns the attribute map. Callers must not mutate it.
func (i *Item) Attributes() map[string]string { return i.attributes }

// Attribute returns a single attribute value.
func (i *Item) Attribute(key string) (string, bool) {
	v, ok := i.attributes[key]
	return v, ok
}

// Embedding returns the precomputed embedding. Callers must not mutate it.
func (i *Item) Embedding() []float32 { return i.embedding }
