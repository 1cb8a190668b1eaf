package result

import "github.com/kailas-cloud/prodsearch/internal/domain/catalog"

// Ranked is a single similarity hit. The score stays attached to its item
// through filtering and truncation.
type Ranked struct {
	item     *catalog.Item
	score    float64
	position int
}

// New creates a ranked result. position is the item's catalog index.
func New(item *catalog.Item, score float64, position int) Ranked {
	return Ranked{item: item, score: score, position: position}
}

// Item returns the catalog item.
func (r *Ranked) Item() *catalog.Item { return r.item }

// ID returns the item identifier.
func (r *Ranked) ID() string { return r.item.ID() }

// Score returns the cosine similarity in [-1, 1].
func (r *Ranked) Score() float64 { return r.score }

// Position returns the item's catalog index.
func (r *Ranked) Position() int { return r.position }

// Truncate returns at most k leading results. k <= 0 means no cap.
func Truncate(rs []Ranked, k int) []Ranked {
	if k > 0 && len(rs) > k {
		return rs[:k]
	}
	return rs
}
