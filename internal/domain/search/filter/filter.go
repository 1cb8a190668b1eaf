package filter

import (
	"fmt"

	"github.com/kailas-cloud/prodsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
)

// MaxValues is the maximum number of allowed values in one filter.
const MaxValues = 64

// Attribute keeps items whose attribute value is one of the allowed values.
// The zero value (and an Attribute with no values) is the identity filter.
type Attribute struct {
	key     string
	allowed map[string]struct{}
	values  []string
}

// NewAttribute validates and creates an attribute filter. Blank and duplicate
// values are dropped.
func NewAttribute(key string, values []string) (Attribute, error) {
	if key == "" {
		return Attribute{}, fmt.Errorf("filter key is required")
	}
	if len(values) > MaxValues {
		return Attribute{}, fmt.Errorf("too many filter values (max %d)", MaxValues)
	}

	f := Attribute{key: key, allowed: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := f.allowed[v]; dup {
			continue
		}
		f.allowed[v] = struct{}{}
		f.values = append(f.values, v)
	}
	return f, nil
}

// Key returns the attribute name.
func (f Attribute) Key() string { return f.key }

// Values returns the allowed values in the order given.
func (f Attribute) Values() []string { return f.values }

// IsEmpty reports whether the filter allows everything.
func (f Attribute) IsEmpty() bool { return len(f.allowed) == 0 }

// Matches reports whether the item passes the filter.
func (f Attribute) Matches(it *catalog.Item) bool {
	if f.IsEmpty() {
		return true
	}
	v, ok := it.Attribute(f.key)
	if !ok {
		return false
	}
	_, allowed := f.allowed[v]
	return allowed
}

// Apply keeps matching results in rank order and truncates to k.
// An empty filter returns rs truncated to k.
func (f Attribute) Apply(rs []result.Ranked, k int) []result.Ranked {
	if f.IsEmpty() {
		return result.Truncate(rs, k)
	}
	out := make([]result.Ranked, 0, min(len(rs), max(k, 0)))
	for i := range rs {
		if !f.Matches(rs[i].Item()) {
			continue
		}
		out = append(out, rs[i])
		if k > 0 && len(out) == k {
			break
		}
	}
	return out
}
