// Package expansion widens a search phrase with synonyms from the lexicon.
package expansion

import (
	"slices"
	"strings"
)

// Lexicon returns the lemmas of the most common meaning of a term.
type Lexicon interface {
	Primary(term string) []string
}

// Query is an expanded search phrase.
type Query struct {
	terms []string
	text  string
}

// Terms returns the expanded terms, deduplicated. Expanded queries are
// sorted; pass-through queries keep the input order.
func (q Query) Terms() []string { return q.terms }

// String returns the text that gets embedded.
func (q Query) String() string { return q.text }

// IsEmpty reports whether the query has no terms.
func (q Query) IsEmpty() bool { return len(q.terms) == 0 }

// Expander is stateless and safe for concurrent use.
type Expander struct {
	lex Lexicon
}

// New creates an expander. A nil lexicon disables expansion.
func New(lex Lexicon) *Expander {
	return &Expander{lex: lex}
}

// Expand splits query on whitespace and adds the primary synonyms of every
// term. Terms without synonyms pass through unchanged. Never fails.
func (e *Expander) Expand(query string) Query {
	words := strings.Fields(query)
	if len(words) == 0 {
		return Query{}
	}

	seen := make(map[string]struct{}, len(words)*2)
	terms := make([]string, 0, len(words)*2)
	add := func(t string) {
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	if e.lex == nil {
		for _, w := range words {
			add(w)
		}
		return Query{terms: terms, text: strings.Join(terms, " ")}
	}

	for _, w := range words {
		add(w)
		for _, lemma := range e.lex.Primary(w) {
			add(lemma)
		}
	}
	slices.Sort(terms)

	return Query{terms: terms, text: strings.Join(terms, " ")}
}
