// Package lexicon holds the static synonym lexicon used for query expansion.
//
// A lexicon maps a term to its synonym sets, most common meaning first:
//
//	shoe:
//	  - [shoe]
//	  - [shoe, horseshoe]
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kljensen/snowball/english"
	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var builtin []byte

// Lexicon is immutable after construction and safe for concurrent reads.
type Lexicon struct {
	sets  map[string][][]string
	stems map[string]string // Snowball stem → term
}

// New builds a lexicon from term → synonym sets. Terms are case-folded;
// empty sets and blank lemmas are dropped.
func New(entries map[string][][]string) (*Lexicon, error) {
	sets := make(map[string][][]string, len(entries))
	for term, groups := range entries {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" {
			return nil, fmt.Errorf("lexicon: blank term")
		}
		for _, g := range groups {
			clean := make([]string, 0, len(g))
			for _, lemma := range g {
				if lemma = strings.TrimSpace(lemma); lemma != "" {
					clean = append(clean, lemma)
				}
			}
			if len(clean) > 0 {
				sets[key] = append(sets[key], clean)
			}
		}
	}
	return &Lexicon{sets: sets, stems: stemIndex(sets)}, nil
}

// stemIndex maps each term's English stem to the term. When several terms
// share a stem the lexicographically smallest wins.
func stemIndex(sets map[string][][]string) map[string]string {
	terms := make([]string, 0, len(sets))
	for term := range sets {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	stems := make(map[string]string, len(terms))
	for _, term := range terms {
		st := english.Stem(term, true)
		if _, taken := stems[st]; !taken {
			stems[st] = term
		}
	}
	return stems
}

// Parse decodes a YAML lexicon.
func Parse(data []byte) (*Lexicon, error) {
	var entries map[string][][]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("lexicon: parse: %w", err)
	}
	return New(entries)
}

// LoadFile reads a YAML lexicon from disk.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("lexicon: read %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the lexicon compiled into the binary.
func Default() *Lexicon {
	l, err := Parse(builtin)
	if err != nil {
		panic(err) // embedded file is covered by tests
	}
	return l
}

// Load returns the lexicon at path, or the built-in one when path is empty.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Len returns the number of distinct terms.
func (l *Lexicon) Len() int { return len(l.sets) }

// Lookup returns the synonym sets of term, most common first. When the
// exact form is unknown the term sharing its English stem is used
// ("dresses" finds "dress").
func (l *Lexicon) Lookup(term string) [][]string {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return nil
	}
	if s, ok := l.sets[key]; ok {
		return s
	}
	if base, ok := l.stems[english.Stem(key, true)]; ok {
		return l.sets[base]
	}
	return nil
}

// Primary returns the lemmas of the most common meaning of term.
func (l *Lexicon) Primary(term string) []string {
	sets := l.Lookup(term)
	if len(sets) == 0 {
		return nil
	}
	return sets[0]
}
