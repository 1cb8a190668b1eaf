// Package graph is the one-hop product knowledge graph: item → attribute edges.
// No traversal beyond one hop ever happens, so nodes are kept in catalog
// order with their edges inline.
package graph

import (
	"strings"

	"github.com/kailas-cloud/prodsearch/internal/domain/catalog"
)

// MatchedOnDescription marks a match found in the item description.
const MatchedOnDescription = "description"

// Match is a knowledge graph hit.
type Match struct {
	item      *catalog.Item
	value     string
	matchedOn string
}

// Item returns the matched catalog item.
func (m *Match) Item() *catalog.Item { return m.item }

// Value returns the item's display attribute value (e.g. its color).
func (m *Match) Value() string { return m.value }

// MatchedOn returns "description" or the attribute key that contained the query.
func (m *Match) MatchedOn() string { return m.matchedOn }

type node struct {
	item        *catalog.Item
	description string            // case-folded
	edges       map[string]string // attribute key -> case-folded value
}

// Graph is immutable after construction and safe for concurrent reads.
type Graph struct {
	nodes      []node
	keys       []string
	displayKey string
}

// New builds the graph from the catalog.
// keys lists the attributes that become edges, in match priority order.
// displayKey is the attribute reported as Match.Value.
func New(c *catalog.Catalog, keys []string, displayKey string) *Graph {
	g := &Graph{
		nodes:      make([]node, 0, c.Len()),
		keys:       append([]string(nil), keys...),
		displayKey: displayKey,
	}

	for i := range c.Len() {
		it := c.At(i)
		n := node{
			item:        it,
			description: strings.ToLower(it.Description()),
			edges:       make(map[string]string, len(keys)),
		}
		for _, k := range keys {
			if v, ok := it.Attribute(k); ok {
				n.edges[k] = strings.ToLower(v)
			}
		}
		g.nodes = append(g.nodes, n)
	}
	return g
}

// Len returns the number of product nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Match returns up to limit items, in catalog order, whose description or
// attribute values contain query case-insensitively. limit <= 0 means no cap.
func (g *Graph) Match(query string, limit int) []Match {
	q := strings.ToLower(query)
	var matches []Match

	for i := range g.nodes {
		n := &g.nodes[i]
		on, ok := g.matchNode(n, q)
		if !ok {
			continue
		}
		display, _ := n.item.Attribute(g.displayKey)
		matches = append(matches, Match{item: n.item, value: display, matchedOn: on})
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	return matches
}

func (g *Graph) matchNode(n *node, q string) (string, bool) {
	if strings.Contains(n.description, q) {
		return MatchedOnDescription, true
	}
	for _, k := range g.keys {
		if v, ok := n.edges[k]; ok && strings.Contains(v, q) {
			return k, true
		}
	}
	return "", false
}
