// Package search dims graph items that do not match a text query.
//
// Matching is a case-insensitive substring test against a node's name, its
// text content and its attributes flattened as "key=value" pairs. A link
// matches when either endpoint does. Non-matching items stay in the graph and
// are only drawn faded.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// Opacities applied by renderers.
const (
	MatchOpacity   = 1.0
	NodeDimOpacity = 0.1
	LinkDimOpacity = 0.05
)

// A Caser is stateful, so each call gets its own.
func fold(s string) string { return cases.Fold().String(s) }

// Filter holds the active query. The zero value matches everything.
type Filter struct {
	query  string
	folded string
}

// New returns a filter for query.
func New(query string) *Filter {
	f := &Filter{}
	f.SetQuery(query)
	return f
}

// SetQuery replaces the query. Matching is recomputed on every call to the
// predicates; there is no caching to invalidate.
func (f *Filter) SetQuery(query string) {
	f.query = query
	f.folded = fold(query)
}

// Query returns the raw query.
func (f *Filter) Query() string { return f.query }

// Active reports whether a non-empty query is set.
func (f *Filter) Active() bool { return f.folded != "" }

// MatchNode reports whether n matches the query.
func (f *Filter) MatchNode(n *graph.Node) bool {
	if f.folded == "" {
		return true
	}
	return matchFolded(n, f.folded)
}

// MatchLink reports whether either endpoint of l matches.
func (f *Filter) MatchLink(g *graph.Graph, l graph.Link) bool {
	if f.folded == "" {
		return true
	}
	s, t, ok := g.Endpoints(l)
	if !ok {
		return false
	}
	return matchFolded(s, f.folded) || matchFolded(t, f.folded)
}

// NodeOpacity returns the opacity for n.
func (f *Filter) NodeOpacity(n *graph.Node) float64 {
	if f.MatchNode(n) {
		return MatchOpacity
	}
	return NodeDimOpacity
}

// LinkOpacity returns the opacity for l.
func (f *Filter) LinkOpacity(g *graph.Graph, l graph.Link) float64 {
	if f.MatchLink(g, l) {
		return MatchOpacity
	}
	return LinkDimOpacity
}

// Matches returns the ids of matching nodes in graph order.
func (f *Filter) Matches(g *graph.Graph) []int {
	var ids []int
	for _, n := range g.Nodes {
		if f.MatchNode(n) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Subset returns the matching nodes and the links between them.
func (f *Filter) Subset(g *graph.Graph) *graph.Graph {
	return g.Subset(f.MatchNode)
}

// Match reports whether n contains query, ignoring case.
func Match(n *graph.Node, query string) bool {
	return matchFolded(n, fold(query))
}

func matchFolded(n *graph.Node, query string) bool {
	if query == "" {
		return true
	}
	for _, field := range []string{n.Name, n.Data.Content, n.Data.AttributeString()} {
		if field != "" && strings.Contains(fold(field), query) {
			return true
		}
	}
	return false
}
