package export

import (
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/render"
)

// Scoped returns the part of g that scope covers. ScopeFiltered keeps the
// search matches of opts.Search and ScopeConnected keeps the connected set of
// opts.Selection; either falls back to the whole graph when its model is nil
// or inactive. The result never aliases g.
func Scoped(g *graph.Graph, scope Scope, opts render.FrameOptions) *graph.Graph {
	switch {
	case scope == ScopeFiltered && opts.Search != nil:
		return opts.Search.Subset(g)
	case scope == ScopeConnected && opts.Selection != nil:
		return opts.Selection.Subset(g)
	}
	return g.Clone()
}

// NewSource scopes g and builds the matching frame.
func NewSource(g *graph.Graph, scope Scope, opts render.FrameOptions) Source {
	sub := Scoped(g, scope, opts)
	return Source{Graph: sub, Frame: render.BuildFrame(sub, opts)}
}
