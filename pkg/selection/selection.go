// Package selection tracks the selected node and its direct neighborhood.
//
// Selecting a node highlights it together with every node linked to it in
// either direction. Highlight state is derived on demand from the graph and
// the current selection; nothing is stored on the nodes themselves.
package selection

import (
	"sort"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
)

// Opacities applied by renderers.
const (
	HighlightOpacity = 1.0
	DimOpacity       = 0.2
)

// Set is a set of node ids.
type Set map[int]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s Set) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Model is the selection state of one visualizer.
// The zero value has nothing selected.
type Model struct {
	selected  *int
	connected Set
}

// Select makes id the selected node and returns its connected set.
func (m *Model) Select(g *graph.Graph, id int) (Set, error) {
	if _, ok := g.Node(id); !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
	}
	connected := Set{id: {}}
	for _, n := range g.Neighbors(id) {
		connected[n] = struct{}{}
	}
	m.selected = &id
	m.connected = connected
	return connected, nil
}

// Clear removes the selection.
func (m *Model) Clear() {
	m.selected = nil
	m.connected = nil
}

// Selected returns the selected id, if any.
func (m *Model) Selected() (int, bool) {
	if m.selected == nil {
		return 0, false
	}
	return *m.selected, true
}

// Connected returns the connected set, or nil without a selection.
func (m *Model) Connected() Set {
	return m.connected
}

// NodeHighlighted reports whether id is drawn at full opacity.
func (m *Model) NodeHighlighted(id int) bool {
	if m.selected == nil {
		return true
	}
	return m.connected.Has(id)
}

// LinkHighlighted reports whether l touches the selected node.
func (m *Model) LinkHighlighted(l graph.Link) bool {
	if m.selected == nil {
		return true
	}
	return l.Source == *m.selected || l.Target == *m.selected
}

// NodeOpacity returns the opacity for node id.
func (m *Model) NodeOpacity(id int) float64 {
	if m.NodeHighlighted(id) {
		return HighlightOpacity
	}
	return DimOpacity
}

// LinkOpacity returns the opacity for l.
func (m *Model) LinkOpacity(l graph.Link) float64 {
	if m.LinkHighlighted(l) {
		return HighlightOpacity
	}
	return DimOpacity
}

// Subset returns the connected set and the links among it. Without a
// selection the whole graph is returned.
func (m *Model) Subset(g *graph.Graph) *graph.Graph {
	if m.selected == nil {
		return g.Clone()
	}
	return g.Subset(func(n *graph.Node) bool { return m.connected.Has(n.ID) })
}
