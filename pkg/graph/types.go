package graph

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// NodeType classifies a node by its position in the containment hierarchy.
type NodeType string

const (
	TypeRoot    NodeType = "root"
	TypeTag     NodeType = "tag"
	TypeElement NodeType = "element"
)

// Levels assigned by Build.
const (
	LevelRoot    = 0
	LevelTag     = 1
	LevelElement = 2
)

// LinkContains is the only link type Build produces.
const LinkContains = "contains"

// RootName is the display name of the implicit document root.
const RootName = "document"

// =============================================================================
// Graph
// =============================================================================

// Graph is an ordered set of nodes and containment links.
//
// Nodes produced by Build are stored so that Nodes[i].ID == i. Graphs decoded
// from JSON or cut down to a subset keep their original ids, so lookups go
// through [Graph.Node] rather than indexing.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Links []Link  `json:"links"`
}

// Node is a vertex of the DOM graph.
type Node struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Type  NodeType `json:"type"`
	Level int      `json:"level"`
	Data  NodeData `json:"data"`

	// Layout-assigned position.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Drag pin; nil when the node is free.
	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`

	// Optional community id set by decoration passes.
	Group *int `json:"group,omitempty"`
}

// NodeData is the payload carried from the extracted page.
type NodeData struct {
	Tag        string            `json:"tag,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Content    string            `json:"content,omitempty"`
	Count      int               `json:"count,omitempty"`
}

// Link is a directed containment edge between two node ids.
type Link struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
	Type   string  `json:"type"`
}

// Pinned reports whether the node is held in place by a drag.
func (n *Node) Pinned() bool { return n.FX != nil || n.FY != nil }

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.FX, n.FY = &x, &y
}

// Unpin releases a drag pin.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// AttributeString flattens attributes to "key=value" pairs sorted by key and
// separated by a single space.
func (d NodeData) AttributeString() string {
	if len(d.Attributes) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d.Attributes))
	for k := range d.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + d.Attributes[k]
	}
	return strings.Join(parts, " ")
}

// Node returns the node with the given id. Built graphs are indexed by id;
// subsets and decoded graphs keep ascending ids and are binary searched.
// Anything else falls back to a scan.
func (g *Graph) Node(id int) (*Node, bool) {
	if id >= 0 && id < len(g.Nodes) && g.Nodes[id].ID == id {
		return g.Nodes[id], true
	}
	if i, ok := slices.BinarySearchFunc(g.Nodes, id, func(n *Node, id int) int { return cmp.Compare(n.ID, id) }); ok {
		return g.Nodes[i], true
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Endpoints resolves both ends of a link. Every consumer of link geometry goes
// through this accessor.
func (g *Graph) Endpoints(l Link) (source, target *Node, ok bool) {
	s, ok1 := g.Node(l.Source)
	t, ok2 := g.Node(l.Target)
	return s, t, ok1 && ok2
}

// Root returns the level-0 root node, or nil for an empty graph.
func (g *Graph) Root() *Node {
	for _, n := range g.Nodes {
		if n.Type == TypeRoot {
			return n
		}
	}
	return nil
}

// Neighbors returns the ids linked directly to id in either direction,
// in link order and without duplicates.
func (g *Graph) Neighbors(id int) []int {
	var out []int
	for _, l := range g.Links {
		var other int
		switch id {
		case l.Source:
			other = l.Target
		case l.Target:
			other = l.Source
		default:
			continue
		}
		if !slices.Contains(out, other) {
			out = append(out, other)
		}
	}
	return out
}

// Children returns the ids contained by id, in link order.
func (g *Graph) Children(id int) []int {
	var out []int
	for _, l := range g.Links {
		if l.Source == id {
			out = append(out, l.Target)
		}
	}
	return out
}

// MaxLevel returns the deepest level in the graph, or -1 if it is empty.
func (g *Graph) MaxLevel() int {
	maxLevel := -1
	for _, n := range g.Nodes {
		maxLevel = max(maxLevel, n.Level)
	}
	return maxLevel
}

// Subset returns a copy of the graph restricted to the nodes keep accepts and
// the links whose endpoints are both kept.
func (g *Graph) Subset(keep func(*Node) bool) *Graph {
	out := &Graph{Nodes: []*Node{}, Links: []Link{}}
	kept := make(map[int]bool)
	for _, n := range g.Nodes {
		if keep(n) {
			out.Nodes = append(out.Nodes, n.Clone())
			kept[n.ID] = true
		}
	}
	for _, l := range g.Links {
		if kept[l.Source] && kept[l.Target] {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	if n.Data.Attributes != nil {
		c.Data.Attributes = make(map[string]string, len(n.Data.Attributes))
		for k, v := range n.Data.Attributes {
			c.Data.Attributes[k] = v
		}
	}
	if n.FX != nil {
		fx := *n.FX
		c.FX = &fx
	}
	if n.FY != nil {
		fy := *n.FY
		c.FY = &fy
	}
	if n.Group != nil {
		grp := *n.Group
		c.Group = &grp
	}
	return &c
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	return g.Subset(func(*Node) bool { return true })
}

// Validate checks the containment invariants: a single level-0 root, unique
// ids, resolvable links, and exactly one incoming containment link per
// non-root node coming from the level directly above.
func (g *Graph) Validate() error {
	seen := make(map[int]*Node, len(g.Nodes))
	roots := 0
	for _, n := range g.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = n
		if n.Level == LevelRoot {
			if n.Type != TypeRoot {
				return fmt.Errorf("node %d: level 0 node has type %q", n.ID, n.Type)
			}
			roots++
		}
	}
	if len(g.Nodes) > 0 && roots != 1 {
		return fmt.Errorf("expected exactly one root, found %d", roots)
	}

	incoming := make(map[int]int, len(g.Nodes))
	for i, l := range g.Links {
		src, ok := seen[l.Source]
		if !ok {
			return fmt.Errorf("link %d: unknown source %d", i, l.Source)
		}
		dst, ok := seen[l.Target]
		if !ok {
			return fmt.Errorf("link %d: unknown target %d", i, l.Target)
		}
		if l.Type == LinkContains {
			if dst.Level != src.Level+1 {
				return fmt.Errorf("link %d: %d (level %d) contains %d (level %d)", i, src.ID, src.Level, dst.ID, dst.Level)
			}
			incoming[dst.ID]++
		}
	}
	for _, n := range g.Nodes {
		if n.Type == TypeRoot {
			continue
		}
		if incoming[n.ID] != 1 {
			return fmt.Errorf("node %d: %d incoming containment links, want 1", n.ID, incoming[n.ID])
		}
	}
	return nil
}
