package graph

import (
	"fmt"
	"maps"
)

// HierarchyNode is the tree view of a containment graph.
//
// Graph and HierarchyNode are distinct types; convert explicitly with
// [ToHierarchy] and [FromHierarchy].
type HierarchyNode struct {
	ID       int              `json:"id"`
	Name     string           `json:"name"`
	Type     NodeType         `json:"type"`
	Level    int              `json:"level"`
	Data     NodeData         `json:"data"`
	Children []*HierarchyNode `json:"children,omitempty"`
}

// ToHierarchy folds the containment links of g into a tree rooted at its root
// node. Children keep link order.
func ToHierarchy(g *Graph) (*HierarchyNode, error) {
	root := g.Root()
	if root == nil {
		return nil, fmt.Errorf("graph has no root")
	}
	children := make(map[int][]int, len(g.Nodes))
	for _, l := range g.Links {
		if l.Type == LinkContains {
			children[l.Source] = append(children[l.Source], l.Target)
		}
	}

	visited := make(map[int]bool, len(g.Nodes))
	var walk func(id int) (*HierarchyNode, error)
	walk = func(id int) (*HierarchyNode, error) {
		if visited[id] {
			return nil, fmt.Errorf("node %d reached twice", id)
		}
		visited[id] = true
		n, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("unknown node %d", id)
		}
		h := &HierarchyNode{ID: n.ID, Name: n.Name, Type: n.Type, Level: n.Level, Data: n.Data}
		for _, c := range children[id] {
			child, err := walk(c)
			if err != nil {
				return nil, err
			}
			h.Children = append(h.Children, child)
		}
		return h, nil
	}
	return walk(root.ID)
}

// FromHierarchy flattens a tree into a graph, assigning fresh ids in preorder.
// The preorder matches the order Build emits, so a built graph survives a
// ToHierarchy/FromHierarchy round trip with the same ids.
func FromHierarchy(h *HierarchyNode) *Graph {
	g := &Graph{Nodes: []*Node{}, Links: []Link{}}
	if h == nil {
		return g
	}
	var walk func(h *HierarchyNode, parent int)
	walk = func(h *HierarchyNode, parent int) {
		id := len(g.Nodes)
		data := h.Data
		if data.Attributes != nil {
			data.Attributes = maps.Clone(data.Attributes)
		}
		g.Nodes = append(g.Nodes, &Node{ID: id, Name: h.Name, Type: h.Type, Level: h.Level, Data: data})
		if parent >= 0 {
			g.Links = append(g.Links, Link{Source: parent, Target: id, Value: 1, Type: LinkContains})
		}
		for _, c := range h.Children {
			walk(c, id)
		}
	}
	walk(h, -1)
	return g
}

// Walk visits the tree in preorder with each node's depth.
func (h *HierarchyNode) Walk(fn func(n *HierarchyNode, depth int)) {
	var walk func(n *HierarchyNode, depth int)
	walk = func(n *HierarchyNode, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(h, 0)
}
