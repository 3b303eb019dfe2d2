// Package community groups graph nodes with Louvain modularity clustering.
//
// Grouping is a best-effort decoration: it only changes the color key of
// nodes and never their structure or position. Louvain is randomized, so
// groups may differ between runs; ids are numbered by each group's smallest
// node id to keep the numbering stable when the partition is.
package community

import (
	"slices"
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// DefaultResolution is the standard modularity resolution.
const DefaultResolution = 1.0

// Detect partitions g and returns each node's community id.
func Detect(g *graph.Graph, resolution float64) map[int]int {
	if len(g.Nodes) == 0 {
		return map[int]int{}
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	u := simple.NewUndirectedGraph()
	for _, n := range g.Nodes {
		u.AddNode(simple.Node(int64(n.ID)))
	}
	for _, l := range g.Links {
		if l.Source == l.Target {
			continue
		}
		from, to := u.Node(int64(l.Source)), u.Node(int64(l.Target))
		if from == nil || to == nil {
			continue
		}
		u.SetEdge(u.NewEdge(from, to))
	}

	reduced := community.Modularize(u, resolution, nil)
	groups := reduced.Communities()

	ids := make([][]int, 0, len(groups))
	for _, members := range groups {
		ids = append(ids, nodeIDs(members))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i][0] < ids[j][0] })

	out := make(map[int]int, len(g.Nodes))
	for c, members := range ids {
		for _, id := range members {
			out[id] = c
		}
	}
	return out
}

func nodeIDs(nodes []gonum.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	slices.Sort(ids)
	return ids
}

// Decorate writes community ids into node.Group and returns the number of
// communities found.
func Decorate(g *graph.Graph, resolution float64) int {
	groups := Detect(g, resolution)
	seen := make(map[int]bool)
	for _, n := range g.Nodes {
		c, ok := groups[n.ID]
		if !ok {
			n.Group = nil
			continue
		}
		n.Group = &c
		seen[c] = true
	}
	return len(seen)
}

// Clear removes community ids from every node.
func Clear(g *graph.Graph) {
	for _, n := range g.Nodes {
		n.Group = nil
	}
}
