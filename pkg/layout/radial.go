package layout

import (
	"math"
	"sort"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// RadialLayout places each level on a concentric ring around the viewport
// center. Ring radius grows linearly with level and nodes on a ring are
// spread evenly in id order, so the result depends only on the graph and the
// viewport.
type RadialLayout struct{}

// NewRadial returns the radial variant.
func NewRadial() *RadialLayout { return &RadialLayout{} }

func (r *RadialLayout) Name() string { return NameRadial }

// Apply writes positions for every node and returns a nil Simulation.
func (r *RadialLayout) Apply(g *graph.Graph, vp Viewport) (*Simulation, error) {
	cx, cy := vp.Center()
	maxLevel := g.MaxLevel()
	if maxLevel < 0 {
		return nil, nil
	}
	step := RadiusStep(vp, maxLevel)

	levels := make(map[int][]*graph.Node)
	for _, n := range g.Nodes {
		levels[n.Level] = append(levels[n.Level], n)
	}
	for level, nodes := range levels {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
		radius := float64(level+1) * step
		for i, n := range nodes {
			angle := float64(i) * 2 * math.Pi / float64(len(nodes))
			n.X = cx + radius*math.Cos(angle)
			n.Y = cy + radius*math.Sin(angle)
		}
	}
	return nil, nil
}

// RadiusStep is the distance between consecutive rings.
func RadiusStep(vp Viewport, maxLevel int) float64 {
	return min(vp.Width, vp.Height) / (2 * float64(maxLevel+2))
}

var _ Layout = (*RadialLayout)(nil)
