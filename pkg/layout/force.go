package layout

import (
	"math"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// ForceLayout runs a force-directed simulation.
type ForceLayout struct {
	params ForceParams
}

// NewForce returns the force variant. Zero params take their defaults.
func NewForce(p ForceParams) *ForceLayout {
	p.SetDefaults()
	return &ForceLayout{params: p}
}

func (f *ForceLayout) Name() string { return NameForce }

// Params returns the effective parameters.
func (f *ForceLayout) Params() ForceParams { return f.params }

// Apply seeds a simulation for g centered in vp. Unplaced nodes are spread
// on a phyllotaxis spiral around the center; placed nodes keep their position.
func (f *ForceLayout) Apply(g *graph.Graph, vp Viewport) (*Simulation, error) {
	cx, cy := vp.Center()
	return newSimulation(g, f.params, cx, cy), nil
}

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// placeUnplaced mirrors d3's initial node placement.
func placeUnplaced(nodes []*graph.Node, cx, cy float64) {
	for i, n := range nodes {
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		if n.X != 0 || n.Y != 0 || n.Pinned() {
			continue
		}
		radius := 10 * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		n.X = cx + radius*math.Cos(angle)
		n.Y = cy + radius*math.Sin(angle)
	}
}

func pow(x, y float64) float64 { return math.Pow(x, y) }

var _ Layout = (*ForceLayout)(nil)
