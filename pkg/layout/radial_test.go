package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/domgraph/pkg/graph"
	"pgregory.net/rapid"
)

const eps = 1e-9

func buildGraph(t testing.TB, payload string) *graph.Graph {
	t.Helper()
	g, err := graph.BuildJSON([]byte(payload))
	if err != nil {
		t.Fatalf("BuildJSON() error: %v", err)
	}
	return g
}

func TestRadialRings(t *testing.T) {
	g := buildGraph(t, `{"div":[{},{},{}],"span":[{}],"p":[]}`)
	vp := Viewport{Width: 800, Height: 600}
	if _, err := NewRadial().Apply(g, vp); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	step := RadiusStep(vp, 2)
	if want := 600.0 / 8; math.Abs(step-want) > eps {
		t.Fatalf("RadiusStep() = %v, want %v", step, want)
	}
	for _, n := range g.Nodes {
		d := math.Hypot(n.X-400, n.Y-300)
		want := float64(n.Level+1) * step
		if math.Abs(d-want) > 1e-6 {
			t.Errorf("node %d (level %d) distance = %v, want %v", n.ID, n.Level, d, want)
		}
	}
}

func TestRadialAngleOrder(t *testing.T) {
	g := buildGraph(t, `{"a":[],"b":[],"c":[],"d":[]}`)
	vp := Viewport{Width: 400, Height: 400}
	NewRadial().Apply(g, vp)

	root := g.Nodes[0]
	if math.Abs(root.X-(200+RadiusStep(vp, 1))) > eps || math.Abs(root.Y-200) > eps {
		t.Errorf("single-node ring at (%v, %v), want angle 0", root.X, root.Y)
	}
	for i, n := range g.Nodes[1:] {
		want := float64(i) * math.Pi / 2
		got := math.Atan2(n.Y-200, n.X-200)
		if got < 0 {
			got += 2 * math.Pi
		}
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("node %d angle = %v, want %v", n.ID, got, want)
		}
	}
}

func TestRadialEmptyGraph(t *testing.T) {
	sim, err := NewRadial().Apply(&graph.Graph{}, Viewport{Width: 10, Height: 10})
	if err != nil || sim != nil {
		t.Errorf("Apply(empty) = %v, %v; want nil, nil", sim, err)
	}
}

func TestRadialProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tags := rapid.IntRange(0, 8).Draw(t, "tags")
		groups := make(graph.TagGroups, tags)
		for i := range groups {
			groups[i] = graph.TagGroup{
				Tag:      string(rune('a' + i)),
				Elements: make([]graph.Element, rapid.IntRange(0, 6).Draw(t, "elements")),
			}
		}
		g, err := graph.Build(groups)
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		vp := Viewport{
			Width:  rapid.Float64Range(50, 4000).Draw(t, "width"),
			Height: rapid.Float64Range(50, 4000).Draw(t, "height"),
		}
		cx, cy := vp.Center()

		NewRadial().Apply(g, vp)
		first := make([][2]float64, len(g.Nodes))
		ring := make(map[int]float64)
		for i, n := range g.Nodes {
			first[i] = [2]float64{n.X, n.Y}
			d := math.Hypot(n.X-cx, n.Y-cy)
			if r, ok := ring[n.Level]; ok && math.Abs(r-d) > 1e-6 {
				t.Fatalf("level %d distances %v and %v differ", n.Level, r, d)
			}
			ring[n.Level] = d
		}

		NewRadial().Apply(g, vp)
		for i, n := range g.Nodes {
			if n.X != first[i][0] || n.Y != first[i][1] {
				t.Fatalf("node %d moved on second apply", n.ID)
			}
		}
	})
}
