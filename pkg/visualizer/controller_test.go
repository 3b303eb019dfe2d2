package visualizer

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/render"
	"github.com/matzehuels/domgraph/pkg/search"
	"github.com/matzehuels/domgraph/pkg/selection"
	"github.com/matzehuels/domgraph/pkg/viewport"
)

const scenario = `{"div":[{"attributes":{"id":"a"},"innerText":"hi"}],"span":[]}`

func load(t *testing.T, c *Controller, payload string) Summary {
	t.Helper()
	s, err := c.VisualizeBytes(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("VisualizeBytes() error: %v", err)
	}
	return s
}

func nodeView(t *testing.T, f render.Frame, id int) render.NodeView {
	t.Helper()
	for _, n := range f.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %d not in frame", id)
	return render.NodeView{}
}

func TestVisualizeJSON(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()

	got := load(t, c, scenario)
	want := Summary{Nodes: 4, Links: 3, Tags: 2, Elements: 1, Layout: layout.NameRadial}
	if got != want {
		t.Errorf("Summary = %+v, want %+v", got, want)
	}

	f := c.Frame()
	if len(f.Nodes) != 4 || len(f.Links) != 3 {
		t.Fatalf("frame has %d nodes, %d links; want 4, 3", len(f.Nodes), len(f.Links))
	}
	for _, l := range f.Links {
		if l.Source == 3 {
			t.Errorf("span has an outgoing link to %d", l.Target)
		}
	}
}

func TestVisualizeMalformedKeepsState(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()
	load(t, c, scenario)

	_, err := c.VisualizeBytes(context.Background(), []byte(`{"div": {}}`))
	if !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeMalformedInput)
	}
	if n := len(c.Frame().Nodes); n != 4 {
		t.Errorf("frame has %d nodes after a rejected payload, want 4", n)
	}
}

func TestNewPayloadResetsState(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()
	load(t, c, scenario)

	if _, err := c.SelectNode(1); err != nil {
		t.Fatal(err)
	}
	c.SetSearch("div")
	c.ZoomBy(2, 0, 0)

	load(t, c, `{"p":[{"innerText":"x"}]}`)

	if _, ok := c.Selected(); ok {
		t.Error("selection survived a new payload")
	}
	if q := c.Search(); q != "" {
		t.Errorf("Search() = %q after a new payload, want empty", q)
	}
	if tr := c.Frame().Transform; tr != viewport.Identity {
		t.Errorf("Transform = %+v after a new payload, want identity", tr)
	}
	for _, n := range c.Frame().Nodes {
		if n.Opacity != 1 {
			t.Errorf("node %d opacity = %v, want 1", n.ID, n.Opacity)
		}
	}
}

func TestRadialRingsInFrame(t *testing.T) {
	c := New(WithLayout(layout.NameRadial), WithSize(800, 600))
	defer c.Close()
	load(t, c, `{"a":[{},{}],"b":[{}],"c":[]}`)

	f := c.Frame()
	cx, cy := 400.0, 300.0
	step := layout.RadiusStep(layout.Viewport{Width: 800, Height: 600}, 2)
	for _, n := range f.Nodes {
		level := map[graph.NodeType]int{graph.TypeRoot: 0, graph.TypeTag: 1, graph.TypeElement: 2}[n.Type]
		want := float64(level+1) * step
		if d := math.Hypot(n.X-cx, n.Y-cy); math.Abs(d-want) > 1e-9 {
			t.Errorf("node %d at distance %v, want %v", n.ID, d, want)
		}
	}
}

func TestSwitchForceToRadialStopsSimulation(t *testing.T) {
	c := New(WithLive(time.Millisecond))
	defer c.Close()
	load(t, c, scenario)

	sim := c.engine.Simulation()
	if sim == nil {
		t.Fatal("force layout has no simulation")
	}
	if err := c.SetLayout(context.Background(), layout.NameRadial); err != nil {
		t.Fatalf("SetLayout(radial) error: %v", err)
	}
	if sim.Running() {
		t.Error("force simulation still running after switching to radial")
	}
	if c.engine.Simulation() != nil {
		t.Error("radial layout kept a simulation")
	}
	if c.Layout() != layout.NameRadial {
		t.Errorf("Layout() = %q, want radial", c.Layout())
	}
}

func TestUnknownLayoutKeepsCurrent(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()
	load(t, c, scenario)
	before := c.Frame()

	err := c.SetLayout(context.Background(), "tree")
	if !errors.Is(err, errors.ErrCodeUnknownLayout) {
		t.Fatalf("SetLayout(tree) error = %v, want %s", err, errors.ErrCodeUnknownLayout)
	}
	if c.Layout() != layout.NameRadial {
		t.Errorf("Layout() = %q, want radial", c.Layout())
	}
	after := c.Frame()
	for i := range before.Nodes {
		if before.Nodes[i].X != after.Nodes[i].X || before.Nodes[i].Y != after.Nodes[i].Y {
			t.Errorf("node %d moved after a rejected layout", before.Nodes[i].ID)
		}
	}
}

func TestSelection(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()

	if _, err := c.SelectNode(0); !errors.Is(err, errors.ErrCodeNoGraph) {
		t.Errorf("SelectNode without graph error = %v, want %s", err, errors.ErrCodeNoGraph)
	}
	load(t, c, scenario)

	set, err := c.SelectNode(1) // div
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []int{0, 1, 2} {
		if !set.Has(id) {
			t.Errorf("connected set %v missing %d", set.IDs(), id)
		}
	}
	if set.Has(3) {
		t.Error("connected set contains span")
	}

	f := c.Frame()
	if o := nodeView(t, f, 3).Opacity; o != selection.DimOpacity {
		t.Errorf("span opacity = %v, want %v", o, selection.DimOpacity)
	}
	if o := nodeView(t, f, 2).Opacity; o != selection.HighlightOpacity {
		t.Errorf("div#a opacity = %v, want %v", o, selection.HighlightOpacity)
	}

	c.ClearSelection()
	if o := nodeView(t, c.Frame(), 3).Opacity; o != 1 {
		t.Errorf("span opacity after clear = %v, want 1", o)
	}

	if _, err := c.SelectNode(42); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("SelectNode(42) error = %v, want %s", err, errors.ErrCodeNodeNotFound)
	}
}

func TestSearchOpacity(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()
	load(t, c, scenario)

	c.SetSearch("SPAN")
	f := c.Frame()
	if o := nodeView(t, f, 3).Opacity; o != search.MatchOpacity {
		t.Errorf("span opacity = %v, want %v", o, search.MatchOpacity)
	}
	if o := nodeView(t, f, 2).Opacity; o != search.NodeDimOpacity {
		t.Errorf("div#a opacity = %v, want %v", o, search.NodeDimOpacity)
	}
	if got := c.Matches(); len(got) != 1 || got[0] != 3 {
		t.Errorf("Matches() = %v, want [3]", got)
	}

	// Selection and search combine by taking the lower opacity.
	if _, err := c.SelectNode(1); err != nil {
		t.Fatal(err)
	}
	if o := nodeView(t, c.Frame(), 3).Opacity; o != math.Min(search.MatchOpacity, selection.DimOpacity) {
		t.Errorf("span opacity = %v, want %v", o, selection.DimOpacity)
	}
}

func TestViewport(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()
	load(t, c, scenario)

	if tr := c.ZoomBy(100, 0, 0); tr.K != viewport.MaxScale {
		t.Errorf("K = %v, want %v", tr.K, viewport.MaxScale)
	}
	if tr := c.ZoomBy(1e-6, 0, 0); tr.K != viewport.MinScale {
		t.Errorf("K = %v, want %v", tr.K, viewport.MinScale)
	}
	if tr := c.ResetView(); tr != viewport.Identity {
		t.Errorf("ResetView() = %+v", tr)
	}
	if tr := c.Pan(10, -5); tr.X != 10 || tr.Y != -5 {
		t.Errorf("Pan() = %+v", tr)
	}
	if tr := c.FitView(); tr.K < viewport.MinScale || tr.K > viewport.MaxScale {
		t.Errorf("FitView() K = %v out of range", tr.K)
	}
	if _, err := c.FocusNode(99); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("FocusNode(99) error = %v", err)
	}
}

func TestResizeRecentersRadial(t *testing.T) {
	c := New(WithLayout(layout.NameRadial), WithSize(400, 400))
	defer c.Close()
	load(t, c, scenario)

	if err := c.Resize(1000, 1000); err != nil {
		t.Fatal(err)
	}
	f := c.Frame()
	if f.Width != 1000 || f.Height != 1000 {
		t.Errorf("frame size = %vx%v, want 1000x1000", f.Width, f.Height)
	}
	tag := nodeView(t, f, 1)
	step := layout.RadiusStep(layout.Viewport{Width: 1000, Height: 1000}, 2)
	if d := math.Hypot(tag.X-500, tag.Y-500); math.Abs(d-2*step) > 1e-9 {
		t.Errorf("tag distance = %v, want %v", d, 2*step)
	}

	if err := c.Resize(0, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Resize(0, 10) error = %v", err)
	}
}

func TestDragRadial(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()
	load(t, c, scenario)

	if err := c.DragStart(2); err != nil {
		t.Fatal(err)
	}
	if err := c.Drag(2, 12, 34); err != nil {
		t.Fatal(err)
	}
	if err := c.DragEnd(2); err != nil {
		t.Fatal(err)
	}
	n := nodeView(t, c.Frame(), 2)
	if n.X != 12 || n.Y != 34 {
		t.Errorf("dragged node at (%v, %v), want (12, 34)", n.X, n.Y)
	}
}

func TestForces(t *testing.T) {
	c := New()
	defer c.Close()
	if err := c.SetGravity(0.5); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCharge(200); err != nil {
		t.Fatal(err)
	}
	f := c.Forces()
	if f.Gravity != 0.5 || f.Charge != 200 {
		t.Errorf("Forces() = gravity %v charge %v", f.Gravity, f.Charge)
	}
	if err := c.SetGravity(-1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetGravity(-1) error = %v", err)
	}
}

func TestZeroForcesSurviveRelayout(t *testing.T) {
	ctx := context.Background()
	c := New()
	defer c.Close()
	load(t, c, scenario)
	if err := c.SetGravity(0); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCharge(0); err != nil {
		t.Fatal(err)
	}

	check := func(stage string) {
		t.Helper()
		sim := c.engine.Simulation()
		if sim == nil {
			t.Fatalf("%s: force layout has no simulation", stage)
		}
		if p := sim.Params(); p.Gravity != 0 || p.Charge != 0 {
			t.Errorf("%s: simulation gravity %v charge %v, want 0 and 0", stage, p.Gravity, p.Charge)
		}
		if f := c.Forces(); f.Gravity != 0 || f.Charge != 0 {
			t.Errorf("%s: Forces() = gravity %v charge %v, want 0 and 0", stage, f.Gravity, f.Charge)
		}
	}
	check("after set")

	if err := c.SetLayout(ctx, layout.NameRadial); err != nil {
		t.Fatal(err)
	}
	if err := c.SetLayout(ctx, layout.NameForce); err != nil {
		t.Fatal(err)
	}
	check("after radial and back")

	load(t, c, scenario)
	check("after new payload")
}

func TestExport(t *testing.T) {
	c := New(WithLayout(layout.NameRadial))
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Export(ctx, export.ScopeFull, "json"); !errors.Is(err, errors.ErrCodeNoGraph) {
		t.Errorf("Export without graph error = %v, want %s", err, errors.ErrCodeNoGraph)
	}
	load(t, c, scenario)

	if _, err := c.SelectNode(3); err != nil {
		t.Fatal(err)
	}
	downloads, err := c.Export(ctx, export.ScopeConnected, "csv")
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	nodes := string(downloads[0].Data)
	if !strings.Contains(nodes, `"span"`) || strings.Contains(nodes, `"div#a"`) {
		t.Errorf("connected export =\n%s", nodes)
	}

	if _, err := c.Export(ctx, export.ScopeFull, "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Export(gif) error = %v", err)
	}
	if _, err := c.Export(ctx, "half", "json"); !errors.Is(err, errors.ErrCodeInvalidScope) {
		t.Errorf("Export(half) error = %v", err)
	}
}

func TestCommunityDecoration(t *testing.T) {
	c := New(WithLayout(layout.NameRadial), WithCommunity(1))
	defer c.Close()
	s := load(t, c, scenario)
	if s.Communities < 1 {
		t.Errorf("Communities = %d, want at least 1", s.Communities)
	}
	if key := nodeView(t, c.Frame(), 0).ColorKey; !strings.HasPrefix(key, "community-") {
		t.Errorf("ColorKey = %q, want community-N", key)
	}

	c.SetCommunity(false)
	if key := nodeView(t, c.Frame(), 0).ColorKey; key != string(graph.TypeRoot) {
		t.Errorf("ColorKey after disabling = %q, want %q", key, graph.TypeRoot)
	}
}

func TestClose(t *testing.T) {
	c := New(WithLive(time.Millisecond))
	load(t, c, scenario)
	sim := c.engine.Simulation()
	c.Close()

	if sim != nil && sim.Running() {
		t.Error("simulation still running after Close")
	}
	if _, err := c.VisualizeBytes(context.Background(), []byte(scenario)); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("VisualizeBytes after Close error = %v", err)
	}
}

func TestConcurrentUse(t *testing.T) {
	c := New(WithLive(time.Millisecond))
	defer c.Close()
	load(t, c, `{"div":[{},{},{}],"p":[{},{}],"a":[{}]}`)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 20 {
				switch (i + j) % 5 {
				case 0:
					_ = c.Frame()
				case 1:
					c.SetSearch("div")
				case 2:
					_, _ = c.SelectNode(j % 7)
				case 3:
					_ = c.SetLayout(ctx, []string{layout.NameForce, layout.NameRadial}[j%2])
				case 4:
					_, _ = c.Export(ctx, export.ScopeFull, "json")
				}
			}
		}()
	}
	wg.Wait()

	if sim := c.engine.Simulation(); sim != nil && c.Layout() != layout.NameForce {
		t.Error("non-force layout holds a simulation")
	}
}
