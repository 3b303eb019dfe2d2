package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/search"
	"github.com/matzehuels/domgraph/pkg/selection"
)

func laidOut(t *testing.T) (*graph.Graph, layout.Viewport) {
	t.Helper()
	g, err := graph.BuildJSON([]byte(`{"div":[{"attributes":{"id":"a"},"innerText":"hi"}],"span":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	vp := layout.Viewport{Width: 400, Height: 300}
	layout.NewRadial().Apply(g, vp)
	return g, vp
}

func TestBuildFrame(t *testing.T) {
	g, vp := laidOut(t)
	f := BuildFrame(g, FrameOptions{Viewport: vp})

	if len(f.Nodes) != 4 || len(f.Links) != 3 {
		t.Fatalf("frame = %d nodes %d links, want 4 and 3", len(f.Nodes), len(f.Links))
	}
	wantRadius := []float64{RadiusRoot, RadiusTag, RadiusElement, RadiusTag}
	for i, n := range f.Nodes {
		if n.Radius != wantRadius[i] {
			t.Errorf("node %d radius = %v, want %v", i, n.Radius, wantRadius[i])
		}
		if n.ColorKey != string(g.Nodes[i].Type) {
			t.Errorf("node %d colorKey = %q, want %q", i, n.ColorKey, g.Nodes[i].Type)
		}
		if n.Opacity != 1 {
			t.Errorf("node %d opacity = %v, want 1", i, n.Opacity)
		}
	}
	l := f.Links[1]
	if l.X1 != g.Nodes[1].X || l.Y2 != g.Nodes[2].Y {
		t.Errorf("link coordinates %+v do not follow endpoints", l)
	}
	if len(f.Palette) != 3 || f.Palette["root"] != "#1f77b4" || f.Palette["tag"] != "#ff7f0e" {
		t.Errorf("Palette = %v", f.Palette)
	}
}

func TestBuildFrameOpacity(t *testing.T) {
	g, vp := laidOut(t)
	var sel selection.Model
	sel.Select(g, 2)
	f := BuildFrame(g, FrameOptions{Viewport: vp, Selection: &sel, Search: search.New("hi")})

	want := map[int]float64{
		0: search.NodeDimOpacity, // not connected, not matching
		1: search.NodeDimOpacity, // connected, not matching
		2: 1,                     // selected and matching
		3: search.NodeDimOpacity,
	}
	for _, n := range f.Nodes {
		if n.Opacity != want[n.ID] {
			t.Errorf("node %d opacity = %v, want %v", n.ID, n.Opacity, want[n.ID])
		}
	}
	if f.Links[1].Opacity != 1 {
		t.Errorf("link 1->2 opacity = %v, want 1", f.Links[1].Opacity)
	}
	if f.Links[0].Opacity != search.LinkDimOpacity {
		t.Errorf("link 0->1 opacity = %v, want %v", f.Links[0].Opacity, search.LinkDimOpacity)
	}
}

func TestColorKeyCommunity(t *testing.T) {
	grp := 3
	n := &graph.Node{Type: graph.TypeElement, Group: &grp}
	if got := ColorKey(n); got != "community-3" {
		t.Errorf("ColorKey() = %q, want community-3", got)
	}
}

func TestBuildFrameNilGraph(t *testing.T) {
	f := BuildFrame(nil, FrameOptions{})
	if len(f.Nodes) != 0 || f.Transform.K != 1 {
		t.Errorf("BuildFrame(nil) = %+v", f)
	}
}

func TestSVG(t *testing.T) {
	g, vp := laidOut(t)
	var buf bytes.Buffer
	if err := SVG(&buf, BuildFrame(g, FrameOptions{Viewport: vp})); err != nil {
		t.Fatalf("SVG() error: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "<circle") != 4 || strings.Count(out, "<line") != 3 {
		t.Errorf("SVG() has %d circles and %d lines", strings.Count(out, "<circle"), strings.Count(out, "<line"))
	}
	if !strings.Contains(out, ">document</text>") || strings.Contains(out, ">div#a</text>") {
		t.Error("SVG() labels wrong set of nodes")
	}
}

func TestPNG(t *testing.T) {
	g, vp := laidOut(t)
	var buf bytes.Buffer
	if err := PNG(&buf, BuildFrame(g, FrameOptions{Viewport: vp})); err != nil {
		t.Fatalf("PNG() error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("image size = %v, want 400x300", b)
	}
}

func TestFrameBounds(t *testing.T) {
	f := Frame{Nodes: []NodeView{{X: 0, Y: 0, Radius: 5}, {X: 10, Y: -10, Radius: 15}}}
	b := f.Bounds()
	if b.MinX != -5 || b.MaxX != 25 || b.MinY != -25 || b.MaxY != 5 {
		t.Errorf("Bounds() = %+v", b)
	}
}
