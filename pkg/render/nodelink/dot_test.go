package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/render"
	"github.com/matzehuels/domgraph/pkg/selection"
)

func testFrame(t *testing.T, sel *selection.Model) render.Frame {
	t.Helper()
	g, err := graph.BuildJSON([]byte(`{"div":[{"attributes":{"id":"a"}}],"span":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	vp := layout.Viewport{Width: 400, Height: 400}
	layout.NewRadial().Apply(g, vp)
	if sel != nil {
		sel.Select(g, 3)
	}
	return render.BuildFrame(g, render.FrameOptions{Viewport: vp, Selection: sel})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testFrame(t, nil), Options{})

	for _, want := range []string{"digraph G", `n0 [`, `xlabel="document"`, "n0 -> n1", "n1 -> n2", "n0 -> n3"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("ToDOT() without Pinned wrote positions")
	}
}

func TestToDOTPinned(t *testing.T) {
	dot := ToDOT(testFrame(t, nil), Options{Pinned: true})
	if strings.Count(dot, "pos=") != 4 {
		t.Errorf("ToDOT(Pinned) wrote %d positions, want 4:\n%s", strings.Count(dot, "pos="), dot)
	}
	if !strings.Contains(dot, `!"`) {
		t.Error("positions not pinned with !")
	}
}

func TestToDOTFadesDimmedNodes(t *testing.T) {
	dot := ToDOT(testFrame(t, &selection.Model{}), Options{})
	// span (3) is selected; div (1) is not connected to it.
	if !strings.Contains(dot, `xlabel="div"`) {
		t.Fatal("missing div node")
	}
	line := lineOf(dot, "n1 [")
	if !strings.Contains(line, "33\"") {
		t.Errorf("dimmed node not faded: %s", line)
	}
}

func lineOf(s, prefix string) string {
	for _, l := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			return l
		}
	}
	return ""
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 10.00 20.00" width="10" height="20"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
}
