package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/render"
	"github.com/matzehuels/domgraph/pkg/search"
	"github.com/matzehuels/domgraph/pkg/selection"
	"pgregory.net/rapid"
)

const payload = `{"div":[{"attributes":{"id":"a","title":"say \"hi\""},"innerText":"hello, world"}],"span":[]}`

func source(t *testing.T) Source {
	t.Helper()
	g, err := graph.BuildJSON([]byte(payload))
	if err != nil {
		t.Fatal(err)
	}
	vp := layout.Viewport{Width: 300, Height: 200}
	layout.NewRadial().Apply(g, vp)
	return Source{Graph: g, Frame: render.BuildFrame(g, render.FrameOptions{Viewport: vp})}
}

func TestJSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		groups := make(graph.TagGroups, rapid.IntRange(0, 5).Draw(t, "tags"))
		for i := range groups {
			elements := make([]graph.Element, rapid.IntRange(0, 4).Draw(t, "elements"))
			for j := range elements {
				elements[j].InnerText = rapid.String().Draw(t, "text")
			}
			groups[i] = graph.TagGroup{Tag: string(rune('a' + i)), Elements: elements}
		}
		g, err := graph.Build(groups)
		if err != nil {
			t.Fatal(err)
		}
		layout.NewRadial().Apply(g, layout.Viewport{Width: 640, Height: 480})

		data, err := JSON(g)
		if err != nil {
			t.Fatalf("JSON() error: %v", err)
		}
		back, err := graph.UnmarshalGraph(data)
		if err != nil {
			t.Fatalf("UnmarshalGraph() error: %v", err)
		}
		if !reflect.DeepEqual(back, g) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, g)
		}
	})
}

func TestJSONIndent(t *testing.T) {
	data, err := JSON(source(t).Graph)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("{\n  \"nodes\": [\n    {")) {
		t.Errorf("JSON() not 2-space indented:\n%s", data[:40])
	}
}

func TestCSV(t *testing.T) {
	groups, _ := graph.ParseTagGroups([]byte(payload))
	files, err := CSV(groups)
	if err != nil {
		t.Fatalf("CSV() error: %v", err)
	}

	nodes := strings.Split(strings.TrimSuffix(string(files.Nodes), "\n"), "\n")
	if len(nodes) != 5 {
		t.Fatalf("nodes CSV has %d lines, want 5", len(nodes))
	}
	if want := `"id","name","type","level","tag","attributes","content"`; nodes[0] != want {
		t.Errorf("header = %s, want %s", nodes[0], want)
	}
	if want := `"2","div#a","element","2","div","id=a title=say ""hi""","hello, world"`; nodes[3] != want {
		t.Errorf("element row = %s, want %s", nodes[3], want)
	}

	edges := strings.Split(strings.TrimSuffix(string(files.Edges), "\n"), "\n")
	if len(edges) != 4 {
		t.Fatalf("edges CSV has %d lines, want 4", len(edges))
	}
	if want := `"0","1","contains","1"`; edges[1] != want {
		t.Errorf("edge row = %s, want %s", edges[1], want)
	}
}

func TestCSVMalformed(t *testing.T) {
	if _, err := CSV(graph.TagGroups{{Tag: ""}}); !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("CSV() error = %v, want %s", err, errors.ErrCodeMalformedInput)
	}
}

func TestEncode(t *testing.T) {
	src := source(t)
	tests := []struct {
		format    string
		filenames []string
		contains  string
	}{
		{FormatJSON, []string{"dom-graph.json"}, `"nodes"`},
		{FormatCSV, []string{"dom-nodes.csv", "dom-edges.csv"}, `"id"`},
		{FormatSVG, []string{"dom-graph.svg"}, "<svg"},
		{FormatPNG, []string{"dom-graph.png"}, "PNG"},
		{FormatDOT, []string{"dom-graph.dot"}, "digraph G"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			downloads, err := Encode(context.Background(), tt.format, src)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if len(downloads) != len(tt.filenames) {
				t.Fatalf("Encode() = %d downloads, want %d", len(downloads), len(tt.filenames))
			}
			for i, d := range downloads {
				if d.Filename != tt.filenames[i] {
					t.Errorf("Filename = %q, want %q", d.Filename, tt.filenames[i])
				}
			}
			if !bytes.Contains(downloads[0].Data, []byte(tt.contains)) {
				t.Errorf("data does not contain %q", tt.contains)
			}
		})
	}
}

func TestEncodeInvalidFormat(t *testing.T) {
	_, err := Encode(context.Background(), "pdf", source(t))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Encode(pdf) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeFull, false},
		{"full", ScopeFull, false},
		{"filtered", ScopeFiltered, false},
		{"connected", ScopeConnected, false},
		{"partial", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScope(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseScope(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := DirSink{Dir: dir}
	downloads := []Download{
		{Filename: "a.json", MIME: "application/json", Data: []byte("{}")},
		{Filename: "b.csv", MIME: "text/csv", Data: []byte(`"x"`)},
	}
	if err := DeliverAll(context.Background(), sink, downloads); err != nil {
		t.Fatalf("DeliverAll() error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "b.csv"))
	if err != nil || string(got) != `"x"` {
		t.Errorf("b.csv = %q, %v", got, err)
	}

	err = sink.Deliver(context.Background(), Download{Filename: "../escape.json"})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Deliver(../escape.json) error = %v, want %s", err, errors.ErrCodeInvalidPath)
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	if err := (WriterSink{W: &buf}).Deliver(context.Background(), Download{Data: []byte("abc")}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "abc" {
		t.Errorf("written = %q, want abc", buf.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (WriterSink{W: &buf}).Deliver(ctx, Download{}); err == nil {
		t.Error("Deliver() with canceled context: want error")
	}
}

func TestClipboardSinkRejectsBinary(t *testing.T) {
	err := ClipboardSink{}.Deliver(context.Background(), Download{Filename: "x.png", MIME: "image/png"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Deliver(png) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestScoped(t *testing.T) {
	g, err := graph.BuildJSON([]byte(payload))
	if err != nil {
		t.Fatal(err)
	}
	sel := &selection.Model{}
	if _, err := sel.Select(g, 3); err != nil { // span
		t.Fatal(err)
	}
	opts := render.FrameOptions{Selection: sel, Search: search.New("div")}

	tests := []struct {
		scope Scope
		want  []string
	}{
		{ScopeFull, []string{"document", "div", "div#a", "span"}},
		{ScopeFiltered, []string{"div", "div#a"}},
		{ScopeConnected, []string{"document", "span"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			src := NewSource(g, tt.scope, opts)
			var got []string
			for _, n := range src.Graph.Nodes {
				got = append(got, n.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("nodes = %v, want %v", got, tt.want)
			}
			if len(src.Frame.Nodes) != len(tt.want) {
				t.Errorf("frame has %d nodes, want %d", len(src.Frame.Nodes), len(tt.want))
			}
		})
	}

	if full := Scoped(g, ScopeFull, render.FrameOptions{}); full == g {
		t.Error("Scoped(full) aliases the input graph")
	}
}
