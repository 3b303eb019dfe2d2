package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
)

const page = `<!DOCTYPE html>
<html>
<head><title>ignored</title></head>
<body>
  <div id="a" class="box">
    hi
    <SPAN>there</SPAN>
    <script>var x = 1;</script>
  </div>
  <p>second   line</p>
  <div></div>
</body>
</html>`

func TestFromString(t *testing.T) {
	groups, err := FromString(page)
	if err != nil {
		t.Fatalf("FromString() error: %v", err)
	}

	want := graph.TagGroups{
		{Tag: "div", Elements: []graph.Element{
			{Attributes: map[string]string{"id": "a", "class": "box"}, InnerText: "hi there"},
			{Attributes: map[string]string{}, InnerText: ""},
		}},
		{Tag: "span", Elements: []graph.Element{
			{Attributes: map[string]string{}, InnerText: "there"},
		}},
		{Tag: "script", Elements: []graph.Element{
			{Attributes: map[string]string{}, InnerText: "var x = 1;"},
		}},
		{Tag: "p", Elements: []graph.Element{
			{Attributes: map[string]string{}, InnerText: "second line"},
		}},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("FromString() =\n%+v\nwant\n%+v", groups, want)
	}
}

func TestFromStringEmptyBody(t *testing.T) {
	groups, err := FromString("<html><body></body></html>")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 0 {
		t.Errorf("len(groups) = %d, want 0", len(groups))
	}
}

func TestExtractedPayloadBuilds(t *testing.T) {
	groups, err := FromString(page)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Build(groups)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	// root + 4 tags + 5 elements
	if len(g.Nodes) != 10 {
		t.Errorf("len(Nodes) = %d, want 10", len(g.Nodes))
	}
	if g.Nodes[2].Name != "div#a" {
		t.Errorf("Nodes[2].Name = %q, want div#a", g.Nodes[2].Name)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	groups, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if groups.ElementCount() != 5 {
		t.Errorf("ElementCount() = %d, want 5", groups.ElementCount())
	}

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.html"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("FromFile(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func ExampleFromString() {
	groups, _ := FromString(`<body><ul><li>one</li><li>two</li></ul></body>`)
	for _, g := range groups {
		fmt.Println(g.Tag, len(g.Elements))
	}
	// Output:
	// ul 1
	// li 2
}
