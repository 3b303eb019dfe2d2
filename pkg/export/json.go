package export

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// JSON serializes g with 2-space indentation.
func JSON(g *graph.Graph) ([]byte, error) {
	out := *g
	if out.Nodes == nil {
		out.Nodes = []*graph.Node{}
	}
	if out.Links == nil {
		out.Links = []graph.Link{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// WriteJSON writes the JSON serialization of g to w.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	data, err := JSON(g)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
