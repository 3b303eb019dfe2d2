package export

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// CSV column headers.
var (
	NodeColumns = []string{"id", "name", "type", "level", "tag", "attributes", "content"}
	EdgeColumns = []string{"source", "target", "type", "value"}
)

// CSVFiles holds the two CSV exports.
type CSVFiles struct {
	Nodes []byte
	Edges []byte
}

// CSV builds the graph of a payload and writes its node and edge tables.
func CSV(groups graph.TagGroups) (CSVFiles, error) {
	g, err := graph.Build(groups)
	if err != nil {
		return CSVFiles{}, err
	}
	return CSVFromGraph(g), nil
}

// CSVFromGraph writes the node and edge tables of g.
func CSVFromGraph(g *graph.Graph) CSVFiles {
	var nodes, edges bytes.Buffer
	writeRow(&nodes, NodeColumns)
	for _, n := range g.Nodes {
		writeRow(&nodes, []string{
			strconv.Itoa(n.ID),
			n.Name,
			string(n.Type),
			strconv.Itoa(n.Level),
			n.Data.Tag,
			n.Data.AttributeString(),
			n.Data.Content,
		})
	}
	writeRow(&edges, EdgeColumns)
	for _, l := range g.Links {
		writeRow(&edges, []string{
			strconv.Itoa(l.Source),
			strconv.Itoa(l.Target),
			l.Type,
			strconv.FormatFloat(l.Value, 'g', -1, 64),
		})
	}
	return CSVFiles{Nodes: nodes.Bytes(), Edges: edges.Bytes()}
}

// writeRow quotes every field and doubles embedded quotes.
func writeRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}
