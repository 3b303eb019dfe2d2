package export

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/render"
	"github.com/matzehuels/domgraph/pkg/render/nodelink"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
)

// ValidFormats lists the supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:     true,
	FormatCSV:      true,
	FormatSVG:      true,
	FormatPNG:      true,
	FormatDOT:      true,
	FormatGraphviz: true,
}

// Scope selects which part of the graph is exported.
type Scope string

const (
	ScopeFull      Scope = "full"
	ScopeFiltered  Scope = "filtered"
	ScopeConnected Scope = "connected"
)

// BaseName prefixes every exported filename.
const BaseName = "dom-graph"

// Download is a named artifact ready for delivery.
type Download struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Data     []byte `json:"data"`
}

// Source is the content an export draws from. Graph and Frame must already
// be cut down to the requested scope.
type Source struct {
	Graph *graph.Graph
	Frame render.Frame
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// ParseScope converts a scope name; "" means ScopeFull.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeFull:
		return ScopeFull, nil
	case ScopeFiltered, ScopeConnected:
		return Scope(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidScope, "invalid scope: %q (must be one of: full, filtered, connected)", s)
}

// Encode produces the downloads for one format. CSV yields two files;
// every other format yields one.
func Encode(ctx context.Context, format string, src Source) ([]Download, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		data, err := JSON(src.Graph)
		if err != nil {
			return nil, err
		}
		return []Download{{Filename: BaseName + ".json", MIME: "application/json", Data: data}}, nil

	case FormatCSV:
		files := CSVFromGraph(src.Graph)
		return []Download{
			{Filename: "dom-nodes.csv", MIME: "text/csv", Data: files.Nodes},
			{Filename: "dom-edges.csv", MIME: "text/csv", Data: files.Edges},
		}, nil

	case FormatSVG:
		var buf bytes.Buffer
		if err := render.SVG(&buf, src.Frame); err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return []Download{{Filename: BaseName + ".svg", MIME: "image/svg+xml", Data: buf.Bytes()}}, nil

	case FormatPNG:
		var buf bytes.Buffer
		if err := render.PNG(&buf, src.Frame); err != nil {
			return nil, fmt.Errorf("render png: %w", err)
		}
		return []Download{{Filename: BaseName + ".png", MIME: "image/png", Data: buf.Bytes()}}, nil

	case FormatDOT:
		dot := nodelink.ToDOT(src.Frame, nodelink.Options{Pinned: true})
		return []Download{{Filename: BaseName + ".dot", MIME: "text/vnd.graphviz", Data: []byte(dot)}}, nil

	case FormatGraphviz:
		dot := nodelink.ToDOT(src.Frame, nodelink.Options{Pinned: true})
		svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineNeato)
		if err != nil {
			return nil, err
		}
		return []Download{{Filename: BaseName + ".graphviz.svg", MIME: "image/svg+xml", Data: svg}}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
}

// IsText reports whether the download can be shown as text.
func (d Download) IsText() bool {
	return strings.HasPrefix(d.MIME, "text/") || d.MIME == "application/json" || d.MIME == "image/svg+xml"
}
