package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/render"
)

// Graphviz engines.
const (
	EngineDot   = "dot"
	EngineNeato = "neato"
)

// Options configures DOT generation.
type Options struct {
	// Pinned writes each node's layout position as a fixed pos attribute.
	Pinned bool
}

// ToDOT converts a frame to Graphviz DOT.
func ToDOT(f render.Frame, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, label=\"\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#999999\"];\n")
	if opts.Pinned {
		buf.WriteString("  splines=false;\n")
	}
	buf.WriteString("\n")

	for _, n := range f.Nodes {
		attrs := fmt.Sprintf("xlabel=%q, tooltip=%q, width=%.2f, fillcolor=%q, color=%q",
			xlabel(n), n.Label, 2*n.Radius/72, fadedColor(f, n.ColorKey, n.Opacity), fadedColor(f, n.ColorKey, n.Opacity))
		if opts.Pinned {
			// Graphviz y grows upward.
			attrs += fmt.Sprintf(", pos=\"%.2f,%.2f!\"", n.X, -n.Y)
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	for _, l := range f.Links {
		fmt.Fprintf(&buf, "  n%d -> n%d [color=%q];\n", l.Source, l.Target, fmt.Sprintf("#999999%02x", alpha(l.Opacity)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func xlabel(n render.NodeView) string {
	if n.Type == graph.TypeElement {
		return ""
	}
	return n.Label
}

func fadedColor(f render.Frame, key string, opacity float64) string {
	hex, ok := f.Palette[key]
	if !ok {
		hex = "#1f77b4"
	}
	return fmt.Sprintf("%s%02x", hex, alpha(opacity))
}

func alpha(opacity float64) int {
	return int(opacity*255 + 0.5)
}

// RenderSVG renders DOT source to SVG with the given Graphviz engine.
func RenderSVG(ctx context.Context, dot, engine string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	switch engine {
	case EngineNeato:
		gv.SetLayout(graphviz.NEATO)
	case EngineDot, "":
		gv.SetLayout(graphviz.DOT)
	default:
		return nil, fmt.Errorf("unsupported graphviz engine %q", engine)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
