// Package nodelink renders frames as Graphviz node-link diagrams.
//
// # Usage
//
// Convert a frame to DOT, then render it to SVG in-process:
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{Pinned: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineNeato)
//
// With Pinned set every node carries pos="x,y!" so the neato engine keeps
// the force or radial positions computed by the layout engine. Without it
// Graphviz lays the containment tree out itself, top to bottom.
//
// Nodes are filled with their palette color and faded by their frame
// opacity, so selection and search state survive the export.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
