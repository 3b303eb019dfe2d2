// Package render turns a laid-out graph into drawable output.
//
// # Overview
//
// [BuildFrame] produces the per-frame view model every renderer consumes:
// one [NodeView] per node with its position, radius, color key, label and
// opacity, and one [LinkView] per link with resolved endpoint coordinates.
// Opacity combines the selection highlight and the search filter, taking the
// dimmer of the two.
//
// Radius encodes the hierarchy level (root 15, tag 10, element 5) and the
// color key is the node type, or "community-N" when a community decoration
// pass has grouped the node.
//
// # Outputs
//
//   - [SVG]: a standalone SVG document (ajstarks/svgo)
//   - [PNG]: a raster image (sbinet/gg)
//   - [nodelink]: Graphviz DOT with pinned positions and Graphviz-rendered SVG
//
//	frame := render.BuildFrame(g, render.FrameOptions{Viewport: vp})
//	var buf bytes.Buffer
//	err := render.SVG(&buf, frame)
package render
