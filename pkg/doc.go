// Package pkg provides the libraries behind domgraph, which turns the
// structure of a web page into an interactive node-link graph.
//
// # Overview
//
// A page is reduced to a tag-groups payload: every element inside <body>,
// grouped by tag name in document order. The payload becomes a three-level
// containment graph (document → tag → element) that is laid out, highlighted
// and exported. The packages are organized as:
//
//  1. [extract] - HTML page → tag-groups payload
//  2. [graph] - payload decoding, graph building and serialization
//  3. [layout] - force simulation and radial layout behind one engine
//  4. [selection], [search], [viewport] - interaction state
//  5. [render], [export] - frames, SVG/PNG/DOT drawing and export formats
//  6. [visualizer] - one visualizer session tying the above together
//  7. [pipeline], [cache] - cached headless build → layout → render
//  8. [config], [observability], [session] - configuration, hooks and the
//     session registry used by the HTTP server
//
// # Data Flow
//
//	HTML page
//	    ↓
//	[extract] tag groups
//	    ↓
//	[graph] Build
//	    ↓
//	[layout] force | radial
//	    ↓
//	[render] Frame  →  [export] json | csv | svg | png | dot | graphviz
//
// # Quick Start
//
//	groups, _ := extract.FromFile("page.html")
//	ctrl := visualizer.New(visualizer.WithLayout("radial"))
//	defer ctrl.Close()
//	ctrl.VisualizeJSON(ctx, groups)
//	ctrl.SetSearch("nav")
//	downloads, _ := ctrl.Export(ctx, export.ScopeFiltered, "svg")
package pkg
