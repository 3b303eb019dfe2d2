// Package export serializes graphs and frames into downloadable artifacts.
//
// Every export produces one or more [Download] values (filename, MIME type
// and bytes) that a [Sink] delivers. The core never waits on a sink beyond
// the write itself: a download is fire-and-forget.
//
// # Formats
//
//   - json: the graph, 2-space indented, link endpoints as node ids; parses
//     back with graph.UnmarshalGraph
//   - csv: two files, nodes and edges, every field double-quoted
//   - svg, png: the current frame drawn by package render
//   - dot: Graphviz source with pinned layout positions
//   - graphviz: the dot source rendered to SVG by Graphviz
//
// # Scopes
//
// A [Scope] picks which part of the graph is exported: the whole graph, the
// nodes matching the search filter, or the selected node's connected set.
package export
