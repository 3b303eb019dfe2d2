// Package graph builds and serializes the node-link graph of a page's DOM.
//
// The inbound payload is "tag-grouped JSON": an object whose keys are lower-case
// tag names in document order and whose values are arrays of elements, each with
// an attributes map and its inner text:
//
//	{
//	  "div":  [{"attributes": {"id": "a"}, "innerText": "hi"}],
//	  "span": []
//	}
//
// [Build] turns that into a three-level containment graph. Node 0 is the implicit
// document root (level 0), every tag becomes a tag node (level 1) linked from the
// root, and every element becomes an element node (level 2) linked from its tag:
//
//	document ──contains──▶ div ──contains──▶ div#a
//	         └─contains──▶ span
//
// Ids come from one counter shared by all node kinds and restart at 0 on every
// build, so the same payload always produces the same ids.
//
// # Core Types
//
//   - [TagGroups]: the ordered inbound payload; key order is preserved
//   - [Graph], [Node], [Link]: the node-link graph consumed by layouts and renderers
//   - [HierarchyNode]: a tree view of the same graph (see [ToHierarchy])
//
// # Serialization
//
// Graphs use a 2-space indented JSON format where link endpoints are node ids:
//
//	g, _ := graph.Build(groups)
//	data, _ := graph.MarshalGraph(g)        // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data) // []byte → Graph
//	graph.WriteGraphFile(g, "graph.json")   // Graph → file
//
// Layouts only ever write node coordinates (X, Y) and drag pins (FX, FY); the
// node and link sets are owned by [Build].
package graph
