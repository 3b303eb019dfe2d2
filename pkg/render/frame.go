package render

import (
	"fmt"

	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/search"
	"github.com/matzehuels/domgraph/pkg/selection"
	"github.com/matzehuels/domgraph/pkg/viewport"
)

// Node radii by type.
const (
	RadiusRoot    = 15.0
	RadiusTag     = 10.0
	RadiusElement = 5.0
)

// Frame is everything needed to draw one frame.
type Frame struct {
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Transform viewport.Transform `json:"transform"`
	Nodes     []NodeView         `json:"nodes"`
	Links     []LinkView         `json:"links"`
	Palette   map[string]string  `json:"palette"`
}

// NodeView is a drawable node.
type NodeView struct {
	ID       int            `json:"id"`
	Label    string         `json:"label"`
	Type     graph.NodeType `json:"type"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Radius   float64        `json:"radius"`
	ColorKey string         `json:"colorKey"`
	Opacity  float64        `json:"opacity"`
	Pinned   bool           `json:"pinned,omitempty"`
}

// LinkView is a drawable link.
type LinkView struct {
	Source  int     `json:"source"`
	Target  int     `json:"target"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Opacity float64 `json:"opacity"`
}

// FrameOptions carries the interaction state applied to a frame. Nil models
// leave everything at full opacity.
type FrameOptions struct {
	Viewport  layout.Viewport
	Transform viewport.Transform
	Selection *selection.Model
	Search    *search.Filter
}

// BuildFrame computes the view model for g.
func BuildFrame(g *graph.Graph, opts FrameOptions) Frame {
	tr := opts.Transform
	if tr.K == 0 {
		tr = viewport.Identity
	}
	f := Frame{
		Width:     opts.Viewport.Width,
		Height:    opts.Viewport.Height,
		Transform: tr,
		Nodes:     []NodeView{},
		Links:     []LinkView{},
		Palette:   map[string]string{},
	}
	if g == nil {
		return f
	}

	for _, n := range g.Nodes {
		f.Nodes = append(f.Nodes, NodeView{
			ID:       n.ID,
			Label:    n.Name,
			Type:     n.Type,
			X:        n.X,
			Y:        n.Y,
			Radius:   Radius(n),
			ColorKey: ColorKey(n),
			Opacity:  nodeOpacity(g, n, opts),
			Pinned:   n.Pinned(),
		})
	}
	for _, l := range g.Links {
		src, dst, ok := g.Endpoints(l)
		if !ok {
			continue
		}
		f.Links = append(f.Links, LinkView{
			Source:  l.Source,
			Target:  l.Target,
			X1:      src.X,
			Y1:      src.Y,
			X2:      dst.X,
			Y2:      dst.Y,
			Opacity: linkOpacity(g, l, opts),
		})
	}
	f.Palette = PaletteFor(f.Nodes)
	return f
}

func nodeOpacity(g *graph.Graph, n *graph.Node, opts FrameOptions) float64 {
	o := 1.0
	if opts.Selection != nil {
		o = min(o, opts.Selection.NodeOpacity(n.ID))
	}
	if opts.Search != nil {
		o = min(o, opts.Search.NodeOpacity(n))
	}
	return o
}

func linkOpacity(g *graph.Graph, l graph.Link, opts FrameOptions) float64 {
	o := 1.0
	if opts.Selection != nil {
		o = min(o, opts.Selection.LinkOpacity(l))
	}
	if opts.Search != nil {
		o = min(o, opts.Search.LinkOpacity(g, l))
	}
	return o
}

// Radius returns the drawn radius of n.
func Radius(n *graph.Node) float64 {
	switch n.Type {
	case graph.TypeRoot:
		return RadiusRoot
	case graph.TypeTag:
		return RadiusTag
	default:
		return RadiusElement
	}
}

// ColorKey returns the palette key of n.
func ColorKey(n *graph.Node) string {
	if n.Group != nil {
		return fmt.Sprintf("community-%d", *n.Group)
	}
	return string(n.Type)
}

// Bounds returns the box enclosing every node including its radius.
func (f Frame) Bounds() viewport.Bounds {
	if len(f.Nodes) == 0 {
		return viewport.Bounds{}
	}
	n0 := f.Nodes[0]
	b := viewport.Bounds{MinX: n0.X - n0.Radius, MinY: n0.Y - n0.Radius, MaxX: n0.X + n0.Radius, MaxY: n0.Y + n0.Radius}
	for _, n := range f.Nodes[1:] {
		b.MinX = min(b.MinX, n.X-n.Radius)
		b.MinY = min(b.MinY, n.Y-n.Radius)
		b.MaxX = max(b.MaxX, n.X+n.Radius)
		b.MaxY = max(b.MaxY, n.Y+n.Radius)
	}
	return b
}
