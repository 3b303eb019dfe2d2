package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// SVG writes f as a standalone SVG document. Only root and tag nodes are
// labeled; element labels would overlap at typical page sizes.
func SVG(w io.Writer, f Frame) error {
	width, height := canvasSize(f)
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackground)))

	t := f.Transform
	canvas.Gtransform(fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f)", t.X, t.Y, t.K))

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorLink)))
	for _, l := range f.Links {
		canvas.Line(round(l.X1), round(l.Y1), round(l.X2), round(l.Y2),
			fmt.Sprintf("stroke-opacity:%.2f", 0.6*l.Opacity))
	}
	canvas.Gend()

	for _, n := range f.Nodes {
		style := fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:1.5;stroke-opacity:%.2f",
			css(f.color(n.ColorKey)), n.Opacity, css(colorStroke), n.Opacity)
		canvas.Circle(round(n.X), round(n.Y), round(n.Radius), style)
		if n.Type != graph.TypeElement {
			canvas.Text(round(n.X+n.Radius+3), round(n.Y+4), n.Label,
				fmt.Sprintf("fill:%s;fill-opacity:%.2f;font-size:12px;font-family:sans-serif", css(colorLabel), n.Opacity))
		}
	}

	canvas.Gend()
	canvas.End()
	return nil
}

func canvasSize(f Frame) (int, int) {
	w, h := round(f.Width), round(f.Height)
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	return w, h
}

func round(v float64) int { return int(math.Round(v)) }
