package render

import (
	"image/png"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/domgraph/pkg/graph"
)

// PNG rasterizes f and writes it as a PNG image.
func PNG(w io.Writer, f Frame) error {
	width, height := canvasSize(f)
	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackground)
	dc.Clear()

	t := f.Transform
	dc.Translate(t.X, t.Y)
	dc.Scale(t.K, t.K)

	dc.SetLineWidth(1.5)
	for _, l := range f.Links {
		dc.SetRGBA255(int(colorLink.R), int(colorLink.G), int(colorLink.B), alpha(0.6*l.Opacity))
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	dc.SetFontFace(basicfont.Face7x13)
	for _, n := range f.Nodes {
		c := f.color(n.ColorKey)
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), alpha(n.Opacity))
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.Fill()
		dc.SetRGBA255(int(colorStroke.R), int(colorStroke.G), int(colorStroke.B), alpha(n.Opacity))
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.Stroke()

		if n.Type != graph.TypeElement {
			dc.SetRGBA255(int(colorLabel.R), int(colorLabel.G), int(colorLabel.B), alpha(n.Opacity))
			dc.DrawStringAnchored(n.Label, n.X+n.Radius+3, n.Y, 0, 0.5)
		}
	}
	return png.Encode(w, dc.Image())
}

func alpha(opacity float64) int {
	return int(opacity*255 + 0.5)
}
