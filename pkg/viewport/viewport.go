// Package viewport implements pan and zoom over the graph canvas.
//
// A [Transform] maps graph coordinates to screen coordinates as
// screen = graph*K + (X, Y). The scale K is always kept within
// [MinScale, MaxScale].
package viewport

import (
	"math"

	"github.com/matzehuels/domgraph/pkg/layout"
)

// Zoom limits.
const (
	MinScale = 0.1
	MaxScale = 4.0
)

// Transform is a uniform scale followed by a translation.
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the untransformed view.
var Identity = Transform{K: 1}

// Apply maps a graph point to the screen.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a screen point back to graph coordinates.
func (t Transform) Invert(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.K, (sy - t.Y) / t.K
}

// Bounds is an axis-aligned box in graph coordinates.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Controller holds the view transform and the canvas size.
type Controller struct {
	width, height float64
	t             Transform
}

// New returns a controller for a canvas of the given size.
func New(width, height float64) *Controller {
	return &Controller{width: width, height: height, t: Identity}
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Size returns the canvas size as a layout viewport.
func (c *Controller) Size() layout.Viewport {
	return layout.Viewport{Width: c.width, Height: c.height}
}

// Resize changes the canvas size and returns the viewport layouts should
// be re-applied to.
func (c *Controller) Resize(width, height float64) layout.Viewport {
	c.width, c.height = width, height
	return c.Size()
}

// ZoomTo sets the scale, keeping the canvas center fixed.
func (c *Controller) ZoomTo(k float64) {
	c.ZoomBy(k/c.t.K, c.width/2, c.height/2)
}

// ZoomBy multiplies the scale by factor, keeping the screen point (px, py)
// over the same graph point.
func (c *Controller) ZoomBy(factor, px, py float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	k := Clamp(c.t.K * factor)
	gx, gy := c.t.Invert(px, py)
	c.t = Transform{X: px - gx*k, Y: py - gy*k, K: k}
}

// Pan shifts the view by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	c.t.X += dx
	c.t.Y += dy
}

// Set replaces the transform, clamping its scale.
func (c *Controller) Set(t Transform) {
	t.K = Clamp(t.K)
	c.t = t
}

// Reset returns to the identity transform.
func (c *Controller) Reset() { c.t = Identity }

// Fit scales and translates so b fills the canvas minus padding.
func (c *Controller) Fit(b Bounds, padding float64) {
	gw, gh := b.MaxX-b.MinX, b.MaxY-b.MinY
	if gw <= 0 {
		gw = 1
	}
	if gh <= 0 {
		gh = 1
	}
	k := math.Min((c.width-2*padding)/gw, (c.height-2*padding)/gh)
	if k <= 0 {
		k = 1
	}
	k = Clamp(k)
	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	c.t = Transform{X: c.width/2 - cx*k, Y: c.height/2 - cy*k, K: k}
}

// FocusOn centers the graph point (x, y) at the current scale.
func (c *Controller) FocusOn(x, y float64) {
	c.t.X = c.width/2 - x*c.t.K
	c.t.Y = c.height/2 - y*c.t.K
}

// Clamp limits k to [MinScale, MaxScale].
func Clamp(k float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, k))
}

// BoundsOf returns the bounding box of a set of points.
func BoundsOf(xs, ys []float64) Bounds {
	if len(xs) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: xs[0], MinY: ys[0], MaxX: xs[0], MaxY: ys[0]}
	for i := range xs {
		b.MinX, b.MaxX = math.Min(b.MinX, xs[i]), math.Max(b.MaxX, xs[i])
		b.MinY, b.MaxY = math.Min(b.MinY, ys[i]), math.Max(b.MaxY, ys[i])
	}
	return b
}
