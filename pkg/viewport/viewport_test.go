package viewport

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestZoomByKeepsAnchor(t *testing.T) {
	c := New(800, 600)
	c.Pan(30, -20)
	gx, gy := c.Transform().Invert(200, 150)

	c.ZoomBy(2, 200, 150)
	if k := c.Transform().K; k != 2 {
		t.Fatalf("K = %v, want 2", k)
	}
	sx, sy := c.Transform().Apply(gx, gy)
	if math.Abs(sx-200) > 1e-9 || math.Abs(sy-150) > 1e-9 {
		t.Errorf("anchor moved to (%v, %v), want (200, 150)", sx, sy)
	}
}

func TestZoomClamped(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"TooFarIn", 100, MaxScale},
		{"TooFarOut", 0.001, MinScale},
		{"Normal", 1.5, 1.5},
		{"Ignored", -2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(800, 600)
			c.ZoomBy(tt.factor, 0, 0)
			if got := c.Transform().K; got != tt.want {
				t.Errorf("K = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScaleAlwaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(800, 600)
		for _, f := range rapid.SliceOf(rapid.Float64Range(0.01, 50)).Draw(t, "factors") {
			c.ZoomBy(f, 400, 300)
			if k := c.Transform().K; k < MinScale || k > MaxScale {
				t.Fatalf("K = %v out of range", k)
			}
		}
	})
}

func TestFit(t *testing.T) {
	c := New(800, 600)
	c.Fit(Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, 50)
	tr := c.Transform()
	if tr.K != 4 {
		t.Errorf("K = %v, want 4 (clamped)", tr.K)
	}
	x, y := tr.Apply(50, 50)
	if x != 400 || y != 300 {
		t.Errorf("center maps to (%v, %v), want (400, 300)", x, y)
	}
}

func TestFocusOnAndReset(t *testing.T) {
	c := New(800, 600)
	c.ZoomTo(2)
	c.FocusOn(10, 20)
	if x, y := c.Transform().Apply(10, 20); x != 400 || y != 300 {
		t.Errorf("focused point at (%v, %v), want (400, 300)", x, y)
	}
	c.Reset()
	if c.Transform() != Identity {
		t.Errorf("Reset() = %+v, want %+v", c.Transform(), Identity)
	}
}

func TestResize(t *testing.T) {
	c := New(800, 600)
	vp := c.Resize(1024, 768)
	if vp.Width != 1024 || vp.Height != 768 {
		t.Errorf("Resize() = %+v", vp)
	}
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf([]float64{3, -1, 7}, []float64{2, 9, -4})
	want := Bounds{MinX: -1, MinY: -4, MaxX: 7, MaxY: 9}
	if b != want {
		t.Errorf("BoundsOf() = %+v, want %+v", b, want)
	}
}
