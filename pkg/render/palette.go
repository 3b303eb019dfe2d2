package render

import (
	"fmt"
	"image/color"
)

// category10 is d3's schemeCategory10.
var category10 = []color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff},
	{0xff, 0x7f, 0x0e, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff},
	{0xd6, 0x27, 0x28, 0xff},
	{0x94, 0x67, 0xbd, 0xff},
	{0x8c, 0x56, 0x4b, 0xff},
	{0xe3, 0x77, 0xc2, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff},
	{0xbc, 0xbd, 0x22, 0xff},
	{0x17, 0xbe, 0xcf, 0xff},
}

var (
	colorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorLink       = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorStroke     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorLabel      = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// PaletteFor assigns category10 colors to color keys in order of first
// appearance, cycling after ten keys.
func PaletteFor(nodes []NodeView) map[string]string {
	palette := make(map[string]string)
	for _, n := range nodes {
		if _, ok := palette[n.ColorKey]; ok {
			continue
		}
		palette[n.ColorKey] = css(category10[len(palette)%len(category10)])
	}
	return palette
}

func (f Frame) color(key string) color.RGBA {
	if hex, ok := f.Palette[key]; ok {
		var c color.RGBA
		if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &c.R, &c.G, &c.B); err == nil {
			c.A = 0xff
			return c
		}
	}
	return category10[0]
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
