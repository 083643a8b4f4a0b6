package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ball-info/internal/imaging"
)

// createFrame creates a solid color RGB frame
func createFrame(width, height int, c color.RGBA) imaging.Frame {
	f := imaging.NewFrame(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return f
}

// drawDisk fills a disk of the given radius around (cx, cy)
func drawDisk(f imaging.Frame, cx, cy, radius int, c color.RGBA) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				f.SetRGB(x, y, c.R, c.G, c.B)
			}
		}
	}
}

// classColor returns an RGB color that lands in the middle of a class's bounds
func classColor(t *testing.T, name string) color.RGBA {
	t.Helper()
	class, ok := DefaultColorTable().Lookup(name)
	require.True(t, ok, "no class %q", name)
	c := class.Mid().RGB()
	require.True(t, class.Contains(imaging.RGBToHSV(c.R, c.G, c.B)),
		"mid color of %s does not round trip", name)
	return c
}

// maskFromRows builds a mask from strings where '#' marks a set pixel
func maskFromRows(rows ...string) Mask {
	m := NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				m.Set(x, y)
			}
		}
	}
	return m
}

var black = color.RGBA{A: 255}

// contourBounds returns the bounding box of c, with an exclusive max.
func contourBounds(c Contour) image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}
