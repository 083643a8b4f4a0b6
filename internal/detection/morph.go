package detection

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// OpenIterations is the number of erosions, and then dilations, applied to a
// mask before contours are extracted.
const OpenIterations = 2

// morphRadius gives bild a 3x3 square window.
const morphRadius = 1

// Erode applies a 3x3 square erosion the given number of times.
//
// The window is edge-extended, so pixels outside the mask never erode their
// neighbours and a blob touching the frame edge keeps its edge pixels.
func Erode(m Mask, iterations int) Mask {
	return morph(m, iterations, effect.Erode)
}

// Dilate applies a 3x3 square dilation the given number of times.
//
// Nothing grows in from the frame edge.
func Dilate(m Mask, iterations int) Mask {
	return morph(m, iterations, effect.Dilate)
}

// Open erodes then dilates the mask. Specks narrower than about 2*iterations+1
// pixels disappear; larger blobs keep their shape.
func Open(m Mask, iterations int) Mask {
	return Dilate(Erode(m, iterations), iterations)
}

func morph(m Mask, iterations int, filter func(image.Image, float64) *image.RGBA) Mask {
	if iterations <= 0 || len(m.Pix) == 0 {
		return m.Clone()
	}
	var img image.Image = m.ToImage()
	for i := 0; i < iterations; i++ {
		img = filter(img, morphRadius)
	}
	return maskFromRGBA(img.(*image.RGBA), m.Width, m.Height)
}

// maskFromRGBA reads a filtered mask back. bild keeps gray pixels gray, so
// the red channel carries the value.
func maskFromRGBA(img *image.RGBA, width, height int) Mask {
	out := NewMask(width, height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			if row[x*4] >= 128 {
				out.Pix[y*width+x] = 255
			}
		}
	}
	return out
}
