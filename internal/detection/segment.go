package detection

import (
	"image"

	"github.com/ironsheep/ball-info/internal/imaging"
)

// Mask is a binary image with the same geometry as the frame it came from.
// Set pixels hold 255, clear pixels hold 0.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an all-clear mask.
func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At reports whether (x, y) is set. Coordinates outside the mask are clear.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks (x, y). Coordinates outside the mask are ignored.
func (m Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = 255
}

// Count returns the number of set pixels.
func (m Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m Mask) Clone() Mask {
	c := Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// ToImage returns the mask as a grayscale image, white where set.
func (m Mask) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(img.Pix, m.Pix)
	return img
}

// Segment splits a frame into one mask per color class.
//
// The frame is converted to HSV once and every class is thresholded against
// the same conversion. The result has exactly one mask per class, in table
// order; masks with no set pixels are kept.
//
// Returns ErrInvalidFrame if the frame fails validation. There is no other
// error path.
func Segment(frame imaging.Frame, table ColorTable) ([]Mask, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	hsv := imaging.ToHSV(frame)

	masks := make([]Mask, len(table))
	for i, class := range table {
		m := NewMask(frame.Width, frame.Height)
		for p, v := range hsv {
			if class.Contains(v) {
				m.Pix[p] = 255
			}
		}
		masks[i] = m
	}
	return masks, nil
}
