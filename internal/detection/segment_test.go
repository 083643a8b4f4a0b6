package detection

import (
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ball-info/internal/imaging"
)

func TestSegment_OneMaskPerClass(t *testing.T) {
	table := DefaultColorTable()
	frame := createFrame(40, 30, black)
	green := classColor(t, "green")
	for x := 0; x < 10; x++ {
		frame.SetRGB(x, 0, green.R, green.G, green.B)
	}

	masks, err := Segment(frame, table)
	require.NoError(t, err)
	require.Len(t, masks, len(table))

	for i, m := range masks {
		assert.Equal(t, 40, m.Width)
		assert.Equal(t, 30, m.Height)
		if table[i].Name == "green" {
			assert.Equal(t, 10, m.Count())
			assert.True(t, m.At(9, 0))
			assert.False(t, m.At(10, 0))
		} else {
			assert.Zero(t, m.Count(), "class %s", table[i].Name)
		}
	}
}

func TestSegment_BoundsAreInclusive(t *testing.T) {
	class := ColorClass{
		Name:  "edge",
		Lower: imaging.HSV{H: 0, S: 255, V: 255},
		Upper: imaging.HSV{H: 0, S: 255, V: 255},
	}
	frame := createFrame(4, 4, color.RGBA{R: 255, A: 255})

	masks, err := Segment(frame, ColorTable{class})
	require.NoError(t, err)
	assert.Equal(t, 16, masks[0].Count())
}

func TestSegment_InvalidFrame(t *testing.T) {
	_, err := Segment(imaging.NewFrame(0, 0), DefaultColorTable())
	assert.True(t, errors.Is(err, ErrInvalidFrame))
}

func TestColorClass_Contains(t *testing.T) {
	class := ColorClass{
		Name:  "c",
		Lower: imaging.HSV{H: 10, S: 20, V: 30},
		Upper: imaging.HSV{H: 40, S: 50, V: 60},
	}

	tests := []struct {
		name string
		p    imaging.HSV
		want bool
	}{
		{"lower corner", imaging.HSV{H: 10, S: 20, V: 30}, true},
		{"upper corner", imaging.HSV{H: 40, S: 50, V: 60}, true},
		{"inside", imaging.HSV{H: 25, S: 35, V: 45}, true},
		{"hue low", imaging.HSV{H: 9, S: 35, V: 45}, false},
		{"sat high", imaging.HSV{H: 25, S: 51, V: 45}, false},
		{"value low", imaging.HSV{H: 25, S: 35, V: 29}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, class.Contains(tt.p))
		})
	}
}

func TestDefaultColorTable(t *testing.T) {
	table := DefaultColorTable()
	require.NoError(t, table.Validate())
	assert.Equal(t, []string{"yellow", "green", "purple", "blue"}, table.Names())

	_, ok := table.Lookup("purple")
	assert.True(t, ok)
	_, ok = table.Lookup("red")
	assert.False(t, ok)
}
