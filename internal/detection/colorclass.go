package detection

import (
	"github.com/pkg/errors"

	"github.com/ironsheep/ball-info/internal/imaging"
)

// ColorClass is a named color target with inclusive HSV bounds.
//
// A pixel belongs to the class when all three of its HSV components fall
// within [Lower, Upper]. Hue ranges do not wrap; a red class straddling hue 0
// has to be configured as two classes.
type ColorClass struct {
	Name  string      `json:"name"`
	Lower imaging.HSV `json:"lower"`
	Upper imaging.HSV `json:"upper"`
}

// Contains reports whether an HSV value lies within the class bounds.
func (c ColorClass) Contains(p imaging.HSV) bool {
	return p.H >= c.Lower.H && p.H <= c.Upper.H &&
		p.S >= c.Lower.S && p.S <= c.Upper.S &&
		p.V >= c.Lower.V && p.V <= c.Upper.V
}

// Mid returns the HSV value halfway between the bounds. It is used to pick a
// representative swatch color for labels.
func (c ColorClass) Mid() imaging.HSV {
	return imaging.HSV{
		H: uint8((int(c.Lower.H) + int(c.Upper.H)) / 2),
		S: uint8((int(c.Lower.S) + int(c.Upper.S)) / 2),
		V: uint8((int(c.Lower.V) + int(c.Upper.V)) / 2),
	}
}

// Validate checks that the bounds are ordered and the hue is in range.
func (c ColorClass) Validate() error {
	if c.Name == "" {
		return errors.New("color class has no name")
	}
	if c.Upper.H > imaging.HueMax {
		return errors.Errorf("color class %q: upper hue %d exceeds %d", c.Name, c.Upper.H, imaging.HueMax)
	}
	if c.Lower.H > c.Upper.H || c.Lower.S > c.Upper.S || c.Lower.V > c.Upper.V {
		return errors.Errorf("color class %q: lower bound %s exceeds upper bound %s", c.Name, c.Lower, c.Upper)
	}
	return nil
}

// ColorTable is the ordered set of classes the detector looks for. The order
// is the order detections are reported in.
type ColorTable []ColorClass

// Validate checks every class and rejects empty tables and duplicate names.
func (t ColorTable) Validate() error {
	if len(t) == 0 {
		return errors.New("color table is empty")
	}
	seen := make(map[string]bool, len(t))
	for _, c := range t {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Name] {
			return errors.Errorf("duplicate color class %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Lookup returns the class with the given name.
func (t ColorTable) Lookup(name string) (ColorClass, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return ColorClass{}, false
}

// Names returns the class names in table order.
func (t ColorTable) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

// DefaultColorTable returns the bounds tuned for the competition balls under
// the lab lights. The values were measured on frames converted from RGB, which
// is why "yellow" sits at a hue that would otherwise read as cyan.
func DefaultColorTable() ColorTable {
	return ColorTable{
		{Name: "yellow", Lower: imaging.HSV{H: 90, S: 0, V: 200}, Upper: imaging.HSV{H: 110, S: 200, V: 255}},
		{Name: "green", Lower: imaging.HSV{H: 30, S: 150, V: 50}, Upper: imaging.HSV{H: 55, S: 255, V: 200}},
		{Name: "purple", Lower: imaging.HSV{H: 130, S: 70, V: 0}, Upper: imaging.HSV{H: 160, S: 200, V: 200}},
		{Name: "blue", Lower: imaging.HSV{H: 15, S: 230, V: 150}, Upper: imaging.HSV{H: 30, S: 255, V: 255}},
	}
}
