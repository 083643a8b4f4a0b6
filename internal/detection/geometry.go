package detection

import (
	"math"
	"math/rand"
)

// Moments holds the zeroth and first order area moments of a contour polygon.
type Moments struct {
	M00 float64 `json:"m00"` // enclosed area
	M10 float64 `json:"m10"`
	M01 float64 `json:"m01"`
}

// ContourMoments computes polygon moments with Green's theorem.
//
// The contour orientation does not matter; the signs are normalised so M00 is
// never negative.
func ContourMoments(c Contour) Moments {
	if len(c) < 3 {
		return Moments{}
	}
	var a00, a10, a01 float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		xi, yi := float64(p.X), float64(p.Y)
		xj, yj := float64(q.X), float64(q.Y)
		cross := xi*yj - xj*yi
		a00 += cross
		a10 += cross * (xi + xj)
		a01 += cross * (yi + yj)
	}
	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Centroid returns (M10/M00, M01/M00) truncated toward zero. ok is false when
// the area is zero.
func (m Moments) Centroid() (x, y int, ok bool) {
	if m.M00 == 0 {
		return 0, 0, false
	}
	return int(m.M10 / m.M00), int(m.M01 / m.M00), true
}

// Circle is a circle in pixel coordinates.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// circleEps absorbs floating point error when testing containment.
const circleEps = 1e-7

func (c Circle) contains(x, y float64) bool {
	return math.Hypot(x-c.X, y-c.Y) <= c.Radius+circleEps*math.Max(1, c.Radius)
}

// mecSeed fixes the shuffle in MinEnclosingCircle so the same contour always
// produces bit-identical output.
const mecSeed = 0x6a09e667

// MinEnclosingCircle returns the smallest circle containing every contour
// point.
//
// This is Welzl's algorithm in its iterative form. Points are shuffled with a
// fixed seed, which gives expected linear time without giving up determinism.
// An empty contour yields a zero circle.
func MinEnclosingCircle(c Contour) Circle {
	if len(c) == 0 {
		return Circle{}
	}

	xs := make([]float64, len(c))
	ys := make([]float64, len(c))
	for i, p := range c {
		xs[i], ys[i] = float64(p.X), float64(p.Y)
	}
	rng := rand.New(rand.NewSource(mecSeed))
	rng.Shuffle(len(xs), func(i, j int) {
		xs[i], xs[j] = xs[j], xs[i]
		ys[i], ys[j] = ys[j], ys[i]
	})

	circ := Circle{X: xs[0], Y: ys[0]}
	for i := 1; i < len(xs); i++ {
		if circ.contains(xs[i], ys[i]) {
			continue
		}
		circ = Circle{X: xs[i], Y: ys[i]}
		for j := 0; j < i; j++ {
			if circ.contains(xs[j], ys[j]) {
				continue
			}
			circ = circleFrom2(xs[i], ys[i], xs[j], ys[j])
			for k := 0; k < j; k++ {
				if circ.contains(xs[k], ys[k]) {
					continue
				}
				circ = circleFrom3(xs[i], ys[i], xs[j], ys[j], xs[k], ys[k])
			}
		}
	}
	return circ
}

// circleFrom2 is the circle with segment (x1,y1)-(x2,y2) as its diameter.
func circleFrom2(x1, y1, x2, y2 float64) Circle {
	return Circle{
		X:      (x1 + x2) / 2,
		Y:      (y1 + y2) / 2,
		Radius: math.Hypot(x2-x1, y2-y1) / 2,
	}
}

// circleFrom3 is the circumcircle of three points. Collinear points fall back
// to the circle over the farthest pair.
func circleFrom3(x1, y1, x2, y2, x3, y3 float64) Circle {
	bx, by := x2-x1, y2-y1
	cx, cy := x3-x1, y3-y1
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		best := circleFrom2(x1, y1, x2, y2)
		if c := circleFrom2(x1, y1, x3, y3); c.Radius > best.Radius {
			best = c
		}
		if c := circleFrom2(x2, y2, x3, y3); c.Radius > best.Radius {
			best = c
		}
		return best
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Circle{X: x1 + ux, Y: y1 + uy, Radius: math.Hypot(ux, uy)}
}
