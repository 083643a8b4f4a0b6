package detection

import (
	"image"
	"math"
)

// Contour is the outer boundary of a connected region, as an ordered, closed
// list of pixel coordinates. The last point connects back to the first.
type Contour []image.Point

// Area returns the area enclosed by the contour polygon using the shoelace
// formula. The result is always non-negative.
//
// The polygon runs through pixel centres, so a single pixel or a one pixel
// wide line has zero area even though it covers pixels in the mask.
func (c Contour) Area() float64 {
	if len(c) < 3 {
		return 0
	}
	var sum int
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// neighbours lists the 8-connected offsets in clockwise order (y grows down),
// starting east.
var neighbours = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

// direction returns the index in neighbours of offset d, or -1.
func direction(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return -1
}

// FindExternalContours returns the outer boundary of every 8-connected region
// of set pixels in the mask.
//
// Regions are discovered in raster order (top to bottom, left to right), so
// the result order is deterministic for a given mask. Boundaries of holes
// inside a region are not returned.
//
// # Algorithm
//
//  1. Scan the mask; the first unvisited set pixel of a region is its topmost,
//     leftmost pixel.
//  2. Flood-fill the region to mark it visited (8-connected, stack based).
//  3. Trace the outer boundary from that pixel with Moore-neighbour tracing.
func FindExternalContours(m Mask) []Contour {
	visited := make([]bool, len(m.Pix))
	contours := make([]Contour, 0)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := y*m.Width + x
			if m.Pix[i] == 0 || visited[i] {
				continue
			}
			floodFill(m, visited, x, y)
			contours = append(contours, traceBoundary(m, image.Pt(x, y)))
		}
	}

	return contours
}

// floodFill marks every pixel of the region containing (startX, startY) as
// visited.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on large
// regions. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(m Mask, visited []bool, startX, startY int) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !m.At(p.X, p.Y) {
			continue
		}
		i := p.Y*m.Width + p.X
		if visited[i] {
			continue
		}
		visited[i] = true

		for _, n := range neighbours {
			stack = append(stack, p.Add(n))
		}
	}
}

// traceBoundary walks the outer boundary of the region whose topmost, leftmost
// pixel is start.
//
// Moore-neighbour tracing: from the current pixel, sweep its neighbours
// clockwise starting just after the background pixel we backtracked from, and
// step to the first set one. The trace stops when it is about to repeat the
// first step, which handles regions the boundary passes through twice (for
// example a one pixel wide bridge).
func traceBoundary(m Mask, start image.Point) Contour {
	contour := Contour{start}

	// Nothing above or to the left of start is set, so west is background.
	cur := start
	back := start.Add(neighbours[4])

	var first image.Point
	haveFirst := false

	// A boundary can visit each pixel at most 4 times.
	limit := 4*len(m.Pix) + 8
	for steps := 0; steps < limit; steps++ {
		d := direction(back.Sub(cur))
		next, prev, found := image.Point{}, image.Point{}, false
		for k := 1; k <= 8; k++ {
			nd := (d + k) % 8
			p := cur.Add(neighbours[nd])
			if m.At(p.X, p.Y) {
				next = p
				prev = cur.Add(neighbours[(nd+7)%8])
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel.
			return contour
		}

		if !haveFirst {
			first, haveFirst = next, true
		} else if cur == start && next == first {
			break
		}

		contour = append(contour, next)
		back, cur = prev, next
	}

	// The walk ends back on start, which is already the first point.
	if n := len(contour); n > 1 && contour[n-1] == start {
		contour = contour[:n-1]
	}
	return contour
}
