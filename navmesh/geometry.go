package navmesh

// Point is an integer point at cell-corner granularity.
type Point struct {
	X, Y int
}

// ContourPoint is a contour vertex. Region is the id of the region on
// the outward side of the edge leaving this vertex, or 0 for the
// obstacle region.
type ContourPoint struct {
	Point
	Region int
}

func area2(a, b, c Point) int {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// Returns true iff c is strictly to the left of the directed
// line through a to b, under the clockwise winding used throughout
// (y grows downward, clockwise rings have positive signed area).
func left(a, b, c Point) bool {
	return area2(a, b, c) > 0
}

func leftOn(a, b, c Point) bool {
	return area2(a, b, c) >= 0
}

func collinear(a, b, c Point) bool {
	return area2(a, b, c) == 0
}

// Exclusive or: true iff exactly one argument is true.
func xorb(x, y bool) bool {
	return x != y
}

// Returns true iff ab properly intersects cd: they share
// a point interior to both segments. The properness of the
// intersection is ensured by using strict leftness.
func intersectProp(a, b, c, d Point) bool {
	// Eliminate improper cases.
	if collinear(a, b, c) || collinear(a, b, d) ||
		collinear(c, d, a) || collinear(c, d, b) {
		return false
	}

	return xorb(left(a, b, c), left(a, b, d)) && xorb(left(c, d, a), left(c, d, b))
}

// Returns true iff (a,b,c) are collinear and point c lies
// on the closed segment ab.
func between(a, b, c Point) bool {
	if !collinear(a, b, c) {
		return false
	}

	// If ab not vertical, check betweenness on x; else on y.
	if a.X != b.X {
		return ((a.X <= c.X) && (c.X <= b.X)) || ((a.X >= c.X) && (c.X >= b.X))
	}

	return ((a.Y <= c.Y) && (c.Y <= b.Y)) || ((a.Y >= c.Y) && (c.Y >= b.Y))
}

// Returns true iff segments ab and cd intersect, properly or improperly.
func intersect(a, b, c, d Point) bool {
	if intersectProp(a, b, c, d) {
		return true
	}

	if between(a, b, c) || between(a, b, d) ||
		between(c, d, a) || between(c, d, b) {
		return true
	}

	return false
}

func vequal(a, b Point) bool {
	return a.X == b.X && a.Y == b.Y
}

// distToSegmentSqr returns the squared distance from p to segment ab.
func distToSegmentSqr(p, a, b Point) float64 {
	pqx := float64(b.X - a.X)
	pqy := float64(b.Y - a.Y)
	dx := float64(p.X - a.X)
	dy := float64(p.Y - a.Y)
	d := pqx*pqx + pqy*pqy
	t := pqx*dx + pqy*dy
	if d > 0 {
		t /= d
	}

	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	dx = float64(a.X) + t*pqx - float64(p.X)
	dy = float64(a.Y) + t*pqy - float64(p.Y)

	return dx*dx + dy*dy
}

// distSqr returns the squared distance between two points.
func distSqr(a, b Point) int {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// signedArea2 returns twice the signed area of the polygon. Clockwise
// polygons in grid space (y down) have a positive value.
func signedArea2(points []Point) int {
	area := 0
	j := len(points) - 1
	for i := 0; i < len(points); i++ {
		area += points[j].X*points[i].Y - points[i].X*points[j].Y
		j = i
	}
	return area
}

// Last time I checked the if version got compiled using cmov, which was
// a lot faster than modulo (with idiv).
func prev(i, n int) int {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

func next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}
