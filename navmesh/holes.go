package navmesh

import (
	"sort"

	"go.uber.org/zap"
)

// A region that surrounds obstacle pockets produces one outline plus
// one border loop per pocket. The loops are stitched into the outline
// with a pair of bridge edges so each region keeps a single contour.

type contourHole struct {
	contour  *Contour
	minx     int
	miny     int
	leftmost int
}

// findLeftMostVertex returns the lowest leftmost vertex of a contour.
func findLeftMostVertex(c *Contour) (minx, miny, leftmost int) {
	minx = c.Points[0].X
	miny = c.Points[0].Y
	for i := 1; i < len(c.Points); i++ {
		p := c.Points[i]
		if p.X < minx || (p.X == minx && p.Y < miny) {
			minx = p.X
			miny = p.Y
			leftmost = i
		}
	}
	return minx, miny, leftmost
}

// contourInCone reports whether the diagonal from vertex i of the
// contour to pj lies inside the contour's internal angle at i.
func contourInCone(i int, points []ContourPoint, pj Point) bool {
	n := len(points)
	pi := points[i].Point
	pi1 := points[next(i, n)].Point
	pin1 := points[prev(i, n)].Point

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if leftOn(pin1, pi, pi1) {
		return left(pi, pj, pin1) && left(pj, pi, pi1)
	}

	// else P[i] is reflex.
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

// intersectSegContour reports whether segment d0-d1 crosses any contour
// edge not incident to vertex i and not sharing an endpoint with the
// segment.
func intersectSegContour(d0, d1 Point, i int, points []ContourPoint) bool {
	n := len(points)
	for k := 0; k < n; k++ {
		k1 := next(k, n)
		if k == i || k1 == i {
			continue
		}
		p0 := points[k].Point
		p1 := points[k1].Point
		if vequal(d0, p0) || vequal(d1, p0) || vequal(d0, p1) || vequal(d1, p1) {
			continue
		}
		if intersect(d0, d1, p0, p1) {
			return true
		}
	}
	return false
}

// mergeContours splices hole into outline through a bridge between
// outline vertex ia and hole vertex ib. The bridge edges face the
// obstacle pocket, so their outward region is null.
func mergeContours(outline, hole *Contour, ia, ib int) {
	na := len(outline.Points)
	nb := len(hole.Points)
	pts := make([]ContourPoint, 0, na+nb+2)

	for i := 0; i <= na; i++ {
		pts = append(pts, outline.Points[(ia+i)%na])
	}
	for i := 0; i <= nb; i++ {
		pts = append(pts, hole.Points[(ib+i)%nb])
	}
	pts[na].Region = 0
	pts[na+nb+1].Region = 0

	outline.Points = pts
	hole.Points = nil
}

type potentialDiagonal struct {
	vert int
	dist int
}

// mergeRegionHoles groups the walked contours by region, keeps the
// clockwise loop of each region as its outline and stitches the
// counter-clockwise loops (holes) into it, leftmost hole first.
func (g *Generator) mergeRegionHoles(walked []Contour) []Contour {
	byRegion := make(map[int][]int)
	order := make([]int, 0, len(walked))
	for i := range walked {
		r := walked[i].RegionID
		if _, seen := byRegion[r]; !seen {
			order = append(order, i)
		}
		byRegion[r] = append(byRegion[r], i)
	}

	out := make([]Contour, 0, len(order))
	for _, first := range order {
		indices := byRegion[walked[first].RegionID]
		if len(indices) == 1 {
			out = append(out, walked[first])
			continue
		}

		var outline *Contour
		var holes []*contourHole
		for _, idx := range indices {
			c := &walked[idx]
			if len(c.Points) == 0 {
				continue
			}
			if signedAreaOfContour(c) > 0 {
				if outline != nil {
					g.log.Warn("region has more than one outline, dropping one",
						zap.Int("region", c.RegionID))
					continue
				}
				outline = c
			} else {
				minx, miny, leftmost := findLeftMostVertex(c)
				holes = append(holes, &contourHole{c, minx, miny, leftmost})
			}
		}
		if outline == nil {
			g.log.Warn("region has holes but no outline",
				zap.Int("region", walked[first].RegionID))
			out = append(out, walked[first])
			continue
		}

		// Merge holes left to right so earlier bridges cannot trap a
		// later hole.
		sort.Slice(holes, func(i, j int) bool {
			if holes[i].minx != holes[j].minx {
				return holes[i].minx < holes[j].minx
			}
			if holes[i].miny != holes[j].miny {
				return holes[i].miny < holes[j].miny
			}
			return len(holes[i].contour.Points) < len(holes[j].contour.Points)
		})

		for hi, hole := range holes {
			if !g.mergeOneHole(outline, holes, hi) {
				g.log.Warn("could not find a bridge for region hole",
					zap.Int("region", hole.contour.RegionID))
			}
		}
		out = append(out, *outline)
	}
	return out
}

// mergeOneHole finds the shortest non-crossing diagonal between the
// hole and the outline and splices the hole through it.
func (g *Generator) mergeOneHole(outline *Contour, holes []*contourHole, hi int) bool {
	hole := holes[hi].contour
	bestVertex := holes[hi].leftmost

	var diags []potentialDiagonal
	for range hole.Points {
		corner := hole.Points[bestVertex].Point

		// The bridge endpoint must sit in the cone of three consecutive
		// outline vertices.
		diags = diags[:0]
		for j := range outline.Points {
			if contourInCone(j, outline.Points, corner) {
				diags = append(diags, potentialDiagonal{
					vert: j,
					dist: distSqr(outline.Points[j].Point, corner),
				})
			}
		}
		sort.Slice(diags, func(i, j int) bool {
			if diags[i].dist != diags[j].dist {
				return diags[i].dist < diags[j].dist
			}
			return diags[i].vert < diags[j].vert
		})

		// Keep the shortest diagonal that crosses neither the outline
		// nor any hole still waiting for its bridge.
		for _, d := range diags {
			pt := outline.Points[d.vert].Point
			crossed := intersectSegContour(pt, corner, d.vert, outline.Points)
			for k := hi; k < len(holes) && !crossed; k++ {
				if len(holes[k].contour.Points) == 0 {
					continue
				}
				crossed = intersectSegContour(pt, corner, -1, holes[k].contour.Points)
			}
			if !crossed {
				mergeContours(outline, hole, d.vert, bestVertex)
				return true
			}
		}

		// Every diagonal of this corner crosses something, try the next
		// hole vertex.
		bestVertex = next(bestVertex, len(hole.Points))
	}
	return false
}

// signedAreaOfContour returns twice the signed area; positive for the
// clockwise winding contour walks produce for outlines.
func signedAreaOfContour(c *Contour) int {
	area := 0
	j := len(c.Points) - 1
	for i := 0; i < len(c.Points); i++ {
		area += c.Points[j].X*c.Points[i].Y - c.Points[i].X*c.Points[j].Y
		j = i
	}
	return area
}
