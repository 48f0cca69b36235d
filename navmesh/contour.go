package navmesh

import "go.uber.org/zap"

// maxContourSteps caps the edge walk to guard pathological input.
const maxContourSteps = 0xffff

// contourDeviationThreshold is the maximum distance a simplified
// obstacle edge may deviate from the raw contour before a raw vertex is
// reinserted. One cell keeps real corners while smoothing rasterization
// staircases.
const contourDeviationThreshold = 1.0

// Contour is the clockwise border of a region in grid space.
type Contour struct {
	RegionID int
	Points   []ContourPoint
}

// facingBorderEndCorner maps a walk direction to the cell corner where
// the clockwise traversal of the border facing that direction ends.
var facingBorderEndCorner = [4]Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// markContourFlags sets, for every walkable cell, one bit per axis
// neighbor in a different region. Cells flagged on all four sides are
// single-cell islands; they are discarded here so the walk never starts
// on them.
func (g *Generator) markContourFlags() {
	grid := g.grid
	for y := 1; y < grid.DimY-1; y++ {
		for x := 1; x < grid.DimX-1; x++ {
			c := grid.Get(x, y)
			if c.RegionID == 0 {
				c.ContourFlags = 0
				continue
			}
			var flags uint8
			for dir := 0; dir < 4; dir++ {
				if grid.Neighbor(c, dir).RegionID != c.RegionID {
					flags |= 1 << dir
				}
			}
			if flags == 0xf {
				c.ContourFlags = 0
				g.stats.DiscardedContours++
				g.log.Warn("discarding island region",
					zap.Int("region", c.RegionID),
					zap.Int("x", c.X), zap.Int("y", c.Y))
				continue
			}
			c.ContourFlags = flags
		}
	}
}

// walkContour traces the border of start's region clockwise, emitting a
// corner vertex each time the facing neighbor belongs to another
// region. Visited border bits are cleared so each border is walked once.
func (g *Generator) walkContour(start *Cell, startDir int, out []ContourPoint) []ContourPoint {
	grid := g.grid
	cell := start
	dir := startDir

	for step := 0; ; step++ {
		if step >= maxContourSteps {
			g.log.Warn("contour walk exceeded step limit",
				zap.Int("region", start.RegionID))
			break
		}
		if cell.ContourFlags&(1<<dir) != 0 {
			delta := facingBorderEndCorner[dir]
			out = append(out, ContourPoint{
				Point:  Point{cell.X + delta.X, cell.Y + delta.Y},
				Region: grid.Neighbor(cell, dir).RegionID,
			})
			cell.ContourFlags &^= 1 << dir
			dir = (dir + 3) & 3
		} else {
			cell = grid.Neighbor(cell, dir)
			dir = (dir + 1) & 3
		}

		if cell == start && dir == startDir {
			break
		}
	}
	return out
}

// buildContours extracts one simplified contour per region. A region
// that fully surrounds an obstacle pocket yields extra border loops;
// those are merged into the region's outline as holes, so exactly one
// contour per region survives. The second return value indexes the
// contours by region id for the vertex filter.
func (g *Generator) buildContours() ([]Contour, []*Contour) {
	grid := g.grid
	g.markContourFlags()

	var walked []Contour
	for y := 1; y < grid.DimY-1; y++ {
		for x := 1; x < grid.DimX-1; x++ {
			c := grid.Get(x, y)
			if c.ContourFlags == 0 {
				continue
			}
			startDir := 0
			for c.ContourFlags&(1<<startDir) == 0 {
				startDir++
			}

			raw := g.walkContour(c, startDir, g.rawPoints[:0])
			g.rawPoints = raw

			walked = append(walked, Contour{
				RegionID: c.RegionID,
				Points:   g.simplifyContour(raw),
			})
		}
	}

	contours := g.mergeRegionHoles(walked)

	byRegion := make([]*Contour, grid.RegionCount+1)
	for i := range contours {
		byRegion[contours[i].RegionID] = &contours[i]
	}

	g.stats.ContourCount = len(contours)
	if len(contours)+g.stats.DiscardedContours != grid.RegionCount {
		g.log.Warn("contour count does not match region count",
			zap.Int("contours", len(contours)),
			zap.Int("discarded", g.stats.DiscardedContours),
			zap.Int("regions", grid.RegionCount))
	}
	return contours, byRegion
}

// simplifiedVertex carries the raw-vertex index alongside the point
// during simplification; the index is rewritten into the true outward
// region once the stage ends.
type simplifiedVertex struct {
	Point
	rawIndex int
}

// simplifyContour reduces a raw contour to its mandatory vertices plus
// whatever obstacle-edge detail exceeds the deviation threshold.
func (g *Generator) simplifyContour(raw []ContourPoint) []ContourPoint {
	pn := len(raw)
	if pn == 0 {
		return nil
	}

	sim := g.simplified[:0]

	hasPortals := false
	for _, p := range raw {
		if p.Region != 0 {
			hasPortals = true
			break
		}
	}

	if hasPortals {
		// Seed with every vertex where the outward region changes.
		for i := 0; i < pn; i++ {
			ii := next(i, pn)
			if raw[i].Region != raw[ii].Region {
				sim = append(sim, simplifiedVertex{raw[i].Point, i})
			}
		}
	}

	if len(sim) == 0 {
		// Island surrounded by obstacle: seed with the lower-left and
		// upper-right vertices.
		ll, ur := 0, 0
		for i := 1; i < pn; i++ {
			p, lo, hi := raw[i].Point, raw[ll].Point, raw[ur].Point
			if p.X < lo.X || (p.X == lo.X && p.Y < lo.Y) {
				ll = i
			}
			if p.X > hi.X || (p.X == hi.X && p.Y > hi.Y) {
				ur = i
			}
		}
		sim = append(sim,
			simplifiedVertex{raw[ll].Point, ll},
			simplifiedVertex{raw[ur].Point, ur})
	}

	// Obstacle-edge refinement: reinsert the farthest raw vertex of any
	// obstacle-facing edge that deviates more than the threshold.
	const thresholdSqr = contourDeviationThreshold * contourDeviationThreshold
	for i := 0; i < len(sim); {
		ii := next(i, len(sim))
		a := sim[i]
		b := sim[ii]

		maxd := 0.0
		maxi := -1
		ci := next(a.rawIndex, pn)
		if raw[ci].Region == 0 {
			for ci != b.rawIndex {
				d := distToSegmentSqr(raw[ci].Point, a.Point, b.Point)
				if d > maxd {
					maxd = d
					maxi = ci
				}
				ci = next(ci, pn)
			}
		}

		if maxi != -1 && maxd > thresholdSqr {
			sim = append(sim, simplifiedVertex{})
			copy(sim[i+2:], sim[i+1:])
			sim[i+1] = simplifiedVertex{raw[maxi].Point, maxi}
		} else {
			i++
		}
	}
	g.simplified = sim[:0]

	// The outward region of the edge leaving a kept vertex is carried
	// by the raw vertex that follows it.
	out := make([]ContourPoint, len(sim))
	for i, v := range sim {
		out[i] = ContourPoint{v.Point, raw[next(v.rawIndex, pn)].Region}
	}
	return out
}

// cycleEntry locates one contour's copy of a shared vertex.
type cycleEntry struct {
	contour *Contour
	index   int
}

// filterCommonVertices collapses vertices shared by three or more
// regions. Such a vertex has no obstacle-facing incident edge in the
// contour under inspection; the copy sitting at the end of the shortest
// obstacle-adjacent edge absorbs every other copy, which keeps the
// contours tiling with shared edges after simplification moved their
// borders independently.
func (g *Generator) filterCommonVertices(contours []Contour, byRegion []*Contour) {
	maxSweeps := 16 + len(contours)
	sweep := 0
	for changed := true; changed; {
		if sweep++; sweep > maxSweeps {
			g.log.Warn("vertex filter did not reach a fixed point",
				zap.Int("sweeps", maxSweeps))
			break
		}
		changed = false
		for ci := range contours {
			cont := &contours[ci]
			for vi := 0; vi < len(cont.Points); vi++ {
				n := len(cont.Points)
				v := cont.Points[vi]
				prevRegion := cont.Points[prev(vi, n)].Region
				if v.Region == 0 || prevRegion == 0 {
					continue
				}
				if g.collapseCommonVertex(cont, vi, byRegion) {
					changed = true
					if vi >= len(cont.Points) {
						break
					}
				}
			}
		}
	}

	for ci := range contours {
		contours[ci].Points = dedupeContour(contours[ci].Points)
	}
}

// collapseCommonVertex resolves one shared vertex. Returns false when
// the vertex has to wait for a later sweep.
func (g *Generator) collapseCommonVertex(cont *Contour, vi int, byRegion []*Contour) bool {
	v := cont.Points[vi]

	// Walk the cycle of contours meeting at v.
	cycle := g.cycle[:0]
	cycle = append(cycle, cycleEntry{cont, vi})
	cur := cont.Points[vi]
	closed := false
	for len(cycle) <= len(byRegion) {
		if cur.Region <= 0 || cur.Region >= len(byRegion) {
			g.cycle = cycle[:0]
			return false
		}
		nc := byRegion[cur.Region]
		if nc == nil {
			g.log.Warn("no contour for neighboring region",
				zap.Int("region", cur.Region))
			g.cycle = cycle[:0]
			return false
		}
		if nc == cont {
			closed = true
			break
		}
		idx := -1
		for i, p := range nc.Points {
			if p.X == v.X && p.Y == v.Y {
				idx = i
				break
			}
		}
		if idx == -1 {
			g.log.Warn("shared vertex missing from neighboring contour",
				zap.Int("region", nc.RegionID),
				zap.Int("x", v.X), zap.Int("y", v.Y))
			g.cycle = cycle[:0]
			return false
		}
		cycle = append(cycle, cycleEntry{nc, idx})
		cur = nc.Points[idx]
	}
	g.cycle = cycle[:0]

	if !closed {
		g.log.Warn("contour cycle around shared vertex did not close",
			zap.Int("x", v.X), zap.Int("y", v.Y))
		return false
	}
	if len(cycle) < 3 {
		return false
	}

	// Pick the shortest obstacle-adjacent edge arriving at v.
	bestEntry := -1
	bestLen := 0
	var anchor Point
	for i, e := range cycle {
		np := len(e.contour.Points)
		p := e.contour.Points[prev(e.index, np)]
		if p.Region != 0 {
			continue
		}
		l := distSqr(p.Point, v.Point)
		if bestEntry == -1 || l < bestLen {
			bestEntry = i
			bestLen = l
			anchor = p.Point
		}
	}
	if bestEntry == -1 {
		// No obstacle-adjacent incident edge yet; a later sweep will
		// handle this vertex.
		return false
	}

	// The anchor absorbs v: the two contours sharing the shortest edge
	// drop v, every other contour moves its copy onto the anchor.
	for i, e := range cycle {
		np := len(e.contour.Points)
		sharesEdge := i == bestEntry ||
			vequal(e.contour.Points[next(e.index, np)].Point, anchor)
		if sharesEdge {
			e.contour.Points = append(
				e.contour.Points[:e.index],
				e.contour.Points[e.index+1:]...)
		} else {
			moved := &e.contour.Points[e.index]
			moved.X = anchor.X
			moved.Y = anchor.Y
			moved.Region = 0
		}
	}
	return true
}

// dedupeContour removes consecutive duplicate points, wrap-around
// included. Duplicates appear when two-vertex regions collapse.
func dedupeContour(points []ContourPoint) []ContourPoint {
	out := points[:0]
	for _, p := range points {
		if len(out) > 0 && vequal(out[len(out)-1].Point, p.Point) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && vequal(out[0].Point, out[len(out)-1].Point) {
		out = out[:len(out)-1]
	}
	return out
}
