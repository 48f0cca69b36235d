package navmesh

import (
	"math"

	"go.uber.org/zap"
)

// computeDistanceField runs a two-pass chamfer transform over the grid
// with integer weights (2 orthogonal, 3 diagonal), leaving in every
// walkable cell an approximation of twice the Chebyshev distance to the
// nearest obstacle cell. Returns the maximum value found.
func (g *Generator) computeDistanceField() int {
	grid := g.grid

	// Forward pass, the four already-visited neighbors.
	for y := 1; y < grid.DimY-1; y++ {
		for x := 1; x < grid.DimX-1; x++ {
			c := grid.Get(x, y)
			if c.DistanceToObstacle == 0 {
				continue
			}
			d := c.DistanceToObstacle
			if n := grid.Get(x-1, y).DistanceToObstacle + 2; n < d {
				d = n
			}
			if n := grid.Get(x-1, y-1).DistanceToObstacle + 3; n < d {
				d = n
			}
			if n := grid.Get(x, y-1).DistanceToObstacle + 2; n < d {
				d = n
			}
			if n := grid.Get(x+1, y-1).DistanceToObstacle + 3; n < d {
				d = n
			}
			c.DistanceToObstacle = d
		}
	}

	// Backward pass, the other four.
	maxDist := 0
	for y := grid.DimY - 2; y >= 1; y-- {
		for x := grid.DimX - 2; x >= 1; x-- {
			c := grid.Get(x, y)
			if c.DistanceToObstacle == 0 {
				continue
			}
			d := c.DistanceToObstacle
			if n := grid.Get(x+1, y).DistanceToObstacle + 2; n < d {
				d = n
			}
			if n := grid.Get(x+1, y+1).DistanceToObstacle + 3; n < d {
				d = n
			}
			if n := grid.Get(x, y+1).DistanceToObstacle + 2; n < d {
				d = n
			}
			if n := grid.Get(x-1, y+1).DistanceToObstacle + 3; n < d {
				d = n
			}
			c.DistanceToObstacle = d
			if d > maxDist {
				maxDist = d
			}
		}
	}
	return maxDist
}

// generateRegions partitions walkable cells into regions by flooding
// from distance-field maxima. Cells within obstacleCellPadding cells of
// an obstacle are left in the null region.
func (g *Generator) generateRegions(obstacleCellPadding int) {
	grid := g.grid
	maxDist := g.computeDistanceField()
	padded := 2 * obstacleCellPadding

	threshold := (maxDist + 1) &^ 1
	for threshold > padded {
		g.expandRegions(threshold)
		g.seedRegions(threshold)
		threshold -= 2
	}
	g.assignLeftovers(padded)

	g.stats.RegionCount = grid.RegionCount
	g.log.Debug("regions generated",
		zap.Int("regions", grid.RegionCount),
		zap.Int("maxDistance", maxDist))
}

type dirtyEntry struct {
	cell   int
	region int
	dist   int
}

// expandRegions grows existing regions one frontier cell per round
// until no eligible cell can join. Candidate assignments of a round are
// collected first and applied together, and ties go to the lowest
// region id, so the outcome is independent of scan order details.
func (g *Generator) expandRegions(threshold int) {
	grid := g.grid

	pending := g.pending[:0]
	for y := 1; y < grid.DimY-1; y++ {
		for x := 1; x < grid.DimX-1; x++ {
			c := grid.Get(x, y)
			if c.RegionID == 0 && c.DistanceToObstacle >= threshold {
				pending = append(pending, x+y*grid.DimX)
			}
		}
	}

	for len(pending) > 0 {
		dirty := g.dirty[:0]
		remaining := pending[:0]
		for _, idx := range pending {
			c := &grid.cells[idx]
			bestRegion := 0
			bestDist := math.MaxInt
			for dir := 0; dir < 4; dir++ {
				n := grid.Neighbor(c, dir)
				if n.RegionID == 0 {
					continue
				}
				d := n.DistanceToRegionCore + 2
				if d < bestDist || (d == bestDist && n.RegionID < bestRegion) {
					bestDist = d
					bestRegion = n.RegionID
				}
			}
			if bestRegion != 0 {
				dirty = append(dirty, dirtyEntry{idx, bestRegion, bestDist})
			} else {
				remaining = append(remaining, idx)
			}
		}
		for _, e := range dirty {
			c := &grid.cells[e.cell]
			c.RegionID = e.region
			c.DistanceToRegionCore = e.dist
		}
		g.dirty = dirty
		if len(dirty) == 0 {
			break
		}
		pending = remaining
	}
	g.pending = pending[:0]
}

// seedRegions flood-fills each remaining connected component of cells
// at or above the threshold into a fresh region. The flood is fenced by
// the threshold and claims cells as it visits them, so no cell is
// picked up twice within a sweep.
func (g *Generator) seedRegions(threshold int) {
	grid := g.grid
	for y := 1; y < grid.DimY-1; y++ {
		for x := 1; x < grid.DimX-1; x++ {
			c := grid.Get(x, y)
			if c.RegionID != 0 || c.DistanceToObstacle < threshold {
				continue
			}

			grid.RegionCount++
			region := grid.RegionCount
			c.RegionID = region
			c.DistanceToRegionCore = 0

			queue := g.floodQueue[:0]
			queue = append(queue, x+y*grid.DimX)
			for head := 0; head < len(queue); head++ {
				cur := &grid.cells[queue[head]]
				for dir := 0; dir < 4; dir++ {
					n := grid.Neighbor(cur, dir)
					if n.RegionID == 0 && n.DistanceToObstacle >= threshold {
						n.RegionID = region
						n.DistanceToRegionCore = 0
						queue = append(queue, n.X+n.Y*grid.DimX)
					}
				}
			}
			g.floodQueue = queue[:0]
		}
	}
}

// assignLeftovers attaches walkable cells the watershed never reached
// (odd distance bands between the padding limit and the lowest sweep
// threshold) to the strongest neighboring region. Padded-out cells stay
// in the null region.
func (g *Generator) assignLeftovers(padded int) {
	grid := g.grid
	for changed := true; changed; {
		changed = false
		for y := 1; y < grid.DimY-1; y++ {
			for x := 1; x < grid.DimX-1; x++ {
				c := grid.Get(x, y)
				if c.RegionID != 0 || c.DistanceToObstacle == 0 || c.DistanceToObstacle <= padded {
					continue
				}
				bestRegion := 0
				bestDist := -1
				bestCore := 0
				for dir := 0; dir < 8; dir++ {
					n := grid.Neighbor(c, dir)
					if n.RegionID == 0 {
						continue
					}
					if n.DistanceToObstacle > bestDist ||
						(n.DistanceToObstacle == bestDist && n.RegionID < bestRegion) {
						bestDist = n.DistanceToObstacle
						bestRegion = n.RegionID
						bestCore = n.DistanceToRegionCore
					}
				}
				if bestRegion != 0 {
					c.RegionID = bestRegion
					c.DistanceToRegionCore = bestCore + 2
					changed = true
				}
			}
		}
	}
}
