package navmesh

import (
	"math"

	"go.uber.org/zap"

	"github.com/D8H/NavMeshGenerator/common"
)

// rasterizeObstacles marks every grid cell covered by an obstacle
// polygon by zeroing its DistanceToObstacle.
func (g *Generator) rasterizeObstacles(obstacles ObstacleSource) {
	if obstacles == nil {
		return
	}
	for obstacle := range obstacles {
		g.rasterizeObstacle(obstacle)
	}
}

// rasterizeObstacle runs a conservative two-phase scan-line fill over a
// single polygon. A horizontal pass handles the common case; when it
// fills nothing (the polygon is thinner than a cell) it is re-run in
// thin mode and complemented by the transposed vertical pass, so any
// polygon whose bounding box meets a cell center marks at least one
// cell.
func (g *Generator) rasterizeObstacle(obstacle Obstacle) {
	grid := g.grid

	verts := g.obstacleVerts[:0]
	for p := range obstacle {
		verts = append(verts, grid.ConvertToGridBasis(p))
	}
	g.obstacleVerts = verts
	if len(verts) < 3 {
		g.log.Debug("skipping degenerate obstacle", zap.Int("vertices", len(verts)))
		return
	}

	minXf, minYf := verts[0].X(), verts[0].Y()
	maxXf, maxYf := minXf, minYf
	for _, v := range verts[1:] {
		minXf = math.Min(minXf, v.X())
		minYf = math.Min(minYf, v.Y())
		maxXf = math.Max(maxXf, v.X())
		maxYf = math.Max(maxYf, v.Y())
	}
	if maxXf < 0 || maxYf < 0 || minXf >= float64(grid.DimX) || minYf >= float64(grid.DimY) {
		// Entirely outside the grid.
		return
	}

	minX := common.Clamp(int(math.Floor(minXf)), 0, grid.DimX-1)
	maxX := common.Clamp(int(math.Floor(maxXf)), 0, grid.DimX-1)
	minY := common.Clamp(int(math.Floor(minYf)), 0, grid.DimY-1)
	maxY := common.Clamp(int(math.Floor(maxYf)), 0, grid.DimY-1)

	if g.fillRows(verts, minX, maxX, minY, maxY, false) == 0 {
		g.fillRows(verts, minX, maxX, minY, maxY, true)
		g.fillColumns(verts, minX, maxX, minY, maxY)
	}
}

// fillRows is the horizontal scan-line pass. Each grid row is sampled
// at its cell-center line y+0.5; crossings with polygon edges follow
// the half-open rule so a crossing exactly on a vertex counts once.
// Returns the number of span pixels visited.
func (g *Generator) fillRows(verts []common.Vec2, minX, maxX, minY, maxY int, fillThin bool) int {
	filled := 0
	for y := minY; y <= maxY; y++ {
		cy := float64(y) + 0.5

		nodes := g.scanNodes[:0]
		j := len(verts) - 1
		for i := 0; i < len(verts); i++ {
			vi, vj := verts[i], verts[j]
			if (vi.Y() <= cy && cy < vj.Y()) || (vj.Y() < cy && cy <= vi.Y()) {
				x := vi.X() + (cy-vi.Y())/(vj.Y()-vi.Y())*(vj.X()-vi.X())
				nodes = append(nodes, int(math.Round(x)))
			}
			j = i
		}
		g.scanNodes = nodes
		sortNodes(nodes)

		for i := 0; i+1 < len(nodes); i += 2 {
			if nodes[i] > maxX {
				break
			}
			if nodes[i+1] < minX {
				continue
			}
			x0 := common.Clamp(nodes[i], minX, maxX)
			x1 := common.Clamp(nodes[i+1], minX, maxX)
			if fillThin && x0 == x1 {
				g.markObstacle(x0, y)
				filled++
				continue
			}
			for x := x0; x < x1; x++ {
				g.markObstacle(x, y)
				filled++
			}
		}
	}
	return filled
}

// fillColumns is the transposed vertical pass, thin-vertical case
// included. Only reached when the horizontal pass filled nothing.
func (g *Generator) fillColumns(verts []common.Vec2, minX, maxX, minY, maxY int) {
	for x := minX; x <= maxX; x++ {
		cx := float64(x) + 0.5

		nodes := g.scanNodes[:0]
		j := len(verts) - 1
		for i := 0; i < len(verts); i++ {
			vi, vj := verts[i], verts[j]
			if (vi.X() <= cx && cx < vj.X()) || (vj.X() < cx && cx <= vi.X()) {
				y := vi.Y() + (cx-vi.X())/(vj.X()-vi.X())*(vj.Y()-vi.Y())
				nodes = append(nodes, int(math.Round(y)))
			}
			j = i
		}
		g.scanNodes = nodes
		sortNodes(nodes)

		for i := 0; i+1 < len(nodes); i += 2 {
			if nodes[i] > maxY {
				break
			}
			if nodes[i+1] < minY {
				continue
			}
			y0 := common.Clamp(nodes[i], minY, maxY)
			y1 := common.Clamp(nodes[i+1], minY, maxY)
			if y0 == y1 {
				g.markObstacle(x, y0)
				continue
			}
			for y := y0; y < y1; y++ {
				g.markObstacle(x, y)
			}
		}
	}
}

func (g *Generator) markObstacle(x, y int) {
	c := g.grid.Get(x, y)
	if c.DistanceToObstacle != 0 {
		c.DistanceToObstacle = 0
		g.stats.ObstacleCells++
	}
}

// sortNodes bubble-sorts the crossing list. Node lists are tiny.
func sortNodes(nodes []int) {
	for i := 0; i < len(nodes)-1; {
		if nodes[i] > nodes[i+1] {
			nodes[i], nodes[i+1] = nodes[i+1], nodes[i]
			if i > 0 {
				i--
			}
		} else {
			i++
		}
	}
}
