// Package navmesh generates 2D navigation meshes from a rectangular area
// and a set of polygonal obstacles. Obstacles are rasterized onto a cell
// grid, walkable cells are partitioned into regions by a watershed over
// the obstacle distance field, region borders are traced and simplified
// into contours, and each contour is decomposed into convex polygons.
package navmesh

import (
	"math"

	"github.com/D8H/NavMeshGenerator/common"
)

// unknownDistance is the distance-field value of a cell before the
// transform has reached it. Obstacle cells hold 0.
const unknownDistance = 0xffff

// Cell is a unit square of the rasterization grid.
type Cell struct {
	X, Y int

	// DistanceToObstacle approximates twice the Chebyshev distance to
	// the nearest obstacle cell. 0 marks the cell itself as obstacle.
	DistanceToObstacle int

	// RegionID is 0 for the null region (obstacle or padded-out cells)
	// and >= 1 for walkable regions.
	RegionID int

	// DistanceToRegionCore is watershed scratch: distance to the flood
	// seed of the cell's region.
	DistanceToRegionCore int

	// ContourFlags has bit d set iff the 4-neighbor in direction d
	// belongs to a different region.
	ContourFlags uint8
}

// neighborDeltas lists the neighborhood offsets. Indices 0..3 are the
// axis directions used by contour flags, 4..7 the diagonals.
var neighborDeltas = [8][2]int{
	{-1, 0}, {0, 1}, {1, 0}, {0, -1},
	{1, 1}, {-1, 1}, {-1, -1}, {1, -1},
}

// Grid is a row-major matrix of cells covering the build area plus a
// one-cell sentinel ring. The ring is permanently obstacle so that
// neighborhood lookups on walkable cells never bounds-check.
type Grid struct {
	OriginX, OriginY      float64
	CellWidth, CellHeight float64
	DimX, DimY            int
	RegionCount           int

	cells []Cell
}

// NewGrid allocates a grid for the given world-space area. The grid is
// two cells wider and taller than the area so the sentinel ring falls
// outside the caller's bounds.
func NewGrid(left, top, right, bottom, cellWidth, cellHeight float64) *Grid {
	dimX := 2 + int(math.Ceil((right-left)/cellWidth))
	dimY := 2 + int(math.Ceil((bottom-top)/cellHeight))
	g := &Grid{
		OriginX:    left - cellWidth,
		OriginY:    top - cellHeight,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		DimX:       dimX,
		DimY:       dimY,
		cells:      make([]Cell, dimX*dimY),
	}
	for y := 0; y < dimY; y++ {
		for x := 0; x < dimX; x++ {
			c := &g.cells[x+y*dimX]
			c.X = x
			c.Y = y
		}
	}
	g.Clear()
	return g
}

// Clear resets every mutable cell field and the region counter so the
// grid can be reused for another build. The sentinel ring is restored
// to obstacle, all other cells to unknown distance.
func (g *Grid) Clear() {
	g.RegionCount = 0
	for i := range g.cells {
		c := &g.cells[i]
		if c.X == 0 || c.Y == 0 || c.X == g.DimX-1 || c.Y == g.DimY-1 {
			c.DistanceToObstacle = 0
		} else {
			c.DistanceToObstacle = unknownDistance
		}
		c.RegionID = 0
		c.DistanceToRegionCore = 0
		c.ContourFlags = 0
	}
}

// Get returns the cell at (x, y). The caller keeps coordinates in range.
func (g *Grid) Get(x, y int) *Cell {
	return &g.cells[x+y*g.DimX]
}

// Neighbor returns the neighbor of c in direction dir (0..7). Valid for
// any non-sentinel cell thanks to the obstacle ring.
func (g *Grid) Neighbor(c *Cell, dir int) *Cell {
	d := neighborDeltas[dir]
	return &g.cells[(c.X+d[0])+(c.Y+d[1])*g.DimX]
}

// ConvertToGridBasis maps a world-space point to grid coordinates.
func (g *Grid) ConvertToGridBasis(p common.Vec2) common.Vec2 {
	return common.Vec2{
		(p.X() - g.OriginX) / g.CellWidth,
		(p.Y() - g.OriginY) / g.CellHeight,
	}
}

// ConvertFromGridBasis maps grid coordinates back to world space.
func (g *Grid) ConvertFromGridBasis(p common.Vec2) common.Vec2 {
	return common.Vec2{
		g.OriginX + p.X()*g.CellWidth,
		g.OriginY + p.Y()*g.CellHeight,
	}
}
