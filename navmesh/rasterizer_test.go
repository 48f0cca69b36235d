package navmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D8H/NavMeshGenerator/common"
)

func newTestGenerator(t *testing.T, left, top, right, bottom, cellSize float64) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{
		AreaLeftBound:         left,
		AreaTopBound:          top,
		AreaRightBound:        right,
		AreaBottomBound:       bottom,
		RasterizationCellSize: cellSize,
	})
	require.NoError(t, err)
	return g
}

func obstacles(polys ...[]common.Vec2) ObstacleSource {
	return ObstaclesFromSlices(polys)
}

func TestRasterizeCentralSquare(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 800, 600, 10)
	g.rasterizeObstacles(obstacles([]common.Vec2{
		{300, 200}, {500, 200}, {500, 400}, {300, 400},
	}))

	assert.Equal(t, 400, g.stats.ObstacleCells)
	for y := 1; y < g.grid.DimY-1; y++ {
		for x := 1; x < g.grid.DimX-1; x++ {
			covered := x >= 31 && x <= 50 && y >= 21 && y <= 40
			isObstacle := g.grid.Get(x, y).DistanceToObstacle == 0
			if covered != isObstacle {
				t.Fatalf("cell (%d,%d): obstacle=%v, want %v", x, y, isObstacle, covered)
			}
		}
	}
}

func TestRasterizeThinObstacleIsConservative(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 100, 100, 10)
	g.rasterizeObstacles(obstacles([]common.Vec2{
		{50, 20}, {50.2, 20}, {50.2, 80}, {50, 80},
	}))

	// The strip is far narrower than a cell; the thin pass still marks
	// one full column of cells.
	assert.Equal(t, 6, g.stats.ObstacleCells)
	for y := 3; y <= 8; y++ {
		assert.Zero(t, g.grid.Get(6, y).DistanceToObstacle, "cell (6,%d)", y)
	}
	assert.NotZero(t, g.grid.Get(5, 5).DistanceToObstacle)
	assert.NotZero(t, g.grid.Get(7, 5).DistanceToObstacle)
}

func TestRasterizeObstacleOutsideArea(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 100, 100, 10)
	g.rasterizeObstacles(obstacles([]common.Vec2{
		{-500, -500}, {-400, -500}, {-400, -400}, {-500, -400},
	}))

	assert.Zero(t, g.stats.ObstacleCells)
	for y := 1; y < g.grid.DimY-1; y++ {
		for x := 1; x < g.grid.DimX-1; x++ {
			assert.Equal(t, unknownDistance, g.grid.Get(x, y).DistanceToObstacle)
		}
	}
}

func TestRasterizeObstacleCoveringArea(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 100, 100, 10)
	g.rasterizeObstacles(obstacles([]common.Vec2{
		{-50, -50}, {150, -50}, {150, 150}, {-50, 150},
	}))

	for y := 1; y < g.grid.DimY-1; y++ {
		for x := 1; x < g.grid.DimX-1; x++ {
			assert.Zero(t, g.grid.Get(x, y).DistanceToObstacle, "cell (%d,%d)", x, y)
		}
	}
}

func TestRasterizeDegenerateObstacleIsIgnored(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 100, 100, 10)
	g.rasterizeObstacles(obstacles([]common.Vec2{{10, 10}, {20, 20}}))
	assert.Zero(t, g.stats.ObstacleCells)
}
