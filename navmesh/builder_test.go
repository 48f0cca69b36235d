package navmesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D8H/NavMeshGenerator/common"
)

func square(left, top, right, bottom float64) []common.Vec2 {
	return []common.Vec2{{left, top}, {right, top}, {right, bottom}, {left, bottom}}
}

// worldArea2 returns twice the signed area; positive for clockwise
// rings in the y-down world.
func worldArea2(poly Polygon) float64 {
	area := 0.0
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		area += poly[j].X()*poly[i].Y() - poly[i].X()*poly[j].Y()
		j = i
	}
	return area
}

func meshArea(mesh []Polygon) float64 {
	total := 0.0
	for _, p := range mesh {
		total += worldArea2(p) / 2
	}
	return total
}

func pointInPolygon(poly Polygon, x, y float64) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		cross := (b.X()-a.X())*(y-a.Y()) - (x-a.X())*(b.Y()-a.Y())
		if cross < -1e-9 {
			return false
		}
	}
	return true
}

func meshContains(mesh []Polygon, x, y float64) bool {
	for _, p := range mesh {
		if pointInPolygon(p, x, y) {
			return true
		}
	}
	return false
}

func assertValidMesh(t *testing.T, mesh []Polygon, maxVerts int) {
	t.Helper()
	for i, poly := range mesh {
		require.GreaterOrEqual(t, len(poly), 3, "polygon %d", i)
		require.LessOrEqual(t, len(poly), maxVerts, "polygon %d", i)
		require.Positive(t, worldArea2(poly), "polygon %d must be clockwise", i)
		n := len(poly)
		for j := 0; j < n; j++ {
			a, b, c := poly[j], poly[(j+1)%n], poly[(j+2)%n]
			cross := (b.X()-a.X())*(c.Y()-a.Y()) - (c.X()-a.X())*(b.Y()-a.Y())
			require.GreaterOrEqual(t, cross, -1e-9, "polygon %d is not convex at vertex %d", i, j)
		}
	}
}

func TestBuildMeshEmptyArea(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 100, 100, 10)
	mesh := g.BuildMesh(nil, 0)

	require.Len(t, mesh, 1)
	assertValidMesh(t, mesh, 16)

	got := map[[2]float64]bool{}
	for _, v := range mesh[0] {
		got[[2]float64{v.X(), v.Y()}] = true
	}
	for _, w := range [][2]float64{{0, 0}, {100, 0}, {100, 100}, {0, 100}} {
		assert.True(t, got[w], "missing corner %v", w)
	}
}

func TestBuildMeshSingleCentralSquare(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 800, 600, 10)
	mesh := g.BuildMesh(obstacles(square(300, 200, 500, 400)), 0)

	assert.GreaterOrEqual(t, len(mesh), 4)
	assertValidMesh(t, mesh, 16)
	assert.InDelta(t, 800*600-200*200, meshArea(mesh), 1e-6)

	for i, poly := range mesh {
		for _, v := range poly {
			assert.True(t, v.X() >= -1e-9 && v.X() <= 800+1e-9, "polygon %d vertex x=%v", i, v.X())
			assert.True(t, v.Y() >= -1e-9 && v.Y() <= 600+1e-9, "polygon %d vertex y=%v", i, v.Y())
			inside := v.X() > 300+1e-9 && v.X() < 500-1e-9 &&
				v.Y() > 200+1e-9 && v.Y() < 400-1e-9
			assert.False(t, inside, "polygon %d vertex %v sits inside the obstacle", i, v)
		}
	}

	for _, p := range [][2]float64{{150, 300}, {650, 300}, {400, 100}, {400, 500}, {5, 5}, {795, 595}} {
		assert.True(t, meshContains(mesh, p[0], p[1]), "walkable point %v is not covered", p)
	}
	assert.False(t, meshContains(mesh, 400, 300), "obstacle center must stay uncovered")
}

func TestBuildMeshRingObstacle(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 200, 200, 10)
	mesh := g.BuildMesh(obstacles(
		square(50, 50, 150, 150),
		square(90, 90, 110, 110),
	), 0)

	require.NotEmpty(t, mesh)
	assertValidMesh(t, mesh, 16)
	// The outer walkable frame is meshed; the solid obstacle block
	// (the inner obstacle is inside it) stays uncovered.
	assert.InDelta(t, 200*200-100*100, meshArea(mesh), 1e-6)
	assert.False(t, meshContains(mesh, 100, 100))
	assert.True(t, meshContains(mesh, 25, 25))
	assert.True(t, meshContains(mesh, 175, 100))
}

func TestBuildMeshDiscardsEnclosedIslandCell(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 50, 50, 10)
	mesh := g.BuildMesh(obstacles(
		square(10, 10, 40, 20),
		square(10, 30, 40, 40),
		square(10, 10, 20, 40),
		square(30, 10, 40, 40),
	), 0)

	// The single walkable cell walled in at the center is logged and
	// dropped; the surrounding frame is still meshed.
	assert.Equal(t, 1, g.Stats().DiscardedContours)
	require.NotEmpty(t, mesh)
	assertValidMesh(t, mesh, 16)
	assert.InDelta(t, 50*50-9*100, meshArea(mesh), 1e-6)
	assert.False(t, meshContains(mesh, 25, 25), "island cell must stay uncovered")
}

func TestBuildMeshThinObstacleSplitsArea(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 100, 100, 10)
	mesh := g.BuildMesh(obstacles([]common.Vec2{
		{50, 20}, {50.2, 20}, {50.2, 80}, {50, 80},
	}), 0)

	assert.GreaterOrEqual(t, len(mesh), 2)
	assertValidMesh(t, mesh, 16)
	assert.InDelta(t, 100*100-6*100, meshArea(mesh), 1e-6)

	// No single polygon bridges the strip at its mid height.
	for i, poly := range mesh {
		left := pointInPolygon(poly, 30, 50)
		right := pointInPolygon(poly, 75, 50)
		assert.False(t, left && right, "polygon %d crosses the thin obstacle", i)
	}
}

func TestBuildMeshIsometricStretchesY(t *testing.T) {
	g, err := NewGenerator(Config{
		AreaLeftBound: 0, AreaTopBound: 0, AreaRightBound: 800, AreaBottomBound: 600,
		RasterizationCellSize: 10,
		IsometricRatio:        2,
	})
	require.NoError(t, err)
	mesh := g.BuildMesh(obstacles(square(300, 200, 500, 400)), 0)

	require.NotEmpty(t, mesh)
	assertValidMesh(t, mesh, 16)
	// The y axis is stretched back by the ratio, doubling the area.
	assert.InDelta(t, 2*(800*600-200*200), meshArea(mesh), 1e-6)

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, poly := range mesh {
		for _, v := range poly {
			assert.True(t, v.X() >= -1e-9 && v.X() <= 800+1e-9)
			minY = math.Min(minY, v.Y())
			maxY = math.Max(maxY, v.Y())
			inside := v.X() > 300+1e-9 && v.X() < 500-1e-9 &&
				v.Y() > 400+1e-9 && v.Y() < 800-1e-9
			assert.False(t, inside, "vertex %v sits inside the stretched obstacle", v)
		}
	}
	assert.InDelta(t, 0, minY, 1e-9)
	assert.InDelta(t, 1200, maxY, 1e-9)
}

func TestBuildMeshPaddingRecedesFromObstacles(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 800, 600, 10)
	mesh := g.BuildMesh(obstacles(square(300, 200, 500, 400)), 2)

	require.NotEmpty(t, mesh)
	assertValidMesh(t, mesh, 16)

	for i, poly := range mesh {
		for _, v := range poly {
			assert.True(t, v.X() >= 20-1e-9 && v.X() <= 780+1e-9, "polygon %d vertex x=%v", i, v.X())
			assert.True(t, v.Y() >= 20-1e-9 && v.Y() <= 580+1e-9, "polygon %d vertex y=%v", i, v.Y())
			// The chamfer transform nibbles the dilated block's corners
			// by up to one cell, so test against the box one cell in.
			inside := v.X() > 290+1e-9 && v.X() < 510-1e-9 &&
				v.Y() > 190+1e-9 && v.Y() < 410-1e-9
			assert.False(t, inside, "polygon %d vertex %v is inside the dilated obstacle", i, v)
		}
	}

	// Dilating by two cells removes a two-cell band along the border
	// and grows the obstacle block, chamfered at its corners.
	assert.InDelta(t, (4256-564)*100, meshArea(mesh), 200)
}

func TestBuildMeshDeterministic(t *testing.T) {
	build := func() []Polygon {
		g := newTestGenerator(t, 0, 0, 400, 300, 10)
		return g.BuildMesh(obstacles(
			square(100, 80, 180, 160),
			square(250, 120, 310, 220),
		), 1)
	}
	assert.Equal(t, build(), build())
}

func TestBuildMeshGeneratorReuse(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 400, 300, 10)
	src := func() ObstacleSource {
		return obstacles(square(100, 80, 180, 160))
	}
	first := g.BuildMesh(src(), 0)
	second := g.BuildMesh(src(), 0)
	assert.Equal(t, first, second)
}

func TestBuildMeshObstacleCoveringArea(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 100, 100, 10)
	mesh := g.BuildMesh(obstacles(square(-50, -50, 150, 150)), 0)
	assert.Empty(t, mesh)
}

func TestNewGeneratorValidation(t *testing.T) {
	base := Config{
		AreaLeftBound: 0, AreaTopBound: 0, AreaRightBound: 100, AreaBottomBound: 100,
		RasterizationCellSize: 10,
	}

	cfg := base
	cfg.AreaRightBound = -100
	_, err := NewGenerator(cfg)
	assert.ErrorIs(t, err, ErrInvalidBounds)

	cfg = base
	cfg.RasterizationCellSize = 0
	_, err = NewGenerator(cfg)
	assert.ErrorIs(t, err, ErrInvalidCellSize)

	cfg = base
	cfg.IsometricRatio = -1
	_, err = NewGenerator(cfg)
	assert.ErrorIs(t, err, ErrInvalidIsometricRatio)

	cfg = base
	cfg.MaxVerticesPerPolygon = 2
	_, err = NewGenerator(cfg)
	assert.ErrorIs(t, err, ErrInvalidVertexCap)
}
