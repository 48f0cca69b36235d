package navmesh

import (
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/D8H/NavMeshGenerator/common"
)

// defaultMaxVerticesPerPolygon caps merged polygons when the caller
// does not choose a limit.
const defaultMaxVerticesPerPolygon = 16

var (
	ErrInvalidBounds         = errors.New("area bounds are inverted or empty")
	ErrInvalidCellSize       = errors.New("rasterization cell size must be positive")
	ErrInvalidIsometricRatio = errors.New("isometric ratio must be positive")
	ErrInvalidVertexCap      = errors.New("polygons need at least 3 vertices")
)

// Obstacle is a lazy sequence of world-space vertices describing one
// obstacle polygon, in either winding.
type Obstacle = iter.Seq[common.Vec2]

// ObstacleSource is a lazy sequence of obstacles.
type ObstacleSource = iter.Seq[Obstacle]

// Polygon is a convex, clockwise polygon in world coordinates.
type Polygon = []common.Vec2

// Config carries the constructor parameters of a Generator.
type Config struct {
	// World-space area to mesh; left < right and top < bottom.
	AreaLeftBound   float64
	AreaTopBound    float64
	AreaRightBound  float64
	AreaBottomBound float64

	// RasterizationCellSize is the cell edge in world units.
	RasterizationCellSize float64

	// IsometricRatio squashes the grid vertically so cells appear
	// square on screen for isometric 2D. Zero means 1 (orthogonal).
	IsometricRatio float64

	// MaxVerticesPerPolygon caps merged polygons. Zero means 16.
	MaxVerticesPerPolygon int

	// Logger receives diagnostics. Nil disables them.
	Logger *zap.Logger
}

// BuildStats summarizes the last BuildMesh call.
type BuildStats struct {
	ObstacleCells         int
	RegionCount           int
	ContourCount          int
	DiscardedContours     int
	TriangulationFailures int
	PolygonCount          int
}

// Generator builds navigation meshes over one grid. A Generator may be
// reused for any number of sequential builds; it must not be shared
// across concurrent calls because the pipeline mutates cells in place.
type Generator struct {
	grid                  *Grid
	isometricRatio        float64
	maxVerticesPerPolygon int
	log                   *zap.Logger
	stats                 BuildStats

	// Working buffers, reused across builds.
	obstacleVerts []common.Vec2
	scanNodes     []int
	pending       []int
	dirty         []dirtyEntry
	floodQueue    []int
	rawPoints     []ContourPoint
	simplified    []simplifiedVertex
	cycle         []cycleEntry
	triIndices    []int
	triEars       []bool
	tris          [][3]int
	mergePolys    [][]int
}

// NewGenerator validates the configuration and allocates the grid,
// sized so a one-cell obstacle ring surrounds the area.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.AreaLeftBound >= cfg.AreaRightBound || cfg.AreaTopBound >= cfg.AreaBottomBound {
		return nil, fmt.Errorf("navmesh: left=%v right=%v top=%v bottom=%v: %w",
			cfg.AreaLeftBound, cfg.AreaRightBound, cfg.AreaTopBound, cfg.AreaBottomBound,
			ErrInvalidBounds)
	}
	if cfg.RasterizationCellSize <= 0 {
		return nil, fmt.Errorf("navmesh: cell size %v: %w",
			cfg.RasterizationCellSize, ErrInvalidCellSize)
	}
	iso := cfg.IsometricRatio
	if iso == 0 {
		iso = 1
	}
	if iso < 0 {
		return nil, fmt.Errorf("navmesh: isometric ratio %v: %w", iso, ErrInvalidIsometricRatio)
	}
	nvp := cfg.MaxVerticesPerPolygon
	if nvp == 0 {
		nvp = defaultMaxVerticesPerPolygon
	}
	if nvp < 3 {
		return nil, fmt.Errorf("navmesh: vertex cap %d: %w", nvp, ErrInvalidVertexCap)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cellWidth := cfg.RasterizationCellSize
	cellHeight := cfg.RasterizationCellSize / iso
	return &Generator{
		grid: NewGrid(cfg.AreaLeftBound, cfg.AreaTopBound,
			cfg.AreaRightBound, cfg.AreaBottomBound, cellWidth, cellHeight),
		isometricRatio:        iso,
		maxVerticesPerPolygon: nvp,
		log:                   log,
	}, nil
}

// Grid exposes the generator's grid, mostly for inspection and tests.
func (g *Generator) Grid() *Grid {
	return g.grid
}

// Stats returns the counters of the last build.
func (g *Generator) Stats() BuildStats {
	return g.stats
}

// BuildMesh runs the full pipeline over the given obstacles and returns
// convex clockwise polygons covering the walkable area. Obstacles are
// dilated by obstacleCellPadding cells. Geometric degeneracies cost at
// most the affected contour; the rest of the mesh is still produced.
func (g *Generator) BuildMesh(obstacles ObstacleSource, obstacleCellPadding int) []Polygon {
	if obstacleCellPadding < 0 {
		obstacleCellPadding = 0
	}
	g.grid.Clear()
	g.stats = BuildStats{}

	g.rasterizeObstacles(obstacles)
	g.generateRegions(obstacleCellPadding)
	contours, byRegion := g.buildContours()
	g.filterCommonVertices(contours, byRegion)
	gridPolys := g.buildPolygons(contours)

	out := make([]Polygon, 0, len(gridPolys))
	for _, p := range gridPolys {
		poly := make(Polygon, len(p))
		for i, pt := range p {
			w := g.grid.ConvertFromGridBasis(common.Vec2{float64(pt.X), float64(pt.Y)})
			poly[i] = common.Vec2{w.X(), w.Y() * g.isometricRatio}
		}
		out = append(out, poly)
	}
	g.stats.PolygonCount = len(out)
	g.log.Debug("navigation mesh built",
		zap.Int("obstacleCells", g.stats.ObstacleCells),
		zap.Int("regions", g.stats.RegionCount),
		zap.Int("contours", g.stats.ContourCount),
		zap.Int("discarded", g.stats.DiscardedContours),
		zap.Int("polygons", len(out)))
	return out
}

// ObstaclesFromSlices adapts in-memory polygons to the lazy obstacle
// sequences BuildMesh consumes.
func ObstaclesFromSlices(polygons [][]common.Vec2) ObstacleSource {
	return func(yield func(Obstacle) bool) {
		for _, poly := range polygons {
			p := poly
			obstacle := func(yield func(common.Vec2) bool) {
				for _, v := range p {
					if !yield(v) {
						return
					}
				}
			}
			if !yield(obstacle) {
				return
			}
		}
	}
}
