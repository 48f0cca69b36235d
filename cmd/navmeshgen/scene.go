package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/D8H/NavMeshGenerator/common"
	"github.com/D8H/NavMeshGenerator/navmesh"
)

// Scene describes one mesh build: the area, the grid parameters and the
// obstacle polygons, plus logging settings.
type Scene struct {
	Area struct {
		Left   float64 `yaml:"left"`
		Top    float64 `yaml:"top"`
		Right  float64 `yaml:"right"`
		Bottom float64 `yaml:"bottom"`
	} `yaml:"area"`

	CellSize              float64 `yaml:"cell_size"`
	IsometricRatio        float64 `yaml:"isometric_ratio"`
	MaxVerticesPerPolygon int     `yaml:"max_vertices_per_polygon"`
	ObstacleCellPadding   int     `yaml:"obstacle_cell_padding"`

	// Obstacles are polygons given as [x, y] pairs.
	Obstacles [][][2]float64 `yaml:"obstacles"`

	Logging struct {
		Level   string `yaml:"level"`
		LogFile string `yaml:"log_file"`
	} `yaml:"logging"`
}

// LoadScene reads and parses a YAML scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	return &s, nil
}

// ObstacleSource adapts the scene's obstacle polygons for BuildMesh.
func (s *Scene) ObstacleSource() navmesh.ObstacleSource {
	polys := make([][]common.Vec2, len(s.Obstacles))
	for i, o := range s.Obstacles {
		poly := make([]common.Vec2, len(o))
		for j, p := range o {
			poly[j] = common.Vec2{p[0], p[1]}
		}
		polys[i] = poly
	}
	return navmesh.ObstaclesFromSlices(polys)
}
