// Command navmeshgen builds a navigation mesh for a YAML scene file and
// prints the resulting polygons as YAML.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/D8H/NavMeshGenerator/internal/logger"
	"github.com/D8H/NavMeshGenerator/navmesh"
)

func main() {
	scenePath := flag.String("scene", "", "path to the YAML scene file")
	outPath := flag.String("o", "", "write the mesh to this file instead of stdout")
	logLevel := flag.String("log-level", "", "override the scene's log level")
	logFile := flag.String("log-file", "", "override the scene's log file")
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "usage: navmeshgen -scene <file.yaml> [-o <out.yaml>]")
		os.Exit(2)
	}

	if err := run(*scenePath, *outPath, *logLevel, *logFile); err != nil {
		fmt.Fprintln(os.Stderr, "navmeshgen:", err)
		os.Exit(1)
	}
}

func run(scenePath, outPath, logLevel, logFile string) error {
	scene, err := LoadScene(scenePath)
	if err != nil {
		return err
	}

	level := scene.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	file := scene.Logging.LogFile
	if logFile != "" {
		file = logFile
	}
	log := logger.New(level, file)
	defer log.Sync()

	gen, err := navmesh.NewGenerator(navmesh.Config{
		AreaLeftBound:         scene.Area.Left,
		AreaTopBound:          scene.Area.Top,
		AreaRightBound:        scene.Area.Right,
		AreaBottomBound:       scene.Area.Bottom,
		RasterizationCellSize: scene.CellSize,
		IsometricRatio:        scene.IsometricRatio,
		MaxVerticesPerPolygon: scene.MaxVerticesPerPolygon,
		Logger:                log,
	})
	if err != nil {
		return err
	}

	mesh := gen.BuildMesh(scene.ObstacleSource(), scene.ObstacleCellPadding)

	// Keep the output a plain list of [x, y] rings.
	polys := make([][][2]float64, len(mesh))
	for i, poly := range mesh {
		ring := make([][2]float64, len(poly))
		for j, v := range poly {
			ring[j] = [2]float64{v.X(), v.Y()}
		}
		polys[i] = ring
	}

	data, err := yaml.Marshal(polys)
	if err != nil {
		return fmt.Errorf("encoding mesh: %w", err)
	}

	if outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
