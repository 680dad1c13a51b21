// Command icosmesh generates geodesic sphere meshes with shared, indexed
// vertices and writes them as JSON, OBJ, or STL.
//
// Usage:
//
//	icosmesh -subdivisions 4 -radius 1 -format obj -out sphere.obj
//	icosmesh -script examples/planets.icos -format json
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
)

func main() {
	var cfg Config
	flag.StringVar(&cfg.Script, "script", "", "mesh script to evaluate")
	flag.StringVar(&cfg.Name, "name", "sphere", "mesh name when no script is given")
	flag.IntVar(&cfg.Subdivisions, "subdivisions", -1, "subdivision level (default: scene default)")
	flag.Float64Var(&cfg.Radius, "radius", 0, "sphere radius (default: scene default)")
	flag.Float64Var(&cfg.Tolerance, "tolerance", 0, "relative surface tolerance (default: scene default)")
	flag.StringVar(&cfg.Format, "format", "json", "output format: json, obj, or stl")
	flag.StringVar(&cfg.Out, "out", "-", "output path, - for stdout")
	flag.Parse()

	logger := log.New(os.Stderr, "icosmesh: ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewApp(logger).Run(ctx, cfg, os.Stdout); err != nil {
		logger.Printf("error: %v", err)
		stop()
		os.Exit(1)
	}
}
