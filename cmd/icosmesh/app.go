package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/icosmesh/pkg/engine"
	"github.com/chazu/icosmesh/pkg/export"
	"github.com/chazu/icosmesh/pkg/kernel"
	"github.com/chazu/icosmesh/pkg/kernel/sdfx"
	"github.com/chazu/icosmesh/pkg/scene"
	"github.com/chazu/icosmesh/pkg/tessellate"
)

// Config holds the command-line settings.
type Config struct {
	Script       string  // mesh script path; empty means a single sphere from flags
	Name         string  // mesh name when no script is given
	Subdivisions int     // -1 keeps the scene default
	Radius       float64 // 0 keeps the scene default
	Tolerance    float64 // 0 keeps the scene default
	Format       string
	Out          string // output path; "-" or empty writes to stdout
}

// App runs the script -> scene -> meshes -> file pipeline.
type App struct {
	engine *engine.Engine
	sphere tessellate.SphereFunc
	logger *log.Logger
}

// NewApp creates a new App with an engine and the sdfx reference surface.
func NewApp(logger *log.Logger) *App {
	return &App{
		engine: engine.NewEngine(),
		sphere: sdfx.Sphere,
		logger: logger,
	}
}

// Build produces the meshes described by cfg.
func (a *App) Build(ctx context.Context, cfg Config) ([]*kernel.Mesh, error) {
	s, err := a.loadScene(ctx, cfg)
	if err != nil {
		return nil, err
	}
	applyOverrides(s, cfg)

	for _, f := range scene.Validate(s) {
		if f.Severity == scene.SeverityWarning {
			a.logger.Printf("warning: %s", f.Message)
		}
	}

	meshes, err := tessellate.Tessellate(ctx, s, a.sphere)
	if err != nil {
		return nil, err
	}
	for _, m := range meshes {
		a.logger.Printf("mesh %q: %d vertices, %d triangles", m.Name, m.VertexCount(), m.TriangleCount())
	}
	return meshes, nil
}

// Run builds the meshes and writes them in the configured format.
func (a *App) Run(ctx context.Context, cfg Config, stdout io.Writer) error {
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	meshes, err := a.Build(ctx, cfg)
	if err != nil {
		return err
	}

	if format == export.FormatSTL {
		return a.writeSTL(cfg.Out, meshes)
	}

	write := export.WriteJSON
	if format == export.FormatOBJ {
		write = export.WriteOBJ
	}

	if cfg.Out == "" || cfg.Out == "-" {
		return write(stdout, meshes)
	}
	if err := writeFile(cfg.Out, meshes, write); err != nil {
		return err
	}
	a.logger.Printf("wrote %s", cfg.Out)
	return nil
}

// writeFile writes meshes to path, removing the file again if any part of
// the write fails.
func writeFile(path string, meshes []*kernel.Mesh, write func(io.Writer, []*kernel.Mesh) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, meshes); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// loadScene evaluates the script, or builds a one-sphere scene when no
// script is configured.
func (a *App) loadScene(ctx context.Context, cfg Config) (*scene.Scene, error) {
	if cfg.Script == "" {
		s := scene.New()
		s.AddNode(&scene.Node{Name: cfg.Name, Kind: scene.NodeIcosphere, Data: scene.IcosphereData{}})
		return s, nil
	}

	source, err := os.ReadFile(cfg.Script)
	if err != nil {
		return nil, err
	}
	s, evalErrs, err := a.engine.Evaluate(ctx, string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Script, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", cfg.Script, strings.Join(msgs, "; "))
	}
	return s, nil
}

// applyOverrides lets flags win over script defaults.
func applyOverrides(s *scene.Scene, cfg Config) {
	if cfg.Subdivisions >= 0 {
		s.Defaults.Subdivisions = cfg.Subdivisions
	}
	if cfg.Radius != 0 {
		s.Defaults.Radius = cfg.Radius
	}
	if cfg.Tolerance != 0 {
		s.Defaults.Tolerance = cfg.Tolerance
	}
}

// writeSTL writes one STL file per mesh. With a single mesh the output path
// is used as given; otherwise each file is named after its mesh inside the
// output directory.
func (a *App) writeSTL(out string, meshes []*kernel.Mesh) error {
	if out == "" || out == "-" {
		return fmt.Errorf("stl output needs a file path (-out)")
	}
	if len(meshes) == 1 {
		return sdfx.SaveSTL(out, meshes[0])
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for _, m := range meshes {
		path := filepath.Join(out, m.Name+".stl")
		if err := sdfx.SaveSTL(path, m); err != nil {
			return err
		}
		a.logger.Printf("wrote %s", path)
	}
	return nil
}
