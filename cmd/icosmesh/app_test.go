package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/icosmesh/pkg/export"
	"github.com/chazu/icosmesh/pkg/kernel"
)

func quietApp() *App {
	return NewApp(log.New(io.Discard, "", 0))
}

func defaultConfig() Config {
	return Config{Name: "sphere", Subdivisions: -1, Format: "json", Out: "-"}
}

// TestE2EPlanetsExample exercises the full pipeline: script -> engine ->
// scene -> tessellate -> meshes.
func TestE2EPlanetsExample(t *testing.T) {
	cfg := defaultConfig()
	cfg.Script = filepath.Join("..", "..", "examples", "planets.icos")

	meshes, err := quietApp().Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	wantNames := []string{"planet", "moon", "ground"}
	if len(meshes) != len(wantNames) {
		t.Fatalf("expected %d meshes, got %d", len(wantNames), len(meshes))
	}
	for i, m := range meshes {
		if m.Name != wantNames[i] {
			t.Errorf("mesh %d: name = %q, want %q", i, m.Name, wantNames[i])
		}
		if m.IsEmpty() || m.TriangleCount() == 0 {
			t.Errorf("mesh %q is empty", m.Name)
		}
		if len(m.TexCoords) != 2*m.VertexCount() {
			t.Errorf("mesh %q: %d texcoords for %d vertices", m.Name, len(m.TexCoords), m.VertexCount())
		}
		if len(m.Normals) != 3*m.VertexCount() {
			t.Errorf("mesh %q: %d normals for %d vertices", m.Name, len(m.Normals), m.VertexCount())
		}
	}

	if got := meshes[0].TriangleCount(); got != 20*256 {
		t.Errorf("planet: %d triangles, want %d", got, 20*256)
	}
	if got := meshes[2].VertexCount(); got != 4 {
		t.Errorf("ground: %d vertices, want 4", got)
	}
}

func TestBuildWithoutScript(t *testing.T) {
	cfg := defaultConfig()
	cfg.Subdivisions = 1
	cfg.Radius = 2

	meshes, err := quietApp().Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].Name != "sphere" {
		t.Errorf("name = %q, want sphere", meshes[0].Name)
	}
	if meshes[0].TriangleCount() != 80 {
		t.Errorf("TriangleCount() = %d, want 80", meshes[0].TriangleCount())
	}
}

func TestBuildScriptErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.icos")
	if err := os.WriteFile(path, []byte(`(icosphere "a" :subdivisions 99)`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Script = path
	if _, err := quietApp().Build(context.Background(), cfg); err == nil {
		t.Fatal("expected error for invalid script")
	}

	cfg.Script = filepath.Join(dir, "missing.icos")
	if _, err := quietApp().Build(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing script")
	}
}

func TestRunJSONToStdout(t *testing.T) {
	cfg := defaultConfig()
	cfg.Subdivisions = 0

	var out bytes.Buffer
	if err := quietApp().Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var doc export.Document
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("stdout is not valid JSON: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Indices) != 60 {
		t.Errorf("unexpected document: %d meshes", len(doc.Meshes))
	}
}

func TestRunOBJToFile(t *testing.T) {
	cfg := defaultConfig()
	cfg.Subdivisions = 1
	cfg.Format = "obj"
	cfg.Out = filepath.Join(t.TempDir(), "sphere.obj")

	if err := quietApp().Run(context.Background(), cfg, io.Discard); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	data, err := os.ReadFile(cfg.Out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got := strings.Count(string(data), "\nf "); got != 80 {
		t.Errorf("OBJ has %d faces, want 80", got)
	}
}

func TestRunSTL(t *testing.T) {
	dir := t.TempDir()

	cfg := defaultConfig()
	cfg.Subdivisions = 1
	cfg.Format = "stl"
	cfg.Out = filepath.Join(dir, "sphere.stl")
	if err := quietApp().Run(context.Background(), cfg, io.Discard); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(cfg.Out); err != nil {
		t.Errorf("expected STL file: %v", err)
	}

	cfg.Script = filepath.Join("..", "..", "examples", "planets.icos")
	cfg.Out = filepath.Join(dir, "scene")
	if err := quietApp().Run(context.Background(), cfg, io.Discard); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, name := range []string{"planet", "moon", "ground"} {
		if _, err := os.Stat(filepath.Join(cfg.Out, name+".stl")); err != nil {
			t.Errorf("expected %s.stl: %v", name, err)
		}
	}
}

func TestRunSTLNeedsPath(t *testing.T) {
	cfg := defaultConfig()
	cfg.Format = "stl"
	if err := quietApp().Run(context.Background(), cfg, io.Discard); err == nil {
		t.Error("expected error writing STL to stdout")
	}
}

func TestRunUnknownFormat(t *testing.T) {
	cfg := defaultConfig()
	cfg.Format = "ply"
	if err := quietApp().Run(context.Background(), cfg, io.Discard); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := defaultConfig()
	cfg.Script = filepath.Join("..", "..", "examples", "planets.icos")
	if _, err := quietApp().Build(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestWriteFileRemovesPartialOutput(t *testing.T) {
	broken := &kernel.Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 7},
		Name:      "broken",
	}
	path := filepath.Join(t.TempDir(), "out.obj")

	if err := writeFile(path, []*kernel.Mesh{broken}, export.WriteOBJ); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial output left at %s (stat error: %v)", path, err)
	}
}

func TestWriteFileKeepsCompleteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	write := func(w io.Writer, meshes []*kernel.Mesh) error {
		_, err := io.WriteString(w, "{}")
		return err
	}

	if err := writeFile(path, nil, write); err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "{}" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
}
