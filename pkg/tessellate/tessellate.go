// Package tessellate turns a scene into triangle meshes. One mesh is
// produced per node; nodes are built concurrently, each with its own
// vertex set.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chazu/icosmesh/pkg/icosphere"
	"github.com/chazu/icosmesh/pkg/kernel"
	"github.com/chazu/icosmesh/pkg/scene"
	"github.com/chazu/icosmesh/pkg/vertexset"
	"golang.org/x/sync/errgroup"
)

// SphereFunc builds the reference surface a generated sphere of the given
// radius is checked against. sdfx.Sphere satisfies it.
type SphereFunc func(radius float64) (kernel.Surface, error)

// Tessellate validates the scene and builds one mesh per node, in node
// order. If sphere is non-nil, every icosphere is checked against it and a
// vertex further than (Defaults.Tolerance+roughness)*radius from the surface
// is an error. The tessellator is read-only and never mutates the scene.
func Tessellate(ctx context.Context, s *scene.Scene, sphere SphereFunc) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	for _, f := range scene.Validate(s) {
		if f.Severity == scene.SeverityError {
			return nil, fmt.Errorf("tessellate: invalid scene: %w", f)
		}
	}

	meshes := make([]*kernel.Mesh, len(s.Nodes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, n := range s.Nodes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := buildNode(s, n, sphere)
			if err != nil {
				return fmt.Errorf("tessellate: node %q: %w", n.Name, err)
			}
			meshes[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

// buildNode creates the mesh for a single node.
func buildNode(s *scene.Scene, n *scene.Node, sphere SphereFunc) (*kernel.Mesh, error) {
	switch data := n.Data.(type) {
	case scene.IcosphereData:
		return handleIcosphere(s, n, data, sphere)
	case scene.PolyMeshData:
		return handlePolyMesh(n, data)
	default:
		return nil, fmt.Errorf("unsupported data type %T", n.Data)
	}
}

// handleIcosphere generates the sphere and checks it against the reference.
func handleIcosphere(s *scene.Scene, n *scene.Node, data scene.IcosphereData, sphere SphereFunc) (*kernel.Mesh, error) {
	opts := data.Options(s.Defaults)
	m, err := icosphere.Generate(n.Name, opts)
	if err != nil {
		return nil, err
	}
	if sphere == nil {
		return m, nil
	}

	ref, err := sphere(opts.Radius)
	if err != nil {
		return nil, err
	}
	limit := (s.Defaults.Tolerance + opts.Roughness) * opts.Radius
	if dev := kernel.MaxDeviation(ref, m); dev > limit {
		return nil, fmt.Errorf("surface deviation %g exceeds %g", dev, limit)
	}
	return m, nil
}

// handlePolyMesh streams the triangle corners through a vertex set so
// shared corners collapse to one index.
func handlePolyMesh(n *scene.Node, data scene.PolyMeshData) (*kernel.Mesh, error) {
	set := vertexset.NewWithCapacity(len(data.Triangles))
	indices := make([]int, 0, 3*len(data.Triangles))
	for t, tri := range data.Triangles {
		for _, v := range tri {
			idx, err := set.IndexForVertex(v)
			if err != nil {
				return nil, fmt.Errorf("triangle %d: %w", t, err)
			}
			indices = append(indices, idx)
		}
	}

	m, err := kernel.FromSet(n.Name, set, indices)
	if err != nil {
		return nil, err
	}
	kernel.ComputeNormals(m)
	return m, nil
}
