// Package sdfx implements kernel.Surface and STL export using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/icosmesh/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface check.
var _ kernel.Surface = (*sdfxSurface)(nil)

// sdfxSurface wraps an sdf.SDF3 to implement kernel.Surface.
type sdfxSurface struct {
	s sdf.SDF3
}

// Distance evaluates the signed distance field at p.
func (s *sdfxSurface) Distance(p mgl64.Vec3) float64 {
	return s.s.Evaluate(toVec(p))
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSurface) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Sphere returns a sphere of the given radius centred on the origin.
func Sphere(radius float64) (kernel.Surface, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere radius %g: %w", radius, err)
	}
	return &sdfxSurface{s: s}, nil
}

// ToTriangles converts an indexed mesh to the flat triangle soup sdfx
// renderers consume.
func ToTriangles(m *kernel.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		tri := &sdf.Triangle3{}
		for j := 0; j < 3; j++ {
			tri[j] = toVec(m.Position(int(m.Indices[3*t+j])))
		}
		out = append(out, tri)
	}
	return out
}

// SaveSTL writes m to path as a binary STL file. Texture coordinates are
// dropped since STL carries geometry only.
func SaveSTL(path string, m *kernel.Mesh) error {
	if m.TriangleCount() == 0 {
		return fmt.Errorf("sdfx: mesh %q has no triangles", m.Name)
	}
	if err := render.SaveSTL(path, ToTriangles(m)); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}

func toVec(p mgl64.Vec3) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
