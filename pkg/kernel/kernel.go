// Package kernel defines the render-ready mesh type and the abstract
// reference-surface interface that generated meshes are checked against.
// Implementations (sdfx) provide the surfaces behind this interface.
package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Surface is an implicit reference solid.
// Implementations wrap their internal representation.
type Surface interface {
	// Distance returns the signed distance from p to the surface:
	// negative inside, zero on the surface, positive outside.
	Distance(p mgl64.Vec3) float64

	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// MaxDeviation returns the largest absolute distance between a vertex of m
// and the surface s. An empty mesh has zero deviation.
func MaxDeviation(s Surface, m *Mesh) float64 {
	var worst float64
	for i := 0; i < m.VertexCount(); i++ {
		d := math.Abs(s.Distance(m.Position(i)))
		if d > worst {
			worst = d
		}
	}
	return worst
}
