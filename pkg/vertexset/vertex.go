// Package vertexset deduplicates mesh vertices during procedural generation.
// A Set assigns each distinct vertex a dense, stable integer index in order
// of first insertion and exports the accumulated vertices as flat arrays
// ready for a vertex buffer.
//
// Vertex identity is exact equality on all five components. Generators that
// compute the same geometric point along different arithmetic paths must
// produce bit-identical results, otherwise the point is stored twice.
package vertexset

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a position in 3-D space paired with a 2-D texture coordinate.
// It is a comparable value: two vertices are equal iff all five components
// compare equal with ==.
type Vertex struct {
	Position mgl64.Vec3 `json:"position"`
	TexCoord mgl64.Vec2 `json:"texcoord"`
}

// NewVertex builds a vertex from its five components.
func NewVertex(x, y, z, u, v float64) Vertex {
	return Vertex{
		Position: mgl64.Vec3{x, y, z},
		TexCoord: mgl64.Vec2{u, v},
	}
}

// Valid reports whether every component is finite.
func (v Vertex) Valid() bool {
	for _, c := range v.Position {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	for _, c := range v.TexCoord {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vertex) String() string {
	return fmt.Sprintf("(%g %g %g | %g %g)",
		v.Position[0], v.Position[1], v.Position[2], v.TexCoord[0], v.TexCoord[1])
}
