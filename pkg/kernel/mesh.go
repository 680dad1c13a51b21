package kernel

import (
	"fmt"

	"github.com/chazu/icosmesh/pkg/vertexset"
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle mesh suitable for rendering.
// All arrays are flat: positions and normals have 3 floats per vertex,
// texCoords has 2 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Positions []float32 `json:"positions"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	TexCoords []float32 `json:"texcoords"` // [u0,v0, u1,v1, ...]
	Indices   []uint32  `json:"indices"`   // [i0,i1,i2, ...] triangles
	Name      string    `json:"name"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(m.Positions[3*i]),
		float64(m.Positions[3*i+1]),
		float64(m.Positions[3*i+2]),
	}
}

// FromSet builds a mesh from a filled vertex set and the triangle index list
// recorded against it. Every index must have been issued by set.
func FromSet(name string, set *vertexset.Set, indices []int) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("kernel: mesh %q: index count %d is not a multiple of 3", name, len(indices))
	}

	m := &Mesh{
		Positions: toFloat32(set.PositionArray()),
		TexCoords: toFloat32(set.TexCoordArray()),
		Indices:   make([]uint32, len(indices)),
		Name:      name,
	}
	for i, idx := range indices {
		if _, err := set.VertexAtIndex(idx); err != nil {
			return nil, fmt.Errorf("kernel: mesh %q: triangle %d: %w", name, i/3, err)
		}
		m.Indices[i] = uint32(idx)
	}
	return m, nil
}

// ComputeNormals fills m.Normals with area-weighted smooth vertex normals.
// Normals are accumulated per position, so vertices split only by texture
// coordinates (seams, poles) get the same normal. Vertices that belong to no
// triangle, or only to degenerate ones, get a zero normal.
func ComputeNormals(m *Mesh) {
	acc := make(map[mgl64.Vec3]mgl64.Vec3, m.VertexCount())
	for t := 0; t < m.TriangleCount(); t++ {
		a := m.Position(int(m.Indices[3*t]))
		b := m.Position(int(m.Indices[3*t+1]))
		c := m.Position(int(m.Indices[3*t+2]))
		// Unnormalized cross product weights by twice the triangle area.
		n := b.Sub(a).Cross(c.Sub(a))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}

	m.Normals = make([]float32, 0, 3*m.VertexCount())
	for i := 0; i < m.VertexCount(); i++ {
		n := acc[m.Position(i)]
		if n.Len() > 0 {
			n = n.Normalize()
		}
		m.Normals = append(m.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}
