package vertexset

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned by VertexAtIndex for an index outside [0, Count()).
	ErrOutOfRange = errors.New("vertexset: index out of range")

	// ErrMalformedVertex is returned by IndexForVertex for a vertex with a
	// NaN or infinite component.
	ErrMalformedVertex = errors.New("vertexset: malformed vertex")
)

// Set maps distinct vertices to dense indices in order of first insertion.
// It grows monotonically and is not safe for concurrent use; concurrent
// generators should use one Set per worker.
type Set struct {
	indices  map[Vertex]int
	vertices []Vertex
}

// New returns an empty Set.
func New() *Set {
	return &Set{indices: make(map[Vertex]int)}
}

// NewWithCapacity returns an empty Set sized for n distinct vertices.
func NewWithCapacity(n int) *Set {
	if n < 0 {
		n = 0
	}
	return &Set{
		indices:  make(map[Vertex]int, n),
		vertices: make([]Vertex, 0, n),
	}
}

// IndexForVertex returns the index of v, inserting it with the next free
// index if it has not been seen before. A malformed vertex is rejected
// without modifying the set.
func (s *Set) IndexForVertex(v Vertex) (int, error) {
	if i, ok := s.indices[v]; ok {
		return i, nil
	}
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrMalformedVertex, v)
	}
	i := len(s.vertices)
	s.vertices = append(s.vertices, v)
	s.indices[v] = i
	return i, nil
}

// VertexAtIndex returns the vertex that was assigned index i.
func (s *Set) VertexAtIndex(i int) (Vertex, error) {
	if i < 0 || i >= len(s.vertices) {
		return Vertex{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(s.vertices))
	}
	return s.vertices[i], nil
}

// Count returns the number of distinct vertices inserted so far.
func (s *Set) Count() int {
	return len(s.vertices)
}

// PositionArray returns a new slice of 3*Count() numbers holding the x, y, z
// of each vertex in index order.
func (s *Set) PositionArray() []float64 {
	out := make([]float64, 0, 3*len(s.vertices))
	for _, v := range s.vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
	}
	return out
}

// TexCoordArray returns a new slice of 2*Count() numbers holding the u, v
// of each vertex in index order.
func (s *Set) TexCoordArray() []float64 {
	out := make([]float64, 0, 2*len(s.vertices))
	for _, v := range s.vertices {
		out = append(out, v.TexCoord[0], v.TexCoord[1])
	}
	return out
}
