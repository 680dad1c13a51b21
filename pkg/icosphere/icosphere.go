// Package icosphere generates geodesic spheres by recursively subdividing a
// regular icosahedron. Shared edge vertices are collapsed through a
// vertexset.Set so the result is a compact indexed mesh with equirectangular
// texture coordinates.
package icosphere

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/icosmesh/pkg/kernel"
	"github.com/chazu/icosmesh/pkg/vertexset"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxSubdivisions bounds the recursion depth. Level 8 already yields
// 1,310,720 triangles.
const MaxSubdivisions = 8

// ErrInvalidOptions is returned by Generate for unusable options.
var ErrInvalidOptions = errors.New("icosphere: invalid options")

// Options controls sphere generation. A non-zero Roughness displaces each
// vertex radially by up to Roughness*Radius using seeded simplex noise.
type Options struct {
	Subdivisions int     `json:"subdivisions"`
	Radius       float64 `json:"radius"`
	Roughness    float64 `json:"roughness,omitempty"`
	Seed         int64   `json:"seed,omitempty"`
}

// DefaultOptions returns a unit sphere at subdivision level 3.
func DefaultOptions() Options {
	return Options{Subdivisions: 3, Radius: 1}
}

// Validate checks that the options describe a sphere Generate can build.
func (o Options) Validate() error {
	if o.Subdivisions < 0 || o.Subdivisions > MaxSubdivisions {
		return fmt.Errorf("%w: subdivisions %d not in [0, %d]", ErrInvalidOptions, o.Subdivisions, MaxSubdivisions)
	}
	if !(o.Radius > 0) || math.IsInf(o.Radius, 0) {
		return fmt.Errorf("%w: radius %g must be positive and finite", ErrInvalidOptions, o.Radius)
	}
	if !(o.Roughness >= 0 && o.Roughness < 1) {
		return fmt.Errorf("%w: roughness %g not in [0, 1)", ErrInvalidOptions, o.Roughness)
	}
	return nil
}

// TriangleCount returns the number of triangles Generate produces.
func (o Options) TriangleCount() int {
	return 20 << (2 * o.Subdivisions)
}

// PositionCount returns the number of distinct positions on the sphere.
// Seam and pole vertices are duplicated with different texture coordinates,
// so the mesh vertex count is at least this.
func (o Options) PositionCount() int {
	return 10<<(2*o.Subdivisions) + 2
}

// Generate builds the sphere described by opts.
func Generate(name string, opts Options) (*kernel.Mesh, error) {
	m, _, err := generate(name, opts)
	return m, err
}

// generate also returns the vertex set so tests can inspect it.
func generate(name string, opts Options) (*kernel.Mesh, *vertexset.Set, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	faces := baseFaces()
	for i := 0; i < opts.Subdivisions; i++ {
		faces = subdivide(faces)
	}

	place := func(p mgl64.Vec3) mgl64.Vec3 { return p.Mul(opts.Radius) }
	if opts.Roughness > 0 {
		t := newTerrain(opts.Seed, opts.Roughness)
		place = func(p mgl64.Vec3) mgl64.Vec3 { return t.displace(p, opts.Radius) }
	}

	set := vertexset.NewWithCapacity(opts.PositionCount() + opts.PositionCount()/8)
	indices := make([]int, 0, 3*len(faces))
	for _, f := range faces {
		uv := texCoords(f)
		for j := 0; j < 3; j++ {
			v := vertexset.Vertex{
				Position: place(f[j]),
				TexCoord: uv[j],
			}
			idx, err := set.IndexForVertex(v)
			if err != nil {
				return nil, nil, fmt.Errorf("icosphere: %q: %w", name, err)
			}
			indices = append(indices, idx)
		}
	}

	m, err := kernel.FromSet(name, set, indices)
	if err != nil {
		return nil, nil, err
	}

	if opts.Roughness > 0 {
		kernel.ComputeNormals(m)
		return m, set, nil
	}

	// On a sphere centred at the origin the normal is the unit position.
	m.Normals = make([]float32, len(m.Positions))
	for i := 0; i < set.Count(); i++ {
		v, err := set.VertexAtIndex(i)
		if err != nil {
			return nil, nil, err
		}
		n := v.Position.Normalize()
		m.Normals[3*i] = float32(n[0])
		m.Normals[3*i+1] = float32(n[1])
		m.Normals[3*i+2] = float32(n[2])
	}
	return m, set, nil
}

// face is a triangle of unit vectors, wound counter-clockwise when seen
// from outside.
type face [3]mgl64.Vec3

// baseFaces returns the 20 faces of a regular icosahedron inscribed in the
// unit sphere.
func baseFaces() []face {
	t := (1 + math.Sqrt(5)) / 2
	raw := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	verts := make([]mgl64.Vec3, len(raw))
	for i, v := range raw {
		verts[i] = v.Normalize()
	}

	tris := [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	faces := make([]face, len(tris))
	for i, tri := range tris {
		f := face{verts[tri[0]], verts[tri[1]], verts[tri[2]]}
		n := f[1].Sub(f[0]).Cross(f[2].Sub(f[0]))
		if n.Dot(f[0].Add(f[1]).Add(f[2])) < 0 {
			f[1], f[2] = f[2], f[1]
		}
		faces[i] = f
	}
	return faces
}

// subdivide splits every face into four.
//
//	     a
//	    / \
//	  ca---ab
//	  / \ / \
//	 c---bc--b
func subdivide(faces []face) []face {
	out := make([]face, 0, 4*len(faces))
	for _, f := range faces {
		a, b, c := f[0], f[1], f[2]
		ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
		out = append(out,
			face{a, ab, ca},
			face{ab, b, bc},
			face{ca, bc, c},
			face{ab, bc, ca},
		)
	}
	return out
}

// midpoint projects the chord midpoint of a and b back onto the unit sphere.
// Float addition is commutative, so both triangles sharing edge ab compute a
// bit-identical point regardless of winding.
func midpoint(a, b mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b).Normalize()
}

// texCoords maps the corners of f to equirectangular coordinates, with u
// wrapping around the Y axis and v running from 0 at +Y to 1 at -Y.
func texCoords(f face) [3]mgl64.Vec2 {
	var uv [3]mgl64.Vec2
	var pole [3]bool
	for j, p := range f {
		uv[j] = mgl64.Vec2{longitude(p), math.Acos(clamp(p[1], -1, 1)) / math.Pi}
		pole[j] = p[0] == 0 && p[2] == 0
	}

	// A face straddling the seam gets its low side shifted past u=1 so the
	// texture does not wrap backwards across the whole map.
	lo, hi := math.Inf(1), math.Inf(-1)
	for j := range uv {
		if pole[j] {
			continue
		}
		lo = math.Min(lo, uv[j][0])
		hi = math.Max(hi, uv[j][0])
	}
	if hi-lo > 0.5 {
		for j := range uv {
			if !pole[j] && uv[j][0] < 0.5 {
				uv[j][0]++
			}
		}
	}

	// Longitude is undefined at a pole; take the mean of the other corners.
	for j := range uv {
		if !pole[j] {
			continue
		}
		var sum float64
		var n int
		for k := range uv {
			if !pole[k] {
				sum += uv[k][0]
				n++
			}
		}
		if n > 0 {
			uv[j][0] = sum / float64(n)
		}
	}
	return uv
}

// longitude returns u in [0, 1).
func longitude(p mgl64.Vec3) float64 {
	u := math.Atan2(p[2], p[0])/(2*math.Pi) + 0.5
	if u >= 1 {
		u -= 1
	}
	return u
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
