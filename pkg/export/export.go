// Package export writes tessellated meshes to files for downstream tools.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/icosmesh/pkg/kernel"
)

// Format selects an output encoding.
type Format int

const (
	FormatJSON Format = iota // all meshes, flat arrays
	FormatOBJ                // Wavefront OBJ, one object per mesh
	FormatSTL                // binary STL, one file per mesh
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatOBJ:
		return "obj"
	case FormatSTL:
		return "stl"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat converts a name such as "obj" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "obj":
		return FormatOBJ, nil
	case "stl":
		return FormatSTL, nil
	}
	return 0, fmt.Errorf("export: unknown format %q, expected json, obj, or stl", name)
}

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON-serializable mesh format consumed by viewers.
type MeshData struct {
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	TexCoords []float32 `json:"texcoords"`
	Indices   []uint32  `json:"indices"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
}

// Document is the top-level JSON export.
type Document struct {
	Meshes []MeshData `json:"meshes"`
}

// WriteJSON writes all meshes as a single JSON document.
func WriteJSON(w io.Writer, meshes []*kernel.Mesh) error {
	doc := Document{Meshes: make([]MeshData, 0, len(meshes))}
	for i, m := range meshes {
		doc.Meshes = append(doc.Meshes, MeshData{
			Positions: nonNil(m.Positions),
			Normals:   nonNil(m.Normals),
			TexCoords: nonNil(m.TexCoords),
			Indices:   nonNil(m.Indices),
			Name:      m.Name,
			Color:     colorPalette[i%len(colorPalette)],
		})
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}

// nonNil makes absent attributes encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// WriteOBJ writes the meshes as Wavefront OBJ objects. OBJ indices are
// 1-based and global across the file, and v, vt and vn are counted
// separately, so each object's faces are offset by the lines of each kind
// written before it. Meshes without texture coordinates or normals write
// none of those lines.
func WriteOBJ(w io.Writer, meshes []*kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# icosmesh\n")

	base := objBase{v: 1, vt: 1, vn: 1}
	for _, m := range meshes {
		next, err := writeOBJObject(bw, m, base)
		if err != nil {
			return err
		}
		base = next
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: obj: %w", err)
	}
	return nil
}

// objBase holds the 1-based index the next v, vt and vn line will get.
type objBase struct {
	v, vt, vn int
}

// writeOBJObject writes one object and returns the bases for the next.
func writeOBJObject(bw *bufio.Writer, m *kernel.Mesh, base objBase) (objBase, error) {
	n := m.VertexCount()
	hasTex := len(m.TexCoords) == 2*n
	hasNorm := len(m.Normals) == 3*n

	fmt.Fprintf(bw, "o %s\n", objName(m.Name))
	for i := 0; i < n; i++ {
		fmt.Fprintf(bw, "v %g %g %g\n", m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2])
	}
	if hasTex {
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "vt %g %g\n", m.TexCoords[2*i], m.TexCoords[2*i+1])
		}
	}
	if hasNorm {
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "vn %g %g %g\n", m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2])
		}
	}

	for t := 0; t < m.TriangleCount(); t++ {
		bw.WriteString("f")
		for j := 0; j < 3; j++ {
			idx := int(m.Indices[3*t+j])
			if idx >= n {
				return base, fmt.Errorf("export: obj: mesh %q: index %d out of range", m.Name, idx)
			}
			v, vt, vn := base.v+idx, base.vt+idx, base.vn+idx
			switch {
			case hasTex && hasNorm:
				fmt.Fprintf(bw, " %d/%d/%d", v, vt, vn)
			case hasTex:
				fmt.Fprintf(bw, " %d/%d", v, vt)
			case hasNorm:
				fmt.Fprintf(bw, " %d//%d", v, vn)
			default:
				fmt.Fprintf(bw, " %d", v)
			}
		}
		bw.WriteString("\n")
	}

	next := base
	next.v += n
	if hasTex {
		next.vt += n
	}
	if hasNorm {
		next.vn += n
	}
	return next, nil
}

// objName replaces whitespace, which OBJ treats as a separator.
func objName(name string) string {
	if name == "" {
		return "mesh"
	}
	return strings.Join(strings.Fields(name), "_")
}
