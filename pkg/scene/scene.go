// Package scene describes the set of meshes a run should produce.
// A scene is built by the script engine (or directly by the CLI) and
// consumed read-only by the tessellator.
package scene

import (
	"github.com/chazu/icosmesh/pkg/icosphere"
	"github.com/chazu/icosmesh/pkg/vertexset"
)

// DefaultTolerance is the largest allowed distance between a generated
// sphere vertex and the reference surface, relative to the radius.
const DefaultTolerance = 1e-5

// Defaults contains scene-wide settings applied to nodes that leave them unset.
type Defaults struct {
	Subdivisions int     `json:"subdivisions"`
	Radius       float64 `json:"radius"`
	Tolerance    float64 `json:"tolerance"`
}

// DefaultDefaults returns the settings a fresh scene starts with.
func DefaultDefaults() Defaults {
	opts := icosphere.DefaultOptions()
	return Defaults{
		Subdivisions: opts.Subdivisions,
		Radius:       opts.Radius,
		Tolerance:    DefaultTolerance,
	}
}

// NodeKind enumerates the kinds of mesh a node produces.
type NodeKind int

const (
	NodeIcosphere NodeKind = iota // subdivided icosahedron
	NodePolyMesh                  // explicit triangle list
)

func (k NodeKind) String() string {
	switch k {
	case NodeIcosphere:
		return "icosphere"
	case NodePolyMesh:
		return "polymesh"
	default:
		return "unknown"
	}
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// IcosphereData holds the options of an icosphere node. A nil field takes
// the scene default.
type IcosphereData struct {
	Subdivisions *int     `json:"subdivisions,omitempty"`
	Radius       *float64 `json:"radius,omitempty"`
	Roughness    float64  `json:"roughness,omitempty"`
	Seed         int64    `json:"seed,omitempty"`
}

func (IcosphereData) nodeData() {}

// Options resolves d against the scene defaults.
func (d IcosphereData) Options(def Defaults) icosphere.Options {
	opts := icosphere.Options{
		Subdivisions: def.Subdivisions,
		Radius:       def.Radius,
		Roughness:    d.Roughness,
		Seed:         d.Seed,
	}
	if d.Subdivisions != nil {
		opts.Subdivisions = *d.Subdivisions
	}
	if d.Radius != nil {
		opts.Radius = *d.Radius
	}
	return opts
}

// Triangle is three corners wound counter-clockwise.
type Triangle [3]vertexset.Vertex

// PolyMeshData holds an explicit triangle soup whose shared corners are
// collapsed when the mesh is built.
type PolyMeshData struct {
	Triangles []Triangle `json:"triangles"`
}

func (PolyMeshData) nodeData() {}

// Node is a single mesh to produce.
type Node struct {
	Name string   `json:"name"`
	Kind NodeKind `json:"kind"`
	Data NodeData `json:"data"`
}

// Scene is the ordered list of meshes to produce.
type Scene struct {
	Nodes     []*Node        `json:"nodes"`
	NameIndex map[string]int `json:"name_index"`
	Defaults  Defaults       `json:"defaults"`
}

// New creates an empty Scene with default settings.
func New() *Scene {
	return &Scene{
		NameIndex: make(map[string]int),
		Defaults:  DefaultDefaults(),
	}
}

// AddNode appends a node. It does not check for duplicate names; Validate
// reports them.
func (s *Scene) AddNode(n *Node) {
	if _, ok := s.NameIndex[n.Name]; !ok && n.Name != "" {
		s.NameIndex[n.Name] = len(s.Nodes)
	}
	s.Nodes = append(s.Nodes, n)
}

// Lookup returns the first node with the given name, or nil.
func (s *Scene) Lookup(name string) *Node {
	i, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[i]
}

// NodeCount returns the number of nodes in the scene.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}
