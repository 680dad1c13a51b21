package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/icosmesh/pkg/scene"
	"github.com/chazu/icosmesh/pkg/vertexset"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites mesh script source before handing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keyword arguments need no global symbol registration.
//
//  2. Kebab-case to underscore: poly-mesh -> poly_mesh, since zygomys reads a
//     hyphen inside an identifier as subtraction.
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j

		case b[i] == '`':
			j := skipQuoted(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j

		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipQuoted returns the index just past the literal opened at b[start].
// An unterminated literal runs to the end of the input.
func skipQuoted(b []byte, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i++
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVertex wraps a vertexset.Vertex returned from `vertex`.
type sexpVertex struct {
	v vertexset.Vertex
}

func (v *sexpVertex) SexpString(ps *zygo.PrintState) string {
	p, uv := v.v.Position, v.v.TexCoord
	return fmt.Sprintf("(vertex %g %g %g %g %g)", p[0], p[1], p[2], uv[0], uv[1])
}
func (v *sexpVertex) Type() *zygo.RegisteredType { return nil }

// sexpTriangle wraps a scene.Triangle returned from `triangle`.
type sexpTriangle struct {
	tri scene.Triangle
}

func (t *sexpTriangle) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(triangle %s %s %s)", t.tri[0], t.tri[1], t.tri[2])
}
func (t *sexpTriangle) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef names a node added to the scene.
type sexpNodeRef struct {
	name string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(noderef %q)", n.name)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// checkKeywords rejects keywords outside allowed, so a typo such as
// :subdivsions fails loudly instead of silently using the default.
func checkKeywords(fn string, pa kwArgs, allowed ...string) error {
	for name := range pa.kw {
		known := false
		for _, a := range allowed {
			if name == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVertex extracts a Vertex from a sexpVertex.
func toVertex(s zygo.Sexp) (vertexset.Vertex, error) {
	if v, ok := s.(*sexpVertex); ok {
		return v.v, nil
	}
	return vertexset.Vertex{}, fmt.Errorf("expected vertex, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// collectTriangles flattens triangles and lists of triangles.
func collectTriangles(args []zygo.Sexp) ([]scene.Triangle, error) {
	var out []scene.Triangle
	for i, a := range args {
		if t, ok := a.(*sexpTriangle); ok {
			out = append(out, t.tri)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: expected triangle or list of triangles: %w", i+1, err)
		}
		nested, err := collectTriangles(items)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out = append(out, nested...)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the mesh script builtins into a zygomys
// environment. The builtins populate s during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {

	// -----------------------------------------------------------------------
	// (defaults :subdivisions 3 :radius 1 :tolerance 0.00001)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := checkKeywords("defaults", pa, "subdivisions", "radius", "tolerance"); err != nil {
			return zygo.SexpNull, err
		}

		if v, ok := pa.kw["subdivisions"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: subdivisions: %w", err)
			}
			s.Defaults.Subdivisions = n
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: radius: %w", err)
			}
			s.Defaults.Radius = f
		}
		if v, ok := pa.kw["tolerance"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: tolerance: %w", err)
			}
			s.Defaults.Tolerance = f
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (icosphere "planet" :subdivisions 4 :radius 6371 :roughness 0.05 :seed 7)
	// -----------------------------------------------------------------------
	env.AddFunction("icosphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("icosphere requires exactly one name argument")
		}
		if err := checkKeywords("icosphere", pa, "subdivisions", "radius", "roughness", "seed"); err != nil {
			return zygo.SexpNull, err
		}

		nodeName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("icosphere: name: %w", err)
		}

		data := scene.IcosphereData{}
		if v, ok := pa.kw["subdivisions"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("icosphere: subdivisions: %w", err)
			}
			data.Subdivisions = &n
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("icosphere: radius: %w", err)
			}
			data.Radius = &f
		}
		if v, ok := pa.kw["roughness"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("icosphere: roughness: %w", err)
			}
			data.Roughness = f
		}
		if v, ok := pa.kw["seed"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("icosphere: seed: %w", err)
			}
			data.Seed = int64(n)
		}

		s.AddNode(&scene.Node{Name: nodeName, Kind: scene.NodeIcosphere, Data: data})
		return &sexpNodeRef{name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (vertex x y z u v)
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 5 {
			return zygo.SexpNull, fmt.Errorf("vertex requires exactly 5 arguments (x y z u v), got %d", len(args))
		}
		var c [5]float64
		for i, label := range [5]string{"x", "y", "z", "u", "v"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vertex: %s: %w", label, err)
			}
			c[i] = f
		}
		return &sexpVertex{v: vertexset.NewVertex(c[0], c[1], c[2], c[3], c[4])}, nil
	})

	// -----------------------------------------------------------------------
	// (triangle (vertex ...) (vertex ...) (vertex ...))
	// -----------------------------------------------------------------------
	env.AddFunction("triangle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("triangle requires exactly 3 vertices, got %d", len(args))
		}
		var tri scene.Triangle
		for i := range args {
			v, err := toVertex(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("triangle: corner %d: %w", i+1, err)
			}
			tri[i] = v
		}
		return &sexpTriangle{tri: tri}, nil
	})

	// -----------------------------------------------------------------------
	// (polymesh "name" (triangle ...) (triangle ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polymesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("polymesh requires a name argument")
		}

		nodeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polymesh: name: %w", err)
		}

		tris, err := collectTriangles(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polymesh: %w", err)
		}

		s.AddNode(&scene.Node{
			Name: nodeName,
			Kind: scene.NodePolyMesh,
			Data: scene.PolyMeshData{Triangles: tris},
		})
		return &sexpNodeRef{name: nodeName}, nil
	})
}
