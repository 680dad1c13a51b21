package scene

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a validation finding blocks
// tessellation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Node     string             // which node has the problem (empty if scene-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %q: %s", e.Severity, e.Node, e.Message)
}

// Validate checks the scene and returns every finding. Only findings with
// SeverityError block tessellation. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDefaults(s)...)
	errs = append(errs, validateNames(s)...)
	for _, n := range s.Nodes {
		errs = append(errs, validateNode(s, n)...)
	}
	return errs
}

// HasErrors reports whether any finding blocks tessellation.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateDefaults(s *Scene) []ValidationError {
	t := s.Defaults.Tolerance
	if !(t > 0) || math.IsInf(t, 0) {
		return []ValidationError{{
			Message:  fmt.Sprintf("tolerance %g must be positive and finite", t),
			Severity: SeverityError,
		}}
	}
	return nil
}

// validateNames requires every node to have a unique, non-empty name since
// the name labels the exported mesh.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for i, n := range s.Nodes {
		if n.Name == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("node %d has no name", i),
				Severity: SeverityError,
			})
			continue
		}
		if seen[n.Name] {
			errs = append(errs, ValidationError{
				Node:     n.Name,
				Message:  "duplicate name",
				Severity: SeverityError,
			})
		}
		seen[n.Name] = true
	}
	return errs
}

func validateNode(s *Scene, n *Node) []ValidationError {
	switch data := n.Data.(type) {
	case IcosphereData:
		if n.Kind != NodeIcosphere {
			return []ValidationError{kindMismatch(n)}
		}
		if err := data.Options(s.Defaults).Validate(); err != nil {
			return []ValidationError{{Node: n.Name, Message: err.Error(), Severity: SeverityError}}
		}
		return nil

	case PolyMeshData:
		if n.Kind != NodePolyMesh {
			return []ValidationError{kindMismatch(n)}
		}
		return validatePolyMesh(n, data)

	default:
		return []ValidationError{{
			Node:     n.Name,
			Message:  fmt.Sprintf("unsupported data type %T", n.Data),
			Severity: SeverityError,
		}}
	}
}

func validatePolyMesh(n *Node, data PolyMeshData) []ValidationError {
	if len(data.Triangles) == 0 {
		return []ValidationError{{Node: n.Name, Message: "polymesh has no triangles", Severity: SeverityError}}
	}

	var errs []ValidationError
	for i, tri := range data.Triangles {
		for j, v := range tri {
			if !v.Valid() {
				errs = append(errs, ValidationError{
					Node:     n.Name,
					Message:  fmt.Sprintf("triangle %d corner %d: non-finite vertex %s", i, j, v),
					Severity: SeverityError,
				})
			}
		}
		if tri[0].Position == tri[1].Position || tri[1].Position == tri[2].Position || tri[2].Position == tri[0].Position {
			errs = append(errs, ValidationError{
				Node:     n.Name,
				Message:  fmt.Sprintf("triangle %d is degenerate", i),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func kindMismatch(n *Node) ValidationError {
	return ValidationError{
		Node:     n.Name,
		Message:  fmt.Sprintf("kind %s does not match data type %T", n.Kind, n.Data),
		Severity: SeverityError,
	}
}
