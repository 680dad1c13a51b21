package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/icosmesh/pkg/vertexset"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func unitTriangle() Triangle {
	return Triangle{
		vertexset.NewVertex(0, 0, 0, 0, 0),
		vertexset.NewVertex(1, 0, 0, 1, 0),
		vertexset.NewVertex(0, 1, 0, 0, 1),
	}
}

func TestNewScene(t *testing.T) {
	s := New()
	if s.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", s.NodeCount())
	}
	if s.Defaults != DefaultDefaults() {
		t.Errorf("Defaults = %+v, want %+v", s.Defaults, DefaultDefaults())
	}
	if errs := Validate(s); len(errs) != 0 {
		t.Errorf("empty scene has findings: %v", errs)
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	s := New()
	s.AddNode(&Node{Name: "planet", Kind: NodeIcosphere, Data: IcosphereData{}})
	s.AddNode(&Node{Name: "moon", Kind: NodeIcosphere, Data: IcosphereData{}})

	if s.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", s.NodeCount())
	}
	if n := s.Lookup("moon"); n == nil || n.Name != "moon" {
		t.Errorf("Lookup(moon) = %v", n)
	}
	if n := s.Lookup("sun"); n != nil {
		t.Errorf("Lookup(sun) = %v, want nil", n)
	}
}

func TestIcosphereDataOptions(t *testing.T) {
	def := Defaults{Subdivisions: 2, Radius: 5, Tolerance: DefaultTolerance}

	got := IcosphereData{}.Options(def)
	if got.Subdivisions != 2 || got.Radius != 5 {
		t.Errorf("unset fields: got %+v, want defaults", got)
	}

	got = IcosphereData{Subdivisions: intPtr(4), Radius: floatPtr(0.5)}.Options(def)
	if got.Subdivisions != 4 || got.Radius != 0.5 {
		t.Errorf("explicit fields: got %+v", got)
	}
}

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{NodeIcosphere, "icosphere"},
		{NodePolyMesh, "polymesh"},
		{NodeKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		build     func(s *Scene)
		wantErr   bool
		wantWarn  bool
		wantMatch string
	}{
		{
			name: "valid icosphere",
			build: func(s *Scene) {
				s.AddNode(&Node{Name: "a", Kind: NodeIcosphere, Data: IcosphereData{}})
			},
		},
		{
			name: "valid polymesh",
			build: func(s *Scene) {
				s.AddNode(&Node{Name: "p", Kind: NodePolyMesh, Data: PolyMeshData{Triangles: []Triangle{unitTriangle()}}})
			},
		},
		{
			name: "duplicate name",
			build: func(s *Scene) {
				s.AddNode(&Node{Name: "a", Kind: NodeIcosphere, Data: IcosphereData{}})
				s.AddNode(&Node{Name: "a", Kind: NodeIcosphere, Data: IcosphereData{}})
			},
			wantErr:   true,
			wantMatch: "duplicate name",
		},
		{
			name: "empty name",
			build: func(s *Scene) {
				s.AddNode(&Node{Kind: NodeIcosphere, Data: IcosphereData{}})
			},
			wantErr:   true,
			wantMatch: "no name",
		},
		{
			name: "subdivisions out of range",
			build: func(s *Scene) {
				s.AddNode(&Node{Name: "a", Kind: NodeIcosphere, Data: IcosphereData{Subdivisions: intPtr(20)}})
			},
			wantErr:   true,
			wantMatch: "subdivisions",
		},
		{
			name: "bad default radius",
			build: func(s *Scene) {
				s.Defaults.Radius = -1
				s.AddNode(&Node{Name: "a", Kind: NodeIcosphere, Data: IcosphereData{}})
			},
			wantErr:   true,
			wantMatch: "radius",
		},
		{
			name: "bad tolerance",
			build: func(s *Scene) {
				s.Defaults.Tolerance = 0
			},
			wantErr:   true,
			wantMatch: "tolerance",
		},
		{
			name: "kind mismatch",
			build: func(s *Scene) {
				s.AddNode(&Node{Name: "a", Kind: NodePolyMesh, Data: IcosphereData{}})
			},
			wantErr:   true,
			wantMatch: "does not match",
		},
		{
			name: "empty polymesh",
			build: func(s *Scene) {
				s.AddNode(&Node{Name: "p", Kind: NodePolyMesh, Data: PolyMeshData{}})
			},
			wantErr:   true,
			wantMatch: "no triangles",
		},
		{
			name: "non-finite polymesh vertex",
			build: func(s *Scene) {
				tri := unitTriangle()
				tri[2] = vertexset.NewVertex(0, math.Inf(1), 0, 0, 1)
				s.AddNode(&Node{Name: "p", Kind: NodePolyMesh, Data: PolyMeshData{Triangles: []Triangle{tri}}})
			},
			wantErr:   true,
			wantMatch: "non-finite",
		},
		{
			name: "degenerate triangle warns",
			build: func(s *Scene) {
				tri := unitTriangle()
				tri[2].Position = tri[0].Position
				s.AddNode(&Node{Name: "p", Kind: NodePolyMesh, Data: PolyMeshData{Triangles: []Triangle{tri}}})
			},
			wantWarn:  true,
			wantMatch: "degenerate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.build(s)
			findings := Validate(s)

			if got := HasErrors(findings); got != tt.wantErr {
				t.Fatalf("HasErrors() = %v, want %v (findings: %v)", got, tt.wantErr, findings)
			}
			var warned bool
			for _, f := range findings {
				if f.Severity == SeverityWarning {
					warned = true
				}
			}
			if warned != tt.wantWarn {
				t.Errorf("warning present = %v, want %v (findings: %v)", warned, tt.wantWarn, findings)
			}
			if tt.wantMatch == "" {
				return
			}
			for _, f := range findings {
				if strings.Contains(f.Error(), tt.wantMatch) {
					return
				}
			}
			t.Errorf("no finding mentions %q: %v", tt.wantMatch, findings)
		})
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Node: "moon", Message: "bad", Severity: SeverityWarning}
	if got, want := e.Error(), `[warning] node "moon": bad`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	e = ValidationError{Message: "bad", Severity: SeverityError}
	if got, want := e.Error(), "[error] bad"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
