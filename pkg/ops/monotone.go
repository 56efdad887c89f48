package ops

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// VertexKind is the role of a boundary vertex for a sweep-line
// decomposition into monotone pieces.
type VertexKind int

const (
	Regular VertexKind = iota
	Start
	Split
	Merge
	End
)

func (k VertexKind) String() string {
	switch k {
	case Regular:
		return "regular"
	case Start:
		return "start"
	case Split:
		return "split"
	case Merge:
		return "merge"
	case End:
		return "end"
	default:
		return fmt.Sprintf("VertexKind(%d)", int(k))
	}
}

// invert swaps the roles for boundaries wound the other way.
func (k VertexKind) invert() VertexKind {
	switch k {
	case Start:
		return Split
	case Split:
		return Start
	case End:
		return Merge
	case Merge:
		return End
	}
	return k
}

// Classification is the role of the origin of Edge.
type Classification struct {
	Edge   mesh.EdgeID
	Vertex mesh.VertexID
	Kind   VertexKind
}

// SweepLess orders vertices along the sweep: less(a, b) means a is met
// before b.
type SweepLess func(a, b geom.Vec) bool

// DefaultSweep sweeps top to bottom, left to right on ties.
func DefaultSweep(a, b geom.Vec) bool {
	if a.Y != b.Y {
		return a.Y > b.Y
	}
	return a.X < b.X
}

// ClassifyMonotonicity classifies every boundary vertex of face and of the
// holes whose parent is face. Hole boundaries are classified inverted.
// A nil less uses DefaultSweep.
func ClassifyMonotonicity(m *mesh.Mesh, face mesh.FaceID, less SweepLess) ([]Classification, error) {
	f, ok := m.Face(face)
	if !ok {
		return nil, fmt.Errorf("classify face %v: %w", face, mesh.ErrNotFound)
	}
	if less == nil {
		less = DefaultSweep
	}
	out := classifyCycle(m, f.Edge, less, f.Hole)
	for _, id := range m.Faces() {
		h := m.MustFace(id)
		if h.Hole && h.Parent == face && id != face {
			out = append(out, classifyCycle(m, h.Edge, less, true)...)
		}
	}
	return out, nil
}

func classifyCycle(m *mesh.Mesh, rep mesh.EdgeID, less SweepLess, hole bool) []Classification {
	cycle := m.Boundary(rep)
	n := len(cycle)
	out := make([]Classification, 0, n)
	for i, e := range cycle {
		prev := m.Position(m.Origin(cycle[(i+n-1)%n]))
		v := m.Position(m.Origin(e))
		next := m.Position(m.Destination(e))
		inner := geom.Angle3p(prev, v, next)

		kind := Regular
		switch {
		case less(v, prev) && less(v, next):
			kind = Start
			if inner > math.Pi {
				kind = Split
			}
		case less(prev, v) && less(next, v):
			kind = End
			if inner > math.Pi {
				kind = Merge
			}
		}
		if hole {
			kind = kind.invert()
		}
		out = append(out, Classification{Edge: e, Vertex: m.Origin(e), Kind: kind})
	}
	return out
}
