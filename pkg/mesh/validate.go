package mesh

import (
	"fmt"
	"slices"

	"github.com/chazu/facet/pkg/octree"
)

// ValidationSeverity indicates whether a finding breaks an invariant or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant broken
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

// ValidationError describes a single validation finding. At most one of the
// element handles is set.
type ValidationError struct {
	Vertex   VertexID
	Edge     EdgeID
	Face     FaceID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	switch {
	case e.Vertex != NoVertex:
		return fmt.Sprintf("[%s] vertex %d: %s", e.Severity, e.Vertex, e.Message)
	case e.Edge != NoEdge:
		return fmt.Sprintf("[%s] half-edge %d: %s", e.Severity, e.Edge, e.Message)
	case e.Face != NoFace:
		return fmt.Sprintf("[%s] face %v: %s", e.Severity, e.Face, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
}

// Validate checks the structural invariants of m and returns every
// finding. An empty slice means the mesh is consistent. It never mutates m.
func Validate(m *Mesh) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateTwins(m)...)
	errs = append(errs, validateAnchors(m)...)
	errs = append(errs, validateFaces(m)...)
	errs = append(errs, validateIndex(m)...)
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	return slices.ContainsFunc(errs, func(e ValidationError) bool { return e.Severity == SeverityError })
}

func validateTwins(m *Mesh) []ValidationError {
	var errs []ValidationError
	for _, id := range m.Edges() {
		e := m.edges[id]
		t, ok := m.edges[e.Twin]
		switch {
		case !ok:
			errs = append(errs, ValidationError{Edge: id, Message: "twin is not stored", Severity: SeverityError})
			continue
		case t.Twin != id:
			errs = append(errs, ValidationError{Edge: id, Message: fmt.Sprintf("twin %d points back to %d", t.ID, t.Twin), Severity: SeverityError})
		case t.Origin == e.Origin:
			errs = append(errs, ValidationError{Edge: id, Message: "twin shares the origin", Severity: SeverityError})
		}
		if got := m.byKey[edgeKey{e.Origin, t.Origin}]; got != id {
			errs = append(errs, ValidationError{Edge: id, Message: "not registered under its vertex pair", Severity: SeverityError})
		}
		n, ok := m.edges[e.Next]
		if !ok {
			errs = append(errs, ValidationError{Edge: id, Message: "next is not set", Severity: SeverityError})
		} else if n.Origin != t.Origin {
			errs = append(errs, ValidationError{Edge: id, Message: fmt.Sprintf("next %d does not leave the destination", n.ID), Severity: SeverityError})
		}
	}
	return errs
}

func validateAnchors(m *Mesh) []ValidationError {
	var errs []ValidationError
	for _, id := range m.Vertices() {
		v := m.vertices[id]
		if v.Leaving == NoEdge {
			if len(m.out[id]) > 0 {
				errs = append(errs, ValidationError{Vertex: id, Message: "has edges but no anchor", Severity: SeverityError})
			}
			continue
		}
		if m.Origin(v.Leaving) != id {
			errs = append(errs, ValidationError{Vertex: id, Message: fmt.Sprintf("anchor %d does not leave the vertex", v.Leaving), Severity: SeverityError})
		}
		for _, e := range m.out[id] {
			if m.Origin(e) != id {
				errs = append(errs, ValidationError{Vertex: id, Message: fmt.Sprintf("outgoing list holds half-edge %d of another vertex", e), Severity: SeverityError})
			}
		}
	}
	return errs
}

func validateFaces(m *Mesh) []ValidationError {
	var errs []ValidationError
	for _, id := range m.Faces() {
		f := m.faces[id]
		c, ok := m.walk(f.Edge)
		if !ok {
			errs = append(errs, ValidationError{Face: id, Message: fmt.Sprintf("boundary from half-edge %d does not close", f.Edge), Severity: SeverityError})
			continue
		}
		for _, e := range c {
			if m.edges[e].Left != id {
				errs = append(errs, ValidationError{Face: id, Message: fmt.Sprintf("boundary half-edge %d is labelled %v", e, m.edges[e].Left), Severity: SeverityError})
			}
		}
		if !f.Parent.Reserved() {
			if _, ok := m.faces[f.Parent]; !ok {
				errs = append(errs, ValidationError{Face: id, Message: fmt.Sprintf("parent %v does not exist", f.Parent), Severity: SeverityWarning})
			}
		}
	}
	for _, id := range m.Edges() {
		if l := m.edges[id].Left; !l.Reserved() {
			if _, ok := m.faces[l]; !ok {
				errs = append(errs, ValidationError{Edge: id, Message: fmt.Sprintf("labelled with missing face %v", l), Severity: SeverityWarning})
			}
		}
	}
	return errs
}

func validateIndex(m *Mesh) []ValidationError {
	var errs []ValidationError
	r := m.index.Query(m.index.Extent())
	check := func(kind octree.Kind, indexed []int64, stored []int64) {
		if !slices.Equal(indexed, stored) {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("octree holds %d %s elements, store holds %d", len(indexed), kind, len(stored)),
				Severity: SeverityError,
			})
		}
	}
	check(octree.Vertex, r.Vertices, toInt64(m.Vertices()))
	check(octree.Edge, r.Edges, toInt64(m.Edges()))
	check(octree.Face, r.Faces, toInt64(m.Faces()))
	return errs
}

func toInt64[T ~int64 | ~int](ids []T) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
