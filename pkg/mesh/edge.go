package mesh

import (
	"fmt"
	"math"
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/octree"
)

// Connect joins a and b with a pair of twin half-edges and returns the one
// running from a to b. dataAB and dataBA become the payloads of the two
// directions. The new edges are spliced into the rotation at both
// endpoints and every cycle that closes counterclockwise gets a face.
func (m *Mesh) Connect(a, b VertexID, dataAB, dataBA any) (EdgeID, error) {
	va, ok := m.vertices[a]
	if !ok {
		return NoEdge, fmt.Errorf("connect %d-%d: vertex %d: %w", a, b, a, ErrNotFound)
	}
	vb, ok := m.vertices[b]
	if !ok {
		return NoEdge, fmt.Errorf("connect %d-%d: vertex %d: %w", a, b, b, ErrNotFound)
	}
	if a == b {
		return NoEdge, fmt.Errorf("connect %d to itself: %w", a, ErrInvalidState)
	}
	if id, dup := m.byKey[edgeKey{a, b}]; dup {
		return id, &DuplicateError{Edge: id, Vertex: a, Position: va.Position}
	}

	e := &HalfEdge{ID: nextEdgeID(), Origin: a, Payload: dataAB}
	t := &HalfEdge{ID: nextEdgeID(), Origin: b, Payload: dataBA}
	e.Twin, t.Twin = t.ID, e.ID
	m.edges[e.ID] = e
	m.edges[t.ID] = t
	m.byKey[edgeKey{a, b}] = e.ID
	m.byKey[edgeKey{b, a}] = t.ID
	m.out[a] = append(m.out[a], e.ID)
	m.out[b] = append(m.out[b], t.ID)
	if va.Leaving == NoEdge {
		va.Leaving = e.ID
	}
	if vb.Leaving == NoEdge {
		vb.Leaving = t.ID
	}
	m.index.Insert(octree.Element{Kind: octree.Edge, ID: int64(e.ID)}, octree.SegmentShape(va.Position, vb.Position))
	m.index.Insert(octree.Element{Kind: octree.Edge, ID: int64(t.ID)}, octree.SegmentShape(vb.Position, va.Position))

	m.land(e.ID)
	m.land(t.ID)
	m.rebuild([]EdgeID{e.ID, t.ID}, m.boundedFaces(e.ID, t.ID))

	m.emit(Event{Type: EdgeAdded, Edge: e.ID})
	m.emit(Event{Type: EdgeAdded, Edge: t.ID})
	return e.ID, nil
}

// Bridge connects the origins of e1 and e2, splicing the two boundary
// cycles they sit on into one.
func (m *Mesh) Bridge(e1, e2 EdgeID) (EdgeID, error) {
	if _, ok := m.edges[e1]; !ok {
		return NoEdge, fmt.Errorf("bridge: half-edge %d: %w", e1, ErrNotFound)
	}
	if _, ok := m.edges[e2]; !ok {
		return NoEdge, fmt.Errorf("bridge: half-edge %d: %w", e2, ErrNotFound)
	}
	id, err := m.Connect(m.Origin(e1), m.Origin(e2), nil, nil)
	if err != nil {
		return NoEdge, fmt.Errorf("bridge %d-%d: %w", e1, e2, err)
	}
	return id, nil
}

// Disconnect removes e together with its twin. Faces whose boundary ran
// along either half are rebuilt from the merged cycles.
func (m *Mesh) Disconnect(e EdgeID) error {
	he, ok := m.edges[e]
	if !ok {
		return fmt.Errorf("disconnect half-edge %d: %w", e, ErrNotFound)
	}
	t := he.Twin
	th := m.edges[t]

	stale := m.boundedFaces(e, t)
	pe, pt := m.Previous(e), m.Previous(t)
	if pe == NoEdge || pt == NoEdge {
		return fmt.Errorf("disconnect half-edge %d: no previous edge: %w", e, ErrInvalidState)
	}

	var seeds []EdgeID
	if pt != e {
		m.edges[pt].Next = he.Next
		seeds = append(seeds, pt)
	}
	if pe != t {
		m.edges[pe].Next = th.Next
		seeds = append(seeds, pe)
	}

	a, b := he.Origin, th.Origin
	delete(m.edges, e)
	delete(m.edges, t)
	delete(m.byKey, edgeKey{a, b})
	delete(m.byKey, edgeKey{b, a})
	m.dropOut(a, e)
	m.dropOut(b, t)
	m.index.Remove(octree.Element{Kind: octree.Edge, ID: int64(e)})
	m.index.Remove(octree.Element{Kind: octree.Edge, ID: int64(t)})

	m.rebuild(seeds, stale)

	m.emit(Event{Type: EdgeRemoved, Edge: e})
	m.emit(Event{Type: EdgeRemoved, Edge: t})
	return nil
}

func (m *Mesh) dropOut(v VertexID, e EdgeID) {
	out := slices.DeleteFunc(m.out[v], func(c EdgeID) bool { return c == e })
	if len(out) == 0 {
		delete(m.out, v)
	} else {
		m.out[v] = out
	}
	if vx := m.vertices[v]; vx.Leaving == e {
		vx.Leaving = NoEdge
		if len(out) > 0 {
			vx.Leaving = out[0]
		}
	}
}

// land sets e.Next to the edge leaving the destination of e with the
// smallest turn, measured counterclockwise from the twin of e. The former
// predecessor of that edge is redirected to the twin so the rotation at the
// destination stays consistent. A destination with no other edge makes e a
// dangling end whose next is its own twin.
func (m *Mesh) land(e EdgeID) {
	he := m.edges[e]
	if he.Next != NoEdge {
		return
	}
	d := m.Origin(he.Twin)
	from, at := m.Position(he.Origin), m.Position(d)

	next, best := he.Twin, math.Inf(1)
	for _, c := range m.out[d] {
		if c == he.Twin {
			continue
		}
		if ang := geom.Angle3p(from, at, m.Position(m.Destination(c))); ang < best {
			next, best = c, ang
		}
	}
	he.Next = next
	if next == he.Twin {
		return
	}
	for _, c := range m.out[d] {
		p := m.edges[c].Twin
		if p != e && m.edges[p].Next == next {
			m.edges[p].Next = he.Twin
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Cycles
// ---------------------------------------------------------------------------

// walk follows next from e. It reports false if the walk does not return
// to e within the number of stored edges.
func (m *Mesh) walk(e EdgeID) ([]EdgeID, bool) {
	if _, ok := m.edges[e]; !ok {
		return nil, false
	}
	cycle := []EdgeID{e}
	for cur := m.edges[e].Next; cur != e; cur = m.edges[cur].Next {
		if cur == NoEdge || len(cycle) > len(m.edges) {
			return cycle, false
		}
		if _, ok := m.edges[cur]; !ok {
			return cycle, false
		}
		cycle = append(cycle, cur)
	}
	return cycle, true
}

// Boundary returns the next-cycle through e, starting at e. It returns nil
// if e is unknown or the walk does not close.
func (m *Mesh) Boundary(e EdgeID) []EdgeID {
	c, ok := m.walk(e)
	if !ok {
		return nil
	}
	return c
}

// BoundaryPoints returns the origins of the cycle through e.
func (m *Mesh) BoundaryPoints(e EdgeID) []geom.Vec {
	c := m.Boundary(e)
	pts := make([]geom.Vec, len(c))
	for i, id := range c {
		pts[i] = m.Position(m.edges[id].Origin)
	}
	return pts
}

// IsCycle reports whether following next from e returns to e.
func (m *Mesh) IsCycle(e EdgeID) bool {
	_, ok := m.walk(e)
	return ok
}

// InsideLooking reports whether the cycle through e has the interior angle
// sum of a simple counterclockwise polygon, (n-2)π.
func (m *Mesh) InsideLooking(e EdgeID) bool {
	c, ok := m.walk(e)
	return ok && m.insideLooking(c)
}

func (m *Mesh) insideLooking(cycle []EdgeID) bool {
	n := len(cycle)
	if n < 3 {
		return false
	}
	sum := 0.0
	for i, e := range cycle {
		prev := cycle[(i+n-1)%n]
		sum += geom.Angle3p(
			m.Position(m.edges[prev].Origin),
			m.Position(m.edges[e].Origin),
			m.Position(m.Destination(e)))
	}
	return math.Abs(sum-float64(n-2)*math.Pi) <= 1e-6*float64(n)
}

// cycles returns the distinct cycles through seeds, each rotated to start
// at its lowest edge id.
func (m *Mesh) cycles(seeds []EdgeID) [][]EdgeID {
	seen := make(map[EdgeID]bool)
	var out [][]EdgeID
	for _, s := range seeds {
		if seen[s] {
			continue
		}
		c, ok := m.walk(s)
		if !ok {
			continue
		}
		for _, e := range c {
			seen[e] = true
		}
		out = append(out, rotateToMin(c))
	}
	return out
}

func rotateToMin(c []EdgeID) []EdgeID {
	i := slices.Index(c, slices.Min(c))
	return append(slices.Clone(c[i:]), c[:i]...)
}
