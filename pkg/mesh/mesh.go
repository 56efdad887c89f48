package mesh

import (
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/octree"
)

// Vertex is a point in the mesh. Leaving is the anchor half-edge, any edge
// whose origin is this vertex, or NoEdge while the vertex is isolated.
type Vertex struct {
	ID       VertexID
	Position geom.Vec
	Payload  any
	Leaving  EdgeID
}

// HalfEdge is one direction of a connection. Next is always set: it is the
// following edge of the boundary cycle with Left on its left-hand side.
type HalfEdge struct {
	ID      EdgeID
	Origin  VertexID
	Twin    EdgeID
	Next    EdgeID
	Left    FaceID
	Payload any
}

// Face is a region bounded by a counterclockwise cycle of half-edges.
type Face struct {
	ID      FaceID
	Name    string
	Payload any
	Parent  FaceID // enclosing face, or NoFace
	Edge    EdgeID // any half-edge of the boundary cycle
	Hole    bool
}

type edgeKey struct {
	from, to VertexID
}

// Mesh is a planar half-edge mesh with an octree index.
type Mesh struct {
	vertices map[VertexID]*Vertex
	edges    map[EdgeID]*HalfEdge
	byKey    map[edgeKey]EdgeID
	out      map[VertexID][]EdgeID
	faces    map[FaceID]*Face
	lastFace FaceID

	index   *octree.Tree
	factory FaceFactory

	subs    []subscriber
	lastSub Subscription
}

// New creates an empty mesh whose octree covers extent. Every vertex must
// lie inside extent.
func New(extent geom.AlignedCube, opts ...Option) *Mesh {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Mesh{
		vertices: make(map[VertexID]*Vertex),
		edges:    make(map[EdgeID]*HalfEdge),
		byKey:    make(map[edgeKey]EdgeID),
		out:      make(map[VertexID][]EdgeID),
		faces:    make(map[FaceID]*Face),
		index:    octree.New(extent, o.index...),
		factory:  o.factory,
	}
}

// Extent returns the region covered by the octree.
func (m *Mesh) Extent() geom.AlignedCube {
	return m.index.Extent()
}

// Index exposes the octree for read-only inspection.
func (m *Mesh) Index() *octree.Tree {
	return m.index
}

// ---------------------------------------------------------------------------
// Vertices
// ---------------------------------------------------------------------------

// AddVertex stores a vertex at p. If a vertex already sits at exactly p the
// mesh is unchanged and the error is a *DuplicateError naming it.
func (m *Mesh) AddVertex(p geom.Vec, payload any) (VertexID, error) {
	if !m.index.Extent().Contains(p) {
		return NoVertex, fmt.Errorf("add vertex at %v: %w", p, ErrOutOfExtent)
	}
	if id, ok := m.index.VertexAt(p); ok {
		return VertexID(id), &DuplicateError{Vertex: VertexID(id), Position: p}
	}
	v := &Vertex{ID: nextVertexID(), Position: p, Payload: payload}
	m.vertices[v.ID] = v
	m.index.Insert(octree.Element{Kind: octree.Vertex, ID: int64(v.ID)}, octree.PointShape(p))
	m.emit(Event{Type: VertexAdded, Vertex: v.ID})
	return v.ID, nil
}

// RemoveVertex deletes an isolated vertex.
func (m *Mesh) RemoveVertex(id VertexID) error {
	v, ok := m.vertices[id]
	if !ok {
		return fmt.Errorf("remove vertex %d: %w", id, ErrNotFound)
	}
	if v.Leaving != NoEdge || len(m.out[id]) > 0 {
		return fmt.Errorf("remove vertex %d: still has %d edges: %w", id, len(m.out[id]), ErrInvalidState)
	}
	m.index.Remove(octree.Element{Kind: octree.Vertex, ID: int64(id)})
	delete(m.vertices, id)
	delete(m.out, id)
	m.emit(Event{Type: VertexRemoved, Vertex: id})
	return nil
}

// Vertex returns a copy of the vertex record.
func (m *Mesh) Vertex(id VertexID) (Vertex, bool) {
	v, ok := m.vertices[id]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// MustVertex is Vertex for handles known to be valid.
func (m *Mesh) MustVertex(id VertexID) Vertex {
	v, ok := m.Vertex(id)
	if !ok {
		panic(fmt.Sprintf("mesh: no vertex %d", id))
	}
	return v
}

// Position returns the position of v, or the origin for unknown handles.
func (m *Mesh) Position(v VertexID) geom.Vec {
	if vx, ok := m.vertices[v]; ok {
		return vx.Position
	}
	return geom.Vec{}
}

// VertexAt looks up the vertex at exactly p.
func (m *Mesh) VertexAt(p geom.Vec) (VertexID, bool) {
	id, ok := m.index.VertexAt(p)
	return VertexID(id), ok
}

// EdgesFrom returns the half-edges leaving v in creation order.
func (m *Mesh) EdgesFrom(v VertexID) []EdgeID {
	return slices.Clone(m.out[v])
}

// Vertices returns all vertex ids in ascending order.
func (m *Mesh) Vertices() []VertexID {
	ids := lo.Keys(m.vertices)
	slices.Sort(ids)
	return ids
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return len(m.vertices) }

// ---------------------------------------------------------------------------
// Half-edge accessors
// ---------------------------------------------------------------------------

// Edge returns a copy of the half-edge record.
func (m *Mesh) Edge(id EdgeID) (HalfEdge, bool) {
	e, ok := m.edges[id]
	if !ok {
		return HalfEdge{}, false
	}
	return *e, true
}

// MustEdge is Edge for handles known to be valid.
func (m *Mesh) MustEdge(id EdgeID) HalfEdge {
	e, ok := m.Edge(id)
	if !ok {
		panic(fmt.Sprintf("mesh: no half-edge %d", id))
	}
	return e
}

// EdgeBetween returns the half-edge from a to b.
func (m *Mesh) EdgeBetween(a, b VertexID) (EdgeID, bool) {
	id, ok := m.byKey[edgeKey{a, b}]
	return id, ok
}

// Origin, Twin, Next and Left return NoVertex, NoEdge or NoFace for
// unknown handles.

func (m *Mesh) Origin(e EdgeID) VertexID {
	if he, ok := m.edges[e]; ok {
		return he.Origin
	}
	return NoVertex
}

func (m *Mesh) Twin(e EdgeID) EdgeID {
	if he, ok := m.edges[e]; ok {
		return he.Twin
	}
	return NoEdge
}

func (m *Mesh) Next(e EdgeID) EdgeID {
	if he, ok := m.edges[e]; ok {
		return he.Next
	}
	return NoEdge
}

func (m *Mesh) Left(e EdgeID) FaceID {
	if he, ok := m.edges[e]; ok {
		return he.Left
	}
	return NoFace
}

// Destination is the origin of the twin.
func (m *Mesh) Destination(e EdgeID) VertexID {
	return m.Origin(m.Twin(e))
}

// Segment returns the geometry of e.
func (m *Mesh) Segment(e EdgeID) geom.Segment {
	return geom.Segment{A: m.Position(m.Origin(e)), B: m.Position(m.Destination(e))}
}

// Previous finds the half-edge whose next is e by scanning the edges that
// arrive at the origin of e.
func (m *Mesh) Previous(e EdgeID) EdgeID {
	for _, c := range m.out[m.Origin(e)] {
		if p := m.edges[c].Twin; m.Next(p) == e {
			return p
		}
	}
	return NoEdge
}

// InnerAngle is the counterclockwise angle at the origin of e between e and
// its previous edge, measured inside the cycle. A dangling end measures 2π.
func (m *Mesh) InnerAngle(e EdgeID) float64 {
	p := m.Previous(e)
	return geom.Angle3p(m.Position(m.Origin(p)), m.Position(m.Origin(e)), m.Position(m.Destination(e)))
}

// OuterAngle is 2π minus InnerAngle.
func (m *Mesh) OuterAngle(e EdgeID) float64 {
	return 2*math.Pi - m.InnerAngle(e)
}

// Edges returns all half-edge ids in ascending order.
func (m *Mesh) Edges() []EdgeID {
	ids := lo.Keys(m.edges)
	slices.Sort(ids)
	return ids
}

// NumEdges returns the number of half-edges, twice the number of
// connections.
func (m *Mesh) NumEdges() int { return len(m.edges) }

// SetEdgePayload replaces the payload of one half-edge.
func (m *Mesh) SetEdgePayload(e EdgeID, payload any) error {
	he, ok := m.edges[e]
	if !ok {
		return fmt.Errorf("set payload of half-edge %d: %w", e, ErrNotFound)
	}
	he.Payload = payload
	return nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Found holds the ids of elements touching a query box.
type Found struct {
	Vertices []VertexID
	Edges    []EdgeID
	Faces    []FaceID
}

// Find returns everything whose footprint touches box.
func (m *Mesh) Find(box geom.AlignedCube) Found {
	r := m.index.Query(box)
	return Found{
		Vertices: lo.Map(r.Vertices, func(id int64, _ int) VertexID { return VertexID(id) }),
		Edges:    lo.Map(r.Edges, func(id int64, _ int) EdgeID { return EdgeID(id) }),
		Faces:    lo.Map(r.Faces, func(id int64, _ int) FaceID { return FaceID(id) }),
	}
}

// FindNear returns everything within the cube of half-size r around p.
func (m *Mesh) FindNear(p geom.Vec, r float64) Found {
	return m.Find(geom.CubeAround(p, r))
}

// FindVertices is Find restricted to vertices.
func (m *Mesh) FindVertices(box geom.AlignedCube) []VertexID {
	return m.Find(box).Vertices
}

// FindEdges is Find restricted to half-edges.
func (m *Mesh) FindEdges(box geom.AlignedCube) []EdgeID {
	return m.Find(box).Edges
}

// FindFaces is Find restricted to faces.
func (m *Mesh) FindFaces(box geom.AlignedCube) []FaceID {
	return m.Find(box).Faces
}

// Isolated reports whether v has no edges.
func (m *Mesh) Isolated(v VertexID) bool {
	vx, ok := m.vertices[v]
	return ok && vx.Leaving == NoEdge
}
