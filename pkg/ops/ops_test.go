package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

func newMesh() *mesh.Mesh {
	return mesh.New(geom.Cube(geom.V(-50, -50, -1), geom.V(50, 50, 1)))
}

// polygon adds the points as vertices and connects them in a ring. It
// returns the edges in ring order.
func polygon(t *testing.T, m *mesh.Mesh, pts ...geom.Vec) []mesh.EdgeID {
	t.Helper()
	vs := make([]mesh.VertexID, len(pts))
	for i, p := range pts {
		v, err := m.AddVertex(p, nil)
		require.NoError(t, err)
		vs[i] = v
	}
	es := make([]mesh.EdgeID, len(vs))
	for i := range vs {
		e, err := m.Connect(vs[i], vs[(i+1)%len(vs)], nil, nil)
		require.NoError(t, err)
		es[i] = e
	}
	return es
}

func square(x0, y0, x1, y1 float64) []geom.Vec {
	return []geom.Vec{geom.V2(x0, y0), geom.V2(x1, y0), geom.V2(x1, y1), geom.V2(x0, y1)}
}

func requireValid(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	errs := mesh.Validate(m)
	require.Empty(t, errs, "validation findings: %v", errs)
}

func TestWindingNumber(t *testing.T) {
	m := newMesh()
	quad := []geom.Vec{geom.V2(0, 0), geom.V2(4, 0), geom.V2(5, 3), geom.V2(1, 4)}
	es := polygon(t, m, quad...)

	centroid := quad[0].Add(quad[1]).Add(quad[2]).Add(quad[3]).MulScalar(0.25)
	assert.Equal(t, 1, WindingNumber(m, centroid, es[0]))
	assert.Equal(t, -1, WindingNumber(m, centroid, m.Twin(es[0])))
	assert.Equal(t, 0, WindingNumber(m, geom.V2(40, 40), es[0]))
	assert.Equal(t, 0, WindingNumber(m, geom.V2(-1, 2), es[0]))
}

func TestWindingTable(t *testing.T) {
	sq := square(0, 0, 2, 2)
	tests := []struct {
		name string
		p    geom.Vec
		want int
	}{
		{"inside", geom.V2(1, 1), 1},
		{"left", geom.V2(-1, 1), 0},
		{"above", geom.V2(1, 3), 0},
		{"right", geom.V2(3, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Winding(tt.p, sq))
		})
	}
}

func TestCycles(t *testing.T) {
	m := newMesh()
	tri := polygon(t, m, geom.V2(0, 0), geom.V2(2, 0), geom.V2(0, 2))
	a, err := m.AddVertex(geom.V2(10, 10), nil)
	require.NoError(t, err)
	b, err := m.AddVertex(geom.V2(12, 10), nil)
	require.NoError(t, err)
	_, err = m.Connect(a, b, nil, nil)
	require.NoError(t, err)

	cycles := Cycles(m)
	require.Len(t, cycles, 3)
	assert.Equal(t, tri[0], cycles[0], "the counterclockwise triangle holds the lowest edge")
	assert.Equal(t, m.Twin(tri[0]), cycles[1])
	assert.Len(t, m.Boundary(cycles[2]), 2)
}

// nested builds an outer square, a hole square inside it, an island inside
// the hole and a separate triangle.
type nested struct {
	outer, hole, island, tri []mesh.EdgeID
}

func buildNested(t *testing.T, m *mesh.Mesh) nested {
	return nested{
		outer:  polygon(t, m, square(0, 0, 20, 20)...),
		hole:   polygon(t, m, square(4, 4, 16, 16)...),
		island: polygon(t, m, square(8, 8, 12, 12)...),
		tri:    polygon(t, m, geom.V2(30, 0), geom.V2(40, 0), geom.V2(30, 10)),
	}
}

func TestContainment(t *testing.T) {
	m := newMesh()
	n := buildNested(t, m)

	tree, err := Containment(m)
	require.NoError(t, err)
	assert.Equal(t, 4, tree.Len())
	assert.Equal(t, []mesh.EdgeID{n.outer[0], n.tri[0]}, tree.Roots())
	assert.Equal(t, []mesh.EdgeID{n.hole[0]}, tree.Children(n.outer[0]))
	assert.Equal(t, []mesh.EdgeID{n.island[0]}, tree.Children(n.hole[0]))
	assert.Equal(t, 2, tree.Level(n.island[0]))
	assert.False(t, tree.Contains(m.Twin(n.outer[0])), "clockwise rims are not candidates")
}

func TestCreateFaces(t *testing.T) {
	m := newMesh()
	n := buildNested(t, m)

	// a dangling spike inside the outer ring, off every other cycle
	a, err := m.AddVertex(geom.V2(1, 1), nil)
	require.NoError(t, err)
	b, err := m.AddVertex(geom.V2(2, 2), nil)
	require.NoError(t, err)
	spike, err := m.Connect(a, b, nil, nil)
	require.NoError(t, err)

	sum, err := CreateFaces(m)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Linked, "faces were linked while connecting")
	assert.Equal(t, 1, sum.Holes)
	assert.Equal(t, 2, sum.Outer)

	outer, hole, island, tri := m.Left(n.outer[0]), m.Left(n.hole[0]), m.Left(n.island[0]), m.Left(n.tri[0])
	assert.True(t, m.ProperFace(outer))
	assert.True(t, m.MustFace(hole).Hole)
	assert.True(t, m.ProperFace(island))
	assert.True(t, m.ProperFace(tri))

	assert.Equal(t, mesh.NoFace, m.MustFace(outer).Parent)
	assert.Equal(t, outer, m.MustFace(hole).Parent)
	assert.Equal(t, hole, m.MustFace(island).Parent)

	assert.Equal(t, mesh.InfinityFace, m.Left(m.Twin(n.outer[0])))
	assert.Equal(t, mesh.InfinityFace, m.Left(m.Twin(n.tri[0])))
	assert.Equal(t, outer, m.Left(m.Twin(n.hole[0])), "the hole rim borders the outer face")
	assert.Equal(t, hole, m.Left(m.Twin(n.island[0])))
	assert.Equal(t, outer, m.Left(spike))
	requireValid(t, m)

	t.Run("relinks unlinked faces", func(t *testing.T) {
		require.NoError(t, m.UnlinkFace(tri))
		sum, err := CreateFaces(m)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Linked)
		assert.True(t, m.ProperFace(m.Left(n.tri[0])))
		requireValid(t, m)
	})
}

func TestCloseHoles(t *testing.T) {
	m := newMesh()
	outer := polygon(t, m, square(0, 0, 10, 10)...)
	inner := polygon(t, m, square(3, 3, 7, 7)...)
	_, err := CreateFaces(m)
	require.NoError(t, err)
	hole := m.Left(inner[0])
	require.True(t, m.MustFace(hole).Hole)
	edgesBefore := m.NumEdges()

	closed, err := CloseHoles(m)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, edgesBefore+4, m.NumEdges(), "two bridges")
	assert.Equal(t, 3, m.NumFaces(), "the container is cut in two around the hole")
	assert.True(t, m.MustFace(hole).Hole)
	assert.True(t, m.ProperFace(m.Left(outer[0])))
	assert.NotEqual(t, m.Left(m.Twin(inner[0])), m.Left(m.Twin(inner[2])))
	requireValid(t, m)

	again, err := CloseHoles(m)
	require.NoError(t, err)
	assert.Equal(t, 0, again, "a bridged hole is not open any more")
}

func TestSingleCloseHole(t *testing.T) {
	m := newMesh()
	outer := polygon(t, m, square(0, 0, 10, 10)...)
	inner := polygon(t, m, square(1, 1, 3, 3)...)
	_, err := CreateFaces(m)
	require.NoError(t, err)
	hole := m.Left(inner[0])

	ok, err := SingleCloseHole(m, hole)
	require.NoError(t, err)
	require.True(t, ok)

	b, found := m.EdgeBetween(m.Origin(outer[0]), m.Origin(inner[0]))
	require.True(t, found, "the shortest bridge joins the two lower-left corners")
	keyhole := m.Left(b)
	assert.Equal(t, keyhole, m.Left(m.Twin(b)))
	assert.Len(t, m.FaceBoundary(keyhole), 10)
	assert.Equal(t, 2, m.NumFaces())
	requireValid(t, m)

	ok, err = DoubleCloseHole(m, hole)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = SingleCloseHole(m, keyhole)
	assert.ErrorIs(t, err, mesh.ErrInvalidState)
	_, err = DoubleCloseHole(m, mesh.FaceID(999))
	assert.ErrorIs(t, err, mesh.ErrNotFound)
}

func TestDoubleCloseHole(t *testing.T) {
	m := newMesh()
	outer := polygon(t, m, square(0, 0, 10, 10)...)
	inner := polygon(t, m, square(3, 3, 7, 7)...)
	_, err := CreateFaces(m)
	require.NoError(t, err)
	container := m.Left(outer[0])
	hole := m.Left(inner[0])
	edgesBefore := m.NumEdges()

	ok, err := DoubleCloseHole(m, hole)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, edgesBefore+4, m.NumEdges())
	_, found := m.Face(container)
	assert.False(t, found, "the container is replaced by its two halves")

	halves := map[mesh.FaceID]bool{}
	for _, e := range inner {
		f := m.Left(m.Twin(e))
		require.True(t, m.ProperFace(f), "rim edge %d borders a proper face", e)
		halves[f] = true
	}
	require.Len(t, halves, 2)
	total := 0.0
	for f := range halves {
		total += geom.SignedArea(m.BoundaryPoints(m.MustFace(f).Edge))
	}
	assert.InDelta(t, 100-16, total, 1e-9)
	assert.True(t, m.MustFace(hole).Hole)
	assert.Equal(t, 3, m.NumFaces())
	requireValid(t, m)
}

func TestBridgeAvoidsCrossing(t *testing.T) {
	m := newMesh()
	polygon(t, m, square(0, 0, 10, 10)...)
	inner := polygon(t, m, square(4, 4, 6, 6)...)
	// a wall between the hole and the left side of the container
	a, err := m.AddVertex(geom.V2(2, 1), nil)
	require.NoError(t, err)
	b, err := m.AddVertex(geom.V2(2, 9), nil)
	require.NoError(t, err)
	_, err = m.Connect(a, b, nil, nil)
	require.NoError(t, err)

	_, err = CreateFaces(m)
	require.NoError(t, err)
	hole := m.Left(inner[0])
	ok, err := SingleCloseHole(m, hole)
	require.NoError(t, err)
	require.True(t, ok)

	wall := geom.Segment{A: geom.V2(2, 1), B: geom.V2(2, 9)}
	for _, e := range m.Edges() {
		if m.Origin(e) == a || m.Destination(e) == a || m.Origin(e) == b || m.Destination(e) == b {
			continue
		}
		assert.False(t, m.Segment(e).Crosses(wall), "edge %d crosses the wall", e)
	}
	requireValid(t, m)
}

func TestClassifyMonotonicity(t *testing.T) {
	t.Run("merge and start", func(t *testing.T) {
		m := newMesh()
		es := polygon(t, m, geom.V2(0, 0), geom.V2(4, 0), geom.V2(4, 4), geom.V2(2, 2), geom.V2(0, 4))
		got, err := ClassifyMonotonicity(m, m.Left(es[0]), nil)
		require.NoError(t, err)
		kinds := make([]VertexKind, len(got))
		for i, c := range got {
			kinds[i] = c.Kind
			assert.Equal(t, es[i], c.Edge)
		}
		assert.Equal(t, []VertexKind{Regular, End, Start, Merge, Start}, kinds)
	})
	t.Run("split", func(t *testing.T) {
		m := newMesh()
		es := polygon(t, m, geom.V2(0, 0), geom.V2(2, 2), geom.V2(4, 0), geom.V2(4, 4), geom.V2(0, 4))
		got, err := ClassifyMonotonicity(m, m.Left(es[0]), nil)
		require.NoError(t, err)
		assert.Equal(t, Split, got[1].Kind)
	})
	t.Run("holes inverted", func(t *testing.T) {
		m := newMesh()
		outer := polygon(t, m, square(0, 0, 10, 10)...)
		polygon(t, m, square(3, 3, 7, 7)...)
		_, err := CreateFaces(m)
		require.NoError(t, err)

		got, err := ClassifyMonotonicity(m, m.Left(outer[0]), DefaultSweep)
		require.NoError(t, err)
		require.Len(t, got, 8)
		byPos := make(map[geom.Vec]VertexKind)
		for _, c := range got {
			byPos[m.Position(c.Vertex)] = c.Kind
		}
		assert.Equal(t, Start, byPos[geom.V2(0, 10)])
		assert.Equal(t, End, byPos[geom.V2(10, 0)])
		assert.Equal(t, Regular, byPos[geom.V2(0, 0)])
		assert.Equal(t, Split, byPos[geom.V2(3, 7)])
		assert.Equal(t, Merge, byPos[geom.V2(7, 3)])
	})
	t.Run("unknown face", func(t *testing.T) {
		_, err := ClassifyMonotonicity(newMesh(), mesh.FaceID(3), nil)
		assert.ErrorIs(t, err, mesh.ErrNotFound)
	})
	assert.Equal(t, "merge", Merge.String())
}
