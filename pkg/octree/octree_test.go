package octree

import (
	"math/rand"
	"testing"

	"github.com/chazu/facet/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vertex(id int64) Element { return Element{Kind: Vertex, ID: id} }
func edge(id int64) Element   { return Element{Kind: Edge, ID: id} }
func face(id int64) Element   { return Element{Kind: Face, ID: id} }

func TestRangeQueryScenario(t *testing.T) {
	tr := New(geom.Cube(geom.V(-1, -1, -1), geom.V(11, 11, 1)))
	require.True(t, tr.Insert(vertex(1), PointShape(geom.V(0, 0, 0))))
	require.True(t, tr.Insert(vertex(2), PointShape(geom.V(10, 10, 0))))

	got := tr.Query(geom.Cube(geom.V(-0.5, -0.5, -0.5), geom.V(0.5, 0.5, 0.5)))
	assert.Equal(t, []int64{1}, got.Vertices)
	assert.Empty(t, got.Edges)
	assert.Empty(t, got.Faces)
}

func TestInsertOutsideExtent(t *testing.T) {
	tr := New(geom.Cube(geom.V(0, 0, 0), geom.V(1, 1, 1)))
	assert.False(t, tr.Insert(vertex(1), PointShape(geom.V(2, 0, 0))))
	assert.False(t, tr.Has(vertex(1)))
	assert.Zero(t, tr.Len(Vertex))
}

func TestVertexAt(t *testing.T) {
	tr := New(geom.Cube(geom.V(-8, -8, -1), geom.V(8, 8, 1)), WithCellLoad(2))
	pts := []geom.Vec{geom.V2(0, 0), geom.V2(1, 1), geom.V2(-3, 2), geom.V2(5, -5), geom.V2(4, 4)}
	for i, p := range pts {
		require.True(t, tr.Insert(vertex(int64(i+1)), PointShape(p)))
	}
	require.Greater(t, tr.Depth(), 0, "tree should have split")

	for i, p := range pts {
		id, ok := tr.VertexAt(p)
		require.True(t, ok, "point %v", p)
		assert.Equal(t, int64(i+1), id)
	}
	_, ok := tr.VertexAt(geom.V2(0, 1e-12))
	assert.False(t, ok, "lookup is exact")
	_, ok = tr.VertexAt(geom.V2(100, 0))
	assert.False(t, ok)
}

func TestEdgeAndFaceFootprints(t *testing.T) {
	tr := New(geom.Cube(geom.V(-10, -10, -1), geom.V(10, 10, 1)))
	tr.Insert(edge(1), SegmentShape(geom.V2(-5, 0), geom.V2(5, 0)))
	tr.Insert(face(1), PolygonShape([]geom.Vec{
		geom.V2(-4, -4), geom.V2(4, -4), geom.V2(4, 4), geom.V2(-4, 4),
	}))

	// A hotzone strictly inside the square touches no boundary segment but
	// overlaps the triangulation.
	got := tr.Query(geom.CubeAround(geom.V2(2, 2), 0.5))
	assert.Equal(t, []int64{1}, got.Faces)
	assert.Empty(t, got.Edges)

	got = tr.Query(geom.CubeAround(geom.V2(0, 0), 0.5))
	assert.Equal(t, []int64{1}, got.Edges, "edge passes through the hotzone")

	got = tr.Query(geom.CubeAround(geom.V2(8, 8), 0.5))
	assert.Zero(t, got.Len())
}

func TestQueryMatchesBruteForce(t *testing.T) {
	extent := geom.Cube(geom.V(-50, -50, -1), geom.V(50, 50, 1))
	tr := New(extent, WithCellLoad(4))
	rnd := rand.New(rand.NewSource(7))
	shapes := map[Element]Shape{}
	rp := func() geom.Vec { return geom.V2(rnd.Float64()*100-50, rnd.Float64()*100-50) }

	for i := int64(1); i <= 200; i++ {
		e, s := vertex(i), PointShape(rp())
		if i%2 == 0 {
			a := rp()
			e, s = edge(i), SegmentShape(a, a.Add(geom.V2(rnd.Float64()*6-3, rnd.Float64()*6-3)).Min(extent.Max).Max(extent.Min))
		}
		require.True(t, tr.Insert(e, s))
		shapes[e] = s
	}
	// Remove a third to exercise collapse paths.
	for e := range shapes {
		if e.ID%3 == 0 {
			require.True(t, tr.Remove(e))
			delete(shapes, e)
		}
	}

	for q := 0; q < 50; q++ {
		box := geom.CubeAround(rp(), rnd.Float64()*10)
		want := Result{}
		for e, s := range shapes {
			if !s.touches(e.Kind, box) {
				continue
			}
			if e.Kind == Vertex {
				want.Vertices = append(want.Vertices, e.ID)
			} else {
				want.Edges = append(want.Edges, e.ID)
			}
		}
		got := tr.Query(box)
		assert.ElementsMatch(t, want.Vertices, got.Vertices)
		assert.ElementsMatch(t, want.Edges, got.Edges)
	}

	all := tr.Query(extent)
	assert.Equal(t, tr.Len(Vertex), len(all.Vertices))
	assert.Equal(t, tr.Len(Edge), len(all.Edges))
}

func TestRemoveCollapses(t *testing.T) {
	tr := New(geom.Cube(geom.V(-8, -8, -1), geom.V(8, 8, 1)), WithCellLoad(1))
	for i := int64(1); i <= 6; i++ {
		tr.Insert(vertex(i), PointShape(geom.V2(float64(i), float64(-i))))
	}
	require.Greater(t, tr.Depth(), 0)

	for i := int64(1); i <= 6; i++ {
		assert.True(t, tr.Remove(vertex(i)))
	}
	assert.False(t, tr.Remove(vertex(1)), "second removal is a no-op")
	assert.Equal(t, 0, tr.Depth(), "empty branches collapse back to a leaf")
	assert.Zero(t, tr.Query(tr.Extent()).Len())
}

func TestCollapseLoad(t *testing.T) {
	tr := New(geom.Cube(geom.V(-8, -8, -1), geom.V(8, 8, 1)), WithCellLoad(2), WithCollapseLoad(2))
	for i := int64(1); i <= 4; i++ {
		tr.Insert(vertex(i), PointShape(geom.V2(float64(i), float64(i))))
	}
	require.Greater(t, tr.Depth(), 0)

	tr.Remove(vertex(1))
	tr.Remove(vertex(2))
	assert.Equal(t, 0, tr.Depth())
	got := tr.Query(tr.Extent())
	assert.Equal(t, []int64{3, 4}, got.Vertices)
}

func TestMaxDepthBoundsCoincidentSplits(t *testing.T) {
	tr := New(geom.Cube(geom.V(-1, -1, -1), geom.V(1, 1, 1)), WithCellLoad(1), WithMaxDepth(3))
	for i := int64(1); i <= 5; i++ {
		tr.Insert(edge(i), SegmentShape(geom.V2(-0.5, 0), geom.V2(0.5, 0)))
	}
	assert.LessOrEqual(t, tr.Depth(), 3)
	assert.Len(t, tr.Query(tr.Extent()).Edges, 5)
}

func TestReinsertReplacesShape(t *testing.T) {
	tr := New(geom.Cube(geom.V(-8, -8, -1), geom.V(8, 8, 1)))
	tr.Insert(vertex(1), PointShape(geom.V2(1, 1)))
	tr.Insert(vertex(1), PointShape(geom.V2(-5, -5)))
	assert.Equal(t, 1, tr.Len(Vertex))
	_, ok := tr.VertexAt(geom.V2(1, 1))
	assert.False(t, ok)
	id, ok := tr.VertexAt(geom.V2(-5, -5))
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}
