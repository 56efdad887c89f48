package geom

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertVec(t *testing.T, want, got Vec) {
	t.Helper()
	assert.Truef(t, Approx(want, got, 1e-6), "want %v, got %v", want, got)
}

func TestAngle3p(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Vec
		want    float64
	}{
		{"square corner", V2(0, 0), V2(1, 0), V2(1, 1), math.Pi / 2},
		{"reflex corner", V2(0, 0), V2(1, 0), V2(1, -1), 3 * math.Pi / 2},
		{"straight", V2(0, 0), V2(1, 0), V2(2, 0), math.Pi},
		{"reversal is a full turn", V2(0, 0), V2(1, 0), V2(0.5, 0), 2 * math.Pi},
		{"triangle corner", V2(0, 0), V2(1, 0), V2(0, 1), math.Pi / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Angle3p(tt.a, tt.b, tt.c), tol)
		})
	}
}

func TestLessAndIsLeft(t *testing.T) {
	assert.True(t, Less(V(0, 5, 5), V(1, 0, 0)))
	assert.True(t, Less(V(1, 0, 5), V(1, 1, 0)))
	assert.False(t, Less(V(1, 1, 1), V(1, 1, 1)))
	assert.Equal(t, 0, Compare(V(1, 2, 3), V(1, 2, 3)))

	assert.Greater(t, IsLeft(V2(0, 0), V2(1, 0), V2(0, 1)), 0.0)
	assert.Less(t, IsLeft(V2(0, 0), V2(1, 0), V2(0, -1)), 0.0)
	assert.Zero(t, IsLeft(V2(0, 0), V2(1, 0), V2(3, 0)))
}

// The affine constructors must agree with sdfx's M44 on points.
func TestMatrixAgreesWithSdfx(t *testing.T) {
	points := []Vec{V(0, 0, 0), V(1, 2, 3), V(-4, 0.5, 7)}
	axis := V(1, 2, 3)
	tests := []struct {
		name string
		ours Matrix
		ref  sdf.M44
	}{
		{"translate", Translate(V(3, -2, 1)), sdf.Translate3d(V(3, -2, 1))},
		{"scale", Scale(V(2, 3, 0.5)), sdf.Scale3d(V(2, 3, 0.5))},
		{"rotate z", Rotate(V(0, 0, 1), math.Pi/2), sdf.RotateZ(math.Pi / 2)},
		{"rotate axis", Rotate(axis, 0.7), sdf.Rotate3d(axis, 0.7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range points {
				assertVec(t, tt.ref.MulPosition(p), tt.ours.MulPoint(p))
			}
		})
	}
}

func TestMatrixAlgebra(t *testing.T) {
	m := MatrixFromColumns([]float64{1, 3}, []float64{2, 4})
	assert.InDelta(t, -2, m.Det2(), tol)
	assert.Equal(t, 2.0, m.At(1, 0))
	assert.Equal(t, 3.0, m.Transpose().At(1, 0))

	id := Identity(2)
	assert.True(t, m.Mul(id).ApproxEqual(m, tol))
	assert.Equal(t, []float64{5, 11}, m.MulVec([]float64{1, 2}))

	m3 := MatrixFromColumns([]float64{2, 0, 1}, []float64{0, 3, 0}, []float64{1, 0, 4})
	assert.InDelta(t, 21, m3.Det3(), tol)

	xf := Translate(V(1, 2, 3)).Mul(Rotate(V(0, 1, 0), 0.3)).Mul(Scale(V(2, 2, 2)))
	inv, ok := xf.Inverse4()
	require.True(t, ok)
	assert.True(t, xf.Mul(inv).ApproxEqual(Identity(4), 1e-9))
	assert.True(t, inv.Mul(xf).ApproxEqual(Identity(4), 1e-9))

	_, ok = Scale(V(1, 0, 1)).Inverse4()
	assert.False(t, ok)

	assert.Panics(t, func() { m.Mul(m3) })
}

func TestCameraMatrices(t *testing.T) {
	view := LookAt(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0))
	assertVec(t, V(0, 0, 0), view.MulPoint(V(0, 0, 5)))
	assertVec(t, V(0, 0, -5), view.MulPoint(V(0, 0, 0)))
	assertVec(t, V(0, 1, -5), view.MulPoint(V(0, 1, 0)))

	proj := Perspective(math.Pi/2, 1, 1, 10)
	assert.InDelta(t, -1, proj.MulPoint(V(0, 0, -1)).Z, 1e-9)
	assert.InDelta(t, 1, proj.MulPoint(V(0, 0, -10)).Z, 1e-9)
}

func TestCubeSplit(t *testing.T) {
	c := Cube(V(2, 2, 2), V(-2, -2, -2))
	assert.Equal(t, V(-2, -2, -2), c.Min)

	kids := c.Split()
	union := kids[0]
	for _, k := range kids {
		assert.True(t, c.ContainsCube(k))
		assertVec(t, V(2, 2, 2), k.Size())
		union = union.Plus(k)
	}
	assert.Equal(t, c, union)
	assert.Equal(t, V(0, 0, 0), kids[0].Max)
	assert.Equal(t, V(0, 0, 0), kids[7].Min)
}

func TestCubeSetOps(t *testing.T) {
	a := Cube(V(0, 0, 0), V(2, 2, 2))
	b := Cube(V(1, 1, 1), V(3, 3, 3))
	in, ok := a.Minus(b)
	require.True(t, ok)
	assert.Equal(t, Cube(V(1, 1, 1), V(2, 2, 2)), in)

	_, ok = a.Minus(Cube(V(5, 5, 5), V(6, 6, 6)))
	assert.False(t, ok)

	assert.Equal(t, Cube(V(-1, -1, -1), V(3, 3, 3)), a.Scale(2))
	assert.True(t, a.Overlaps(Cube(V(2, 2, 2), V(4, 4, 4))), "touching faces overlap")

	flat := Cube(V(0, 0, 0), V(1, 1, 0)).EnsureVolume()
	assert.Less(t, flat.Min.Z, 0.0)
	assert.Greater(t, flat.Max.Z, 0.0)
	assert.Equal(t, 0.0, flat.Min.X)
}

func TestCubeRayIntersect(t *testing.T) {
	c := Cube(V(0, 0, 0), V(1, 1, 1))
	t0, t1, ok := c.Intersect(Ray{Origin: V(-1, 0.5, 0.5), Dir: V(1, 0, 0)})
	require.True(t, ok)
	assert.InDelta(t, 1, t0, tol)
	assert.InDelta(t, 2, t1, tol)

	_, _, ok = c.Intersect(Ray{Origin: V(-1, 2, 0.5), Dir: V(1, 0, 0)})
	assert.False(t, ok)

	r := Ray{Origin: V(0, 0, 0), Dir: V(1, 1, 0)}
	assertVec(t, V(2, 2, 0), r.At(2))
}

func TestCubeSegmentAndTriangle(t *testing.T) {
	c := Cube(V(0, 0, -1), V(1, 1, 1))
	assert.True(t, c.ContainsSegment(V(-1, 0.5, 0), V(2, 0.5, 0)), "passes through")
	assert.True(t, c.ContainsSegment(V(0.5, 0.5, 0), V(5, 5, 0)), "endpoint inside")
	assert.False(t, c.ContainsSegment(V(-1, 2, 0), V(2, 2, 0)))
	assert.False(t, c.ContainsSegment(V(2, -1, 0), V(3, 0.5, 0)))

	big := sdf.Triangle3{V(-10, -10, 0), V(10, -10, 0), V(0, 10, 0)}
	assert.True(t, c.OverlapsTriangle(big), "box inside triangle")
	far := sdf.Triangle3{V(5, 5, 0), V(6, 5, 0), V(5, 6, 0)}
	assert.False(t, c.OverlapsTriangle(far))
	diag := sdf.Triangle3{V(2.1, 0, 0), V(2.1, 2.1, 0), V(0, 2.1, 0)}
	assert.False(t, c.OverlapsTriangle(diag), "separated by an edge axis only")
	flat := Cube(V(0.2, 0.2, 0), V(0.3, 0.3, 0)).EnsureVolume()
	assert.True(t, flat.OverlapsTriangle(big))
}

func TestSegmentCrosses(t *testing.T) {
	s := Segment{A: V2(0, 0), B: V2(2, 2)}
	tests := []struct {
		name string
		o    Segment
		want bool
	}{
		{"proper crossing", Segment{A: V2(0, 2), B: V2(2, 0)}, true},
		{"disjoint", Segment{A: V2(3, 0), B: V2(4, 0)}, false},
		{"shared endpoint", Segment{A: V2(2, 2), B: V2(3, 0)}, false},
		{"shared endpoint overlapping", Segment{A: V2(0, 0), B: V2(1, 1)}, true},
		{"t junction", Segment{A: V2(1, 1), B: V2(3, 0)}, true},
		{"collinear apart", Segment{A: V2(3, 3), B: V2(4, 4)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Crosses(tt.o))
			assert.Equal(t, tt.want, tt.o.Crosses(s))
		})
	}
}

func TestTriangulate(t *testing.T) {
	area := func(tris []sdf.Triangle3) float64 {
		var sum float64
		for _, tr := range tris {
			sum += SignedArea(tr[:])
		}
		return sum
	}

	square := []Vec{V2(0, 0), V2(1, 0), V2(1, 1), V2(0, 1)}
	tris := Triangulate(square)
	assert.Len(t, tris, 2)
	assert.InDelta(t, 1, area(tris), tol)

	cw := []Vec{V2(0, 0), V2(0, 2), V2(2, 2), V2(2, 1), V2(1, 1), V2(1, 0)}
	tris = Triangulate(cw)
	assert.Len(t, tris, 4)
	assert.InDelta(t, 3, area(tris), tol)
	for _, tr := range tris {
		assert.Greater(t, SignedArea(tr[:]), 0.0)
	}

	assert.Nil(t, Triangulate(square[:2]))
}

func TestCurveFlatten(t *testing.T) {
	c := Line(V2(0, 0), V2(3, 0))
	pts := c.Flatten(3)
	require.Len(t, pts, 4)
	assertVec(t, V2(1, 0), pts[1])
	assertVec(t, V2(2, 0), pts[2])
	assert.Equal(t, V2(3, 0), pts[3])

	arc := Curve{P0: V2(0, 0), P1: V2(0, 1), P2: V2(1, 1), P3: V2(1, 0)}
	assertVec(t, V2(0.5, 0.75), arc.At(0.5))
	assert.Len(t, arc.Flatten(0), 2)
}
