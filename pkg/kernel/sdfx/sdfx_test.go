package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/facet/pkg/geom"
)

// testCells keeps marching cubes cheap; the assertions only need coarse
// geometry.
const testCells = 40

func square(x0, y0, x1, y1 float64) []geom.Vec {
	return []geom.Vec{geom.V2(x0, y0), geom.V2(x1, y0), geom.V2(x1, y1), geom.V2(x0, y1)}
}

func TestExtrudeSquare(t *testing.T) {
	k := New(testCells)
	s, err := k.Extrude(square(0, 0, 10, 10), nil, 2)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	min, max := s.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{10, 10, 2}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}

	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}

func TestExtrudeWithHole(t *testing.T) {
	k := New(testCells)

	plain, err := k.Extrude(square(0, 0, 10, 10), nil, 2)
	if err != nil {
		t.Fatalf("Extrude(plain) failed: %v", err)
	}
	plainMesh, err := k.ToMesh(plain)
	if err != nil {
		t.Fatalf("ToMesh(plain) failed: %v", err)
	}

	holed, err := k.Extrude(square(0, 0, 10, 10), [][]geom.Vec{square(3, 3, 7, 7)}, 2)
	if err != nil {
		t.Fatalf("Extrude(holed) failed: %v", err)
	}
	holedMesh, err := k.ToMesh(holed)
	if err != nil {
		t.Fatalf("ToMesh(holed) failed: %v", err)
	}
	// The hole adds inner walls.
	if holedMesh.TriangleCount() <= plainMesh.TriangleCount() {
		t.Fatalf("holed (%d triangles) should have more triangles than plain (%d triangles)",
			holedMesh.TriangleCount(), plainMesh.TriangleCount())
	}
}

func TestExtrudeDegenerate(t *testing.T) {
	k := New(testCells)
	if _, err := k.Extrude(square(0, 0, 1, 1)[:2], nil, 1); !errors.Is(err, ErrDegenerate) {
		t.Errorf("two points: err = %v, want ErrDegenerate", err)
	}
	if _, err := k.Extrude(square(0, 0, 1, 1), nil, 0); !errors.Is(err, ErrDegenerate) {
		t.Errorf("zero height: err = %v, want ErrDegenerate", err)
	}
}

func TestExtrudeIgnoresOutlineZ(t *testing.T) {
	k := New(testCells)
	outline := []geom.Vec{geom.V(0, 0, 5), geom.V(4, 0, 5), geom.V(0, 4, 5)}
	s, err := k.Extrude(outline, nil, 1)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	min, max := s.BoundingBox()
	if math.Abs(min[2]) > 0.01 || math.Abs(max[2]-1) > 0.01 {
		t.Errorf("z range = [%f, %f], expected [0, 1]", min[2], max[2])
	}

	min, max = k.Translate(s, 0, 0, 5).BoundingBox()
	if math.Abs(min[2]-5) > 0.01 || math.Abs(max[2]-6) > 0.01 {
		t.Errorf("raised z range = [%f, %f], expected [5, 6]", min[2], max[2])
	}
}

func TestUnionAndTranslate(t *testing.T) {
	k := New(testCells)
	a, err := k.Extrude(square(0, 0, 5, 5), nil, 1)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	b := k.Translate(a, 10, 0, 0)
	min, max := b.BoundingBox()

	const tol = 0.01
	if math.Abs(min[0]-10) > tol || math.Abs(max[0]-15) > tol {
		t.Errorf("translated x range = [%f, %f], expected [10, 15]", min[0], max[0])
	}

	u := k.Union(a, b)
	min, max = u.BoundingBox()
	if math.Abs(min[0]) > tol || math.Abs(max[0]-15) > tol {
		t.Errorf("union x range = [%f, %f], expected [0, 15]", min[0], max[0])
	}
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestNewDefaultsCells(t *testing.T) {
	if k := New(0); k.cells != DefaultMeshCells {
		t.Errorf("cells = %d, want %d", k.cells, DefaultMeshCells)
	}
}
