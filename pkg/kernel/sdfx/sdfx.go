// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel rendering with the given number of marching cubes
// cells along the longest axis. cells <= 0 selects DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// ErrDegenerate is returned for outlines with fewer than three points or
// no positive height.
var ErrDegenerate = errors.New("sdfx: degenerate outline")

func polygon2D(pts []geom.Vec) (sdf.SDF2, error) {
	vs := make([]v2.Vec, len(pts))
	for i, p := range pts {
		vs[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	return sdf.Polygon2D(vs)
}

// Extrude builds the 2D profile, cuts the holes out of it and extrudes it.
// sdf.Extrude3D centers the solid on z=0, so it is shifted up by half the
// height.
func (k *SdfxKernel) Extrude(outline []geom.Vec, holes [][]geom.Vec, height float64) (kernel.Solid, error) {
	if len(outline) < 3 || height <= 0 {
		return nil, fmt.Errorf("extrude %d points by %g: %w", len(outline), height, ErrDegenerate)
	}
	profile, err := polygon2D(outline)
	if err != nil {
		return nil, fmt.Errorf("sdfx: outline: %w", err)
	}
	for i, h := range holes {
		if len(h) < 3 {
			continue
		}
		cut, err := polygon2D(h)
		if err != nil {
			return nil, fmt.Errorf("sdfx: hole %d: %w", i, err)
		}
		profile = sdf.Difference2D(profile, cut)
	}
	solid := sdf.Extrude3D(profile, height)
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(solid, m)), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	mesh := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for _, tri := range triangles {
		mesh.AddTriangle(tri[0], tri[1], tri[2], tri.Normal())
	}
	return mesh, nil
}
