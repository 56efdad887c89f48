// Package tessellate walks the faces of a mesh and produces triangle meshes,
// either flat in the face plane or extruded into solids through a geometry
// kernel. Flat and Extrude produce one triangle mesh per proper face; Solid
// unions the extruded faces into one part.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/mesh"
)

// ErrOpenHoles is returned by Flat for a face that still has holes not
// bridged into its boundary.
var ErrOpenHoles = errors.New("tessellate: face has open holes")

// openHoles returns the boundaries of the hole faces under f whose rims
// are not yet part of f's own boundary.
func openHoles(m *mesh.Mesh, f mesh.FaceID) [][]geom.Vec {
	var holes [][]geom.Vec
	for _, id := range m.Faces() {
		h := m.MustFace(id)
		if !h.Hole || h.Parent != f {
			continue
		}
		if m.OwnerFace(m.Twin(h.Edge)) == f {
			continue
		}
		holes = append(holes, m.BoundaryPoints(h.Edge))
	}
	return holes
}

func faceName(f mesh.Face) string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID.String()
}

// Flat triangulates every proper face of m in its own plane. Faces whose
// holes are still open must be bridged first (see ops.CloseHoles). The
// tessellator is read-only and never mutates the mesh.
func Flat(m *mesh.Mesh) ([]*kernel.Mesh, error) {
	if m == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	for _, id := range m.Faces() {
		if !m.ProperFace(id) {
			continue
		}
		f := m.MustFace(id)
		if holes := openHoles(m, id); len(holes) > 0 {
			return nil, fmt.Errorf("tessellate: face %s: %d holes: %w", faceName(f), len(holes), ErrOpenHoles)
		}
		out := &kernel.Mesh{FaceName: faceName(f)}
		for _, tri := range geom.Triangulate(m.BoundaryPoints(f.Edge)) {
			out.AddTriangle(tri[0], tri[1], tri[2], tri.Normal())
		}
		meshes = append(meshes, out)
	}
	return meshes, nil
}

// extrudeFace builds the solid of f and moves it onto the plane of its
// boundary.
func extrudeFace(m *mesh.Mesh, k kernel.Kernel, f mesh.Face, height float64) (kernel.Solid, error) {
	outline := m.BoundaryPoints(f.Edge)
	solid, err := k.Extrude(outline, openHoles(m, f.ID), height)
	if err != nil {
		return nil, fmt.Errorf("tessellate: extrude face %s: %w", faceName(f), err)
	}
	if z := outline[0].Z; z != 0 {
		solid = k.Translate(solid, 0, 0, z)
	}
	return solid, nil
}

// Extrude lifts every proper face of m by height with the kernel k. Open
// holes under a face are cut out of its solid.
func Extrude(m *mesh.Mesh, k kernel.Kernel, height float64) ([]*kernel.Mesh, error) {
	if m == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	for _, id := range m.Faces() {
		if !m.ProperFace(id) {
			continue
		}
		f := m.MustFace(id)
		solid, err := extrudeFace(m, k, f, height)
		if err != nil {
			return nil, err
		}
		out, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for face %s: %w", faceName(f), err)
		}
		out.FaceName = faceName(f)
		meshes = append(meshes, out)
	}
	return meshes, nil
}

// SolidName is the face name given to the mesh Solid returns.
const SolidName = "solid"

// Solid extrudes every proper face of m like Extrude and unions the solids
// into a single part. It returns nil when m has no proper face.
func Solid(m *mesh.Mesh, k kernel.Kernel, height float64) (*kernel.Mesh, error) {
	if m == nil {
		return nil, nil
	}
	var part kernel.Solid
	for _, id := range m.Faces() {
		if !m.ProperFace(id) {
			continue
		}
		solid, err := extrudeFace(m, k, m.MustFace(id), height)
		if err != nil {
			return nil, err
		}
		if part == nil {
			part = solid
		} else {
			part = k.Union(part, solid)
		}
	}
	if part == nil {
		return nil, nil
	}
	out, err := k.ToMesh(part)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for the union: %w", err)
	}
	out.FaceName = SolidName
	return out, nil
}
