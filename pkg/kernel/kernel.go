// Package kernel defines the solid-modelling interface used to turn planar
// mesh faces into printable geometry. The sdfx subpackage provides the
// implementation; the interface keeps the tessellator independent of it.
package kernel

import "github.com/chazu/facet/pkg/geom"

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids from planar outlines.
type Kernel interface {
	// Extrude lifts the outline, minus the holes, from z=0 to height.
	// Outline and holes are read in the XY plane and may be wound either
	// way; their Z is ignored.
	Extrude(outline []geom.Vec, holes [][]geom.Vec, height float64) (Solid, error)

	Union(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh converts a solid to triangles.
	ToMesh(s Solid) (*Mesh, error)
}
