package ops

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// WindingNumber counts how many times the boundary cycle through edge
// winds around p, positive for counterclockwise. Zero means p is outside.
func WindingNumber(m *mesh.Mesh, p geom.Vec, boundary mesh.EdgeID) int {
	return Winding(p, m.BoundaryPoints(boundary))
}

// Winding is the crossing-number winding of the closed polygon poly around
// p in the XY plane.
func Winding(p geom.Vec, poly []geom.Vec) int {
	return geom.Winding(p, poly)
}

// interiorPoint returns a point strictly inside the polygon, the centroid of
// its first ear.
func interiorPoint(poly []geom.Vec) (geom.Vec, bool) {
	tris := geom.Triangulate(poly)
	if len(tris) == 0 {
		return geom.Vec{}, false
	}
	t := tris[0]
	return t[0].Add(t[1]).Add(t[2]).MulScalar(1.0 / 3), true
}
