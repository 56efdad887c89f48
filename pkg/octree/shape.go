package octree

import (
	"fmt"

	"github.com/chazu/facet/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// Kind distinguishes the three element kinds held by the tree.
type Kind uint8

const (
	Vertex Kind = iota
	Edge
	Face
)

func (k Kind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Edge:
		return "edge"
	case Face:
		return "face"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Element identifies one indexed item.
type Element struct {
	Kind Kind
	ID   int64
}

// Shape is the geometric footprint of an element: a point for vertices, a
// segment for edges, a boundary plus its triangulation for faces.
type Shape struct {
	Point     geom.Vec
	Segment   geom.Segment
	Boundary  []geom.Segment
	Triangles []sdf.Triangle3
}

// PointShape is the footprint of a vertex.
func PointShape(p geom.Vec) Shape {
	return Shape{Point: p}
}

// SegmentShape is the footprint of an edge.
func SegmentShape(a, b geom.Vec) Shape {
	return Shape{Segment: geom.Segment{A: a, B: b}}
}

// PolygonShape is the footprint of a face bounded by the closed polyline pts.
func PolygonShape(pts []geom.Vec) Shape {
	s := Shape{
		Boundary:  make([]geom.Segment, len(pts)),
		Triangles: geom.Triangulate(pts),
	}
	for i := range pts {
		s.Boundary[i] = geom.Segment{A: pts[i], B: pts[(i+1)%len(pts)]}
	}
	return s
}

// touches reports whether the footprint of an element of kind k meets box.
func (s Shape) touches(k Kind, box geom.AlignedCube) bool {
	switch k {
	case Vertex:
		return box.Contains(s.Point)
	case Edge:
		return box.ContainsSegment(s.Segment.A, s.Segment.B)
	case Face:
		for _, seg := range s.Boundary {
			if box.ContainsSegment(seg.A, seg.B) {
				return true
			}
		}
		for _, tri := range s.Triangles {
			if box.OverlapsTriangle(tri) {
				return true
			}
		}
	}
	return false
}
