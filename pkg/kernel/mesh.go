package kernel

import "github.com/chazu/facet/pkg/geom"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	FaceName string    `json:"faceName"` // which mesh face this came from
}

// AddTriangle appends an unshared triangle with a flat normal.
func (m *Mesh) AddTriangle(a, b, c, normal geom.Vec) {
	base := uint32(m.VertexCount())
	for _, v := range [3]geom.Vec{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the box around all vertices. ok is false for an empty
// mesh.
func (m *Mesh) Bounds() (box geom.AlignedCube, ok bool) {
	if m.IsEmpty() {
		return geom.AlignedCube{}, false
	}
	pts := make([]geom.Vec, 0, m.VertexCount())
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		pts = append(pts, geom.V(float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])))
	}
	return geom.Bounds(pts), true
}
