// Package mesh is a planar half-edge mesh that builds its faces
// incrementally.
//
// Vertices are added by position and joined with Connect, which creates a
// pair of twin half-edges. Every half-edge always has a next edge: when an
// edge is connected it is spliced into the rotation at both endpoints by
// angle, and every closed counterclockwise cycle that results gets a face.
// All elements are mirrored into an octree for hotzone queries and for the
// exact-position duplicate check.
//
// Handles are plain integer ids. The zero handle (NoVertex, NoEdge, NoFace)
// means absent; InfinityFace and HoleFace are reserved face labels that
// never have a boundary.
//
// A Mesh is not safe for concurrent mutation.
package mesh
