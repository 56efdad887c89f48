// Package geom provides the value-type geometry used by the mesh and the
// octree: vectors (sdfx v3.Vec), dense matrices, axis-aligned cubes,
// segments, rays, Bézier curves and polygon triangulation.
//
// The mesh is planar. Z is carried so that bounding volumes stay proper
// 3D boxes, but all orientation tests work on X and Y.
package geom
