// Package ops holds batch passes over a mesh: cycle discovery, the
// containment hierarchy, face reconstruction with hole detection, hole
// closing and monotonicity classification.
//
// The passes never create or remove vertices. They link and unlink faces
// and add bridge edges.
package ops
