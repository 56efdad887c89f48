package mesh

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/logging"
	"github.com/chazu/facet/pkg/octree"
)

// Face returns a copy of the face record. Reserved labels are never found.
func (m *Mesh) Face(id FaceID) (Face, bool) {
	f, ok := m.faces[id]
	if !ok {
		return Face{}, false
	}
	return *f, true
}

// MustFace is Face for handles known to be valid.
func (m *Mesh) MustFace(id FaceID) Face {
	f, ok := m.Face(id)
	if !ok {
		panic(fmt.Sprintf("mesh: no face %v", id))
	}
	return f
}

// Faces returns all face ids in ascending order.
func (m *Mesh) Faces() []FaceID {
	ids := lo.Keys(m.faces)
	slices.Sort(ids)
	return ids
}

// NumFaces returns the number of faces, holes included.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// ProperFace reports whether f is a real face that is not a hole.
func (m *Mesh) ProperFace(f FaceID) bool {
	face, ok := m.faces[f]
	return ok && !face.Hole
}

// FaceBoundary returns the boundary cycle of f.
func (m *Mesh) FaceBoundary(f FaceID) []EdgeID {
	face, ok := m.faces[f]
	if !ok {
		return nil
	}
	return m.Boundary(face.Edge)
}

// OwnerFace returns the face whose boundary is the cycle through e, or
// NoFace. Unlike Left it ignores cycles that merely border a face.
func (m *Mesh) OwnerFace(e EdgeID) FaceID {
	c, ok := m.walk(e)
	if !ok {
		return NoFace
	}
	return m.boundaryOwner(c)
}

// ---------------------------------------------------------------------------
// Face linkage
// ---------------------------------------------------------------------------

// LinkFace gives the cycle through e a face. If the cycle already bounds a
// face that face is returned unchanged.
func (m *Mesh) LinkFace(e EdgeID) (FaceID, error) {
	c, ok := m.walk(e)
	if !ok {
		return NoFace, fmt.Errorf("link face at half-edge %d: not a closed cycle: %w", e, ErrInvalidState)
	}
	if f := m.boundaryOwner(c); f != NoFace {
		return f, nil
	}
	return m.newFace(rotateToMin(c), nil), nil
}

// UnlinkFace clears the left label of every boundary edge of f and drops f
// from the face store and the octree. Cycles that only bordered f move to
// its parent.
func (m *Mesh) UnlinkFace(f FaceID) error {
	face, ok := m.faces[f]
	if !ok {
		return fmt.Errorf("unlink face %v: %w", f, ErrNotFound)
	}
	if c, ok := m.walk(face.Edge); ok {
		for _, e := range c {
			if m.edges[e].Left == f {
				m.edges[e].Left = NoFace
			}
		}
	}
	m.dropFace(f)
	m.reparent(f, face.Parent)
	m.adopt(map[FaceID]*Face{f: face}, nil)
	return nil
}

// SetHole marks or clears the hole flag of f.
func (m *Mesh) SetHole(f FaceID, hole bool) error {
	face, ok := m.faces[f]
	if !ok {
		return fmt.Errorf("set hole on face %v: %w", f, ErrNotFound)
	}
	face.Hole = hole
	return nil
}

// SetParent records the enclosing face of f.
func (m *Mesh) SetParent(f, parent FaceID) error {
	face, ok := m.faces[f]
	if !ok {
		return fmt.Errorf("set parent of face %v: %w", f, ErrNotFound)
	}
	if f == parent {
		return fmt.Errorf("set parent of face %v to itself: %w", f, ErrInvalidState)
	}
	if !parent.Reserved() {
		if _, ok := m.faces[parent]; !ok {
			return fmt.Errorf("set parent of face %v: parent %v: %w", f, parent, ErrNotFound)
		}
	}
	face.Parent = parent
	return nil
}

// SetFaceName renames f.
func (m *Mesh) SetFaceName(f FaceID, name string) error {
	face, ok := m.faces[f]
	if !ok {
		return fmt.Errorf("rename face %v: %w", f, ErrNotFound)
	}
	face.Name = name
	return nil
}

// SetFacePayload replaces the payload of f.
func (m *Mesh) SetFacePayload(f FaceID, payload any) error {
	face, ok := m.faces[f]
	if !ok {
		return fmt.Errorf("set payload of face %v: %w", f, ErrNotFound)
	}
	face.Payload = payload
	return nil
}

// SetBoundaryLeft labels every edge on the cycle through e with f. It is
// meant for cycles that bound no face of their own, such as the clockwise
// rim of an island, which borders the face around it.
func (m *Mesh) SetBoundaryLeft(e EdgeID, f FaceID) error {
	c, ok := m.walk(e)
	if !ok {
		return fmt.Errorf("label cycle at half-edge %d: not a closed cycle: %w", e, ErrInvalidState)
	}
	if owner := m.boundaryOwner(c); owner != NoFace && owner != f {
		return fmt.Errorf("label cycle at half-edge %d: cycle bounds face %v: %w", e, owner, ErrInvalidState)
	}
	if !f.Reserved() {
		if _, ok := m.faces[f]; !ok {
			return fmt.Errorf("label cycle at half-edge %d: face %v: %w", e, f, ErrNotFound)
		}
	}
	for _, id := range c {
		m.edges[id].Left = f
	}
	return nil
}

// boundaryOwner returns the face whose boundary edge lies on cycle.
func (m *Mesh) boundaryOwner(cycle []EdgeID) FaceID {
	for _, e := range cycle {
		if f := m.edges[e].Left; !f.Reserved() {
			if face, ok := m.faces[f]; ok && slices.Contains(cycle, face.Edge) {
				return f
			}
		}
	}
	return NoFace
}

// boundedFaces returns the faces whose boundary runs through any of the
// cycles containing edges.
func (m *Mesh) boundedFaces(edges ...EdgeID) map[FaceID]*Face {
	on := make(map[EdgeID]bool)
	for _, c := range m.cycles(edges) {
		for _, e := range c {
			on[e] = true
		}
	}
	stale := make(map[FaceID]*Face)
	for e := range on {
		if f := m.edges[e].Left; !f.Reserved() {
			if face, ok := m.faces[f]; ok && on[face.Edge] {
				stale[f] = face
			}
		}
	}
	return stale
}

// rebuild relabels the cycles through seeds after a splice. The faces in
// stale lost their boundary and are dropped. Each resulting counterclockwise
// cycle gets a new face that takes over the name, payload, parent and hole
// flag of the stale face it grew out of, or asks the factory for a payload
// when there is none. Any other cycle keeps the outer label it carried.
func (m *Mesh) rebuild(seeds []EdgeID, stale map[FaceID]*Face) {
	type plan struct {
		cycle   []EdgeID
		inside  bool
		src     *Face
		ambient FaceID
	}
	var plans []plan
	for _, c := range m.cycles(seeds) {
		p := plan{cycle: c, inside: m.insideLooking(c)}
		for _, e := range c {
			l := m.edges[e].Left
			if l == NoFace {
				continue
			}
			if f, ok := stale[l]; ok {
				if p.src == nil {
					p.src = f
				}
				continue
			}
			if _, ok := m.faces[l]; p.ambient == NoFace && (ok || l.Reserved()) {
				p.ambient = l
			}
		}
		plans = append(plans, p)
	}

	ids := slices.Sorted(maps.Keys(stale))
	for _, f := range ids {
		m.dropFace(f)
	}

	successors := make(map[FaceID][]FaceID)
	for _, p := range plans {
		if !p.inside {
			for _, e := range p.cycle {
				m.edges[e].Left = p.ambient
			}
			continue
		}
		id := m.newFace(p.cycle, p.src)
		if p.src != nil {
			successors[p.src.ID] = append(successors[p.src.ID], id)
		}
	}
	for _, f := range ids {
		to := stale[f].Parent
		if next := successors[f]; len(next) > 0 {
			to = next[0]
		}
		m.reparent(f, to)
	}
	m.adopt(stale, successors)
}

// adopt relabels the cycles that still border a dropped face, such as a
// dangling wall or the rim of an island inside it. Each moves to the
// successor of that face which encloses it or, when the face left no
// successor, to the nearest parent that survived. A face with no parent left gives way to InfinityFace.
func (m *Mesh) adopt(dropped map[FaceID]*Face, successors map[FaceID][]FaceID) {
	if len(dropped) == 0 {
		return
	}
	for _, id := range m.Edges() {
		f := m.edges[id].Left
		old, ok := dropped[f]
		if !ok {
			continue
		}
		cycle, closed := m.walk(id)
		if !closed {
			cycle = []EdgeID{id}
		}
		to := m.enclosingFace(cycle, successors[f])
		if to == NoFace {
			to = old.Parent
			for range len(dropped) {
				up, gone := dropped[to]
				if !gone {
					break
				}
				to = up.Parent
			}
		}
		if _, gone := dropped[to]; gone || to == NoFace {
			to = InfinityFace
		}
		for _, e := range cycle {
			if m.edges[e].Left == f {
				m.edges[e].Left = to
			}
		}
	}
}

// enclosingFace returns the candidate whose boundary encloses cycle, judged
// by the first vertex of cycle that is not on that boundary. Without a clear
// winner the first candidate is taken.
func (m *Mesh) enclosingFace(cycle []EdgeID, candidates []FaceID) FaceID {
	if len(candidates) == 1 {
		return candidates[0]
	}
	for _, f := range candidates {
		face, ok := m.faces[f]
		if !ok {
			continue
		}
		poly := m.BoundaryPoints(face.Edge)
		for _, e := range cycle {
			p := m.Position(m.edges[e].Origin)
			if slices.ContainsFunc(poly, func(q geom.Vec) bool { return geom.Exact(p, q) }) {
				continue
			}
			if geom.Winding(p, poly) != 0 {
				return f
			}
			break
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return NoFace
}

// newFace stores a face bounded by cycle and labels the cycle with it.
func (m *Mesh) newFace(cycle []EdgeID, src *Face) FaceID {
	m.lastFace++
	f := &Face{ID: m.lastFace, Edge: cycle[0]}
	if src != nil {
		f.Name, f.Payload, f.Parent, f.Hole = src.Name, src.Payload, src.Parent, src.Hole
	} else {
		f.Name = fmt.Sprintf("face-%d", f.ID)
		f.Payload = m.factory(cycle[0], NoFace)
	}
	m.faces[f.ID] = f
	for _, e := range cycle {
		m.edges[e].Left = f.ID
	}
	m.index.Insert(octree.Element{Kind: octree.Face, ID: int64(f.ID)}, octree.PolygonShape(m.BoundaryPoints(cycle[0])))
	logging.Logger().Debug("mesh: face linked", "face", f.ID, "edges", len(cycle), "inherited", src != nil)
	m.emit(Event{Type: FaceAdded, Face: f.ID})
	return f.ID
}

// dropFace removes f from the store and the octree without touching edge
// labels.
func (m *Mesh) dropFace(f FaceID) {
	delete(m.faces, f)
	m.index.Remove(octree.Element{Kind: octree.Face, ID: int64(f)})
	logging.Logger().Debug("mesh: face unlinked", "face", f)
	m.emit(Event{Type: FaceRemoved, Face: f})
}

// reparent moves the children of a removed face to another parent.
func (m *Mesh) reparent(from, to FaceID) {
	for _, face := range m.faces {
		if face.Parent == from {
			face.Parent = to
		}
	}
}
