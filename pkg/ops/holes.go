package ops

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/logging"
	"github.com/chazu/facet/pkg/mesh"
)

// bridge is a candidate segment from a container vertex to a hole vertex.
type bridge struct {
	from, to mesh.EdgeID // edges whose origins are joined
	seg      geom.Segment
}

// holeSetup gathers what bridging a hole needs. ok is false when the hole
// is not open: its rim is already spliced into another cycle or nothing
// encloses it.
type holeSetup struct {
	hole      *cycleInfo
	container *cycleInfo
	rim       []mesh.EdgeID
}

func setupHole(m *mesh.Mesh, hole mesh.FaceID) (holeSetup, bool, error) {
	f, ok := m.Face(hole)
	if !ok {
		return holeSetup{}, false, fmt.Errorf("hole %v: %w", hole, mesh.ErrNotFound)
	}
	if !f.Hole {
		return holeSetup{}, false, fmt.Errorf("face %v is not a hole: %w", hole, mesh.ErrInvalidState)
	}
	rim := m.Boundary(m.Twin(f.Edge))
	if rim == nil || m.InsideLooking(rim[0]) {
		return holeSetup{}, false, nil
	}
	for _, e := range rim {
		if m.Left(m.Twin(e)) != hole {
			return holeSetup{}, false, nil
		}
	}

	h := newCycleInfo(m, f.Edge)
	var containers []*cycleInfo
	for _, fid := range m.Faces() {
		if fid == hole || !m.ProperFace(fid) {
			continue
		}
		c := newCycleInfo(m, m.MustFace(fid).Edge)
		if c.encloses(m, h, false) {
			containers = append(containers, c)
		}
	}
	c := innermost(containers)
	if c == nil {
		return holeSetup{}, false, nil
	}
	return holeSetup{hole: h, container: c, rim: rim}, true, nil
}

// candidates lists every admissible bridge, shortest first. A bridge must
// not cross or touch an existing edge except at its own endpoints, and its
// midpoint must lie inside the container and outside the hole.
func (s holeSetup) candidates(m *mesh.Mesh) []bridge {
	segments := lo.FilterMap(m.Edges(), func(e mesh.EdgeID, _ int) (geom.Segment, bool) {
		return m.Segment(e), e < m.Twin(e)
	})
	containerEdges := m.Boundary(s.container.rep)
	var out []bridge
	for _, ce := range containerEdges {
		for _, he := range s.rim {
			seg := geom.Segment{A: m.Position(m.Origin(ce)), B: m.Position(m.Origin(he))}
			mid := seg.Midpoint()
			if Winding(mid, s.container.points) == 0 || Winding(mid, s.hole.points) != 0 {
				continue
			}
			if lo.ContainsBy(segments, seg.Crosses) {
				continue
			}
			out = append(out, bridge{from: ce, to: he, seg: seg})
		}
	}
	out = lo.UniqBy(out, func(b bridge) [2]mesh.VertexID {
		return [2]mesh.VertexID{m.Origin(b.from), m.Origin(b.to)}
	})
	slices.SortStableFunc(out, func(a, b bridge) int {
		return cmp.Compare(a.seg.Length(), b.seg.Length())
	})
	return out
}

// SingleCloseHole joins the rim of hole to its container with the shortest
// admissible bridge. It reports whether a bridge was made.
func SingleCloseHole(m *mesh.Mesh, hole mesh.FaceID) (bool, error) {
	s, ok, err := setupHole(m, hole)
	if err != nil || !ok {
		return false, err
	}
	cands := s.candidates(m)
	if len(cands) == 0 {
		return false, nil
	}
	if _, err := m.Bridge(cands[0].from, cands[0].to); err != nil {
		return false, fmt.Errorf("close hole %v: %w", hole, err)
	}
	logging.Logger().Debug("ops: hole bridged", "hole", hole, "bridges", 1)
	return true, nil
}

// DoubleCloseHole cuts the region around hole with two bridges that share
// no endpoint and do not cross, which splits the container into two faces
// on either side of the hole. If the second bridge fails the first is
// removed again. The result reports whether both were made.
func DoubleCloseHole(m *mesh.Mesh, hole mesh.FaceID) (bool, error) {
	s, ok, err := setupHole(m, hole)
	if err != nil || !ok {
		return false, err
	}
	cands := s.candidates(m)
	for i, first := range cands {
		for _, second := range cands[i+1:] {
			if m.Origin(first.from) == m.Origin(second.from) || m.Origin(first.to) == m.Origin(second.to) {
				continue
			}
			if first.seg.Crosses(second.seg) {
				continue
			}
			b, err := m.Bridge(first.from, first.to)
			if err != nil {
				return false, fmt.Errorf("close hole %v: %w", hole, err)
			}
			if _, err := m.Bridge(second.from, second.to); err != nil {
				if undo := m.Disconnect(b); undo != nil {
					return false, fmt.Errorf("close hole %v: %w (undo first bridge: %v)", hole, err, undo)
				}
				return false, fmt.Errorf("close hole %v: %w", hole, err)
			}
			logging.Logger().Debug("ops: hole bridged", "hole", hole, "bridges", 2)
			return true, nil
		}
	}
	return false, nil
}

// CloseHoles bridges every open hole of m to its container, preferring two
// bridges and falling back to one. It returns the number of holes closed.
func CloseHoles(m *mesh.Mesh) (int, error) {
	closed := 0
	for _, f := range m.Faces() {
		face, ok := m.Face(f)
		if !ok || !face.Hole {
			continue
		}
		done, err := DoubleCloseHole(m, f)
		if err != nil {
			return closed, err
		}
		if !done {
			if done, err = SingleCloseHole(m, f); err != nil {
				return closed, err
			}
		}
		if done {
			closed++
		}
	}
	logging.Logger().Info("ops: holes closed", "closed", closed, "faces", m.NumFaces())
	return closed, nil
}
