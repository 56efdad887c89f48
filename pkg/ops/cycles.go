package ops

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/hierarchy"
	"github.com/chazu/facet/pkg/mesh"
)

// Cycles partitions the half-edges of m into next-cycles and returns one
// representative per cycle, its lowest edge id. Cycles are ordered by their
// lowest vertex id, then by representative.
func Cycles(m *mesh.Mesh) []mesh.EdgeID {
	seen := make(map[mesh.EdgeID]bool)
	type cycle struct {
		rep    mesh.EdgeID
		minVtx mesh.VertexID
	}
	var out []cycle
	for _, e := range m.Edges() {
		if seen[e] {
			continue
		}
		c := m.Boundary(e)
		if c == nil {
			seen[e] = true
			continue
		}
		for _, id := range c {
			seen[id] = true
		}
		out = append(out, cycle{
			rep:    e,
			minVtx: lo.Min(lo.Map(c, func(id mesh.EdgeID, _ int) mesh.VertexID { return m.Origin(id) })),
		})
	}
	slices.SortFunc(out, func(a, b cycle) int {
		return cmp.Or(cmp.Compare(a.minVtx, b.minVtx), cmp.Compare(a.rep, b.rep))
	})
	return lo.Map(out, func(c cycle, _ int) mesh.EdgeID { return c.rep })
}

// cycleInfo caches the geometry of one cycle for the containment tests.
type cycleInfo struct {
	rep    mesh.EdgeID
	points []geom.Vec
	verts  map[mesh.VertexID]bool
	area   float64
}

func newCycleInfo(m *mesh.Mesh, rep mesh.EdgeID) *cycleInfo {
	c := m.Boundary(rep)
	ci := &cycleInfo{rep: rep, verts: make(map[mesh.VertexID]bool, len(c))}
	for _, e := range c {
		v := m.Origin(e)
		ci.verts[v] = true
		ci.points = append(ci.points, m.Position(v))
	}
	ci.area = geom.SignedArea(ci.points)
	return ci
}

// encloses reports whether the region of outer holds inner. Every vertex of
// inner off the boundary of outer must lie inside it. When inner has no
// such vertex and fallback is set, a point inside inner decides.
func (outer *cycleInfo) encloses(m *mesh.Mesh, inner *cycleInfo, fallback bool) bool {
	if outer.rep == inner.rep {
		return false
	}
	off := 0
	for v := range inner.verts {
		if outer.verts[v] {
			continue
		}
		off++
		if Winding(m.Position(v), outer.points) == 0 {
			return false
		}
	}
	if off > 0 {
		return true
	}
	if !fallback {
		return false
	}
	p, ok := interiorPoint(inner.points)
	return ok && Winding(p, outer.points) != 0
}

// innermost picks the container with the smallest area.
func innermost(containers []*cycleInfo) *cycleInfo {
	if len(containers) == 0 {
		return nil
	}
	return lo.MinBy(containers, func(a, b *cycleInfo) bool { return abs(a.area) < abs(b.area) })
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Containment builds the nesting tree of the inside-looking cycles of m.
// Each cycle's parent is the innermost cycle that encloses it.
func Containment(m *mesh.Mesh) (*hierarchy.Tree[mesh.EdgeID], error) {
	infos := insideCycles(m)
	containers := make(map[mesh.EdgeID][]*cycleInfo, len(infos))
	for _, inner := range infos {
		for _, outer := range infos {
			if outer.encloses(m, inner, true) {
				containers[inner.rep] = append(containers[inner.rep], outer)
			}
		}
	}

	// Parents have fewer containers than their children, so adding in
	// order of depth always finds the parent present.
	order := slices.Clone(infos)
	slices.SortStableFunc(order, func(a, b *cycleInfo) int {
		return cmp.Compare(len(containers[a.rep]), len(containers[b.rep]))
	})
	tree := hierarchy.New[mesh.EdgeID]()
	for _, ci := range order {
		if parent := innermost(containers[ci.rep]); parent != nil && tree.Contains(parent.rep) {
			if err := tree.Add(parent.rep, ci.rep); err != nil {
				return nil, fmt.Errorf("containment of half-edge %d: %w", ci.rep, err)
			}
			continue
		}
		if err := tree.AddRoot(ci.rep); err != nil {
			return nil, fmt.Errorf("containment of half-edge %d: %w", ci.rep, err)
		}
	}
	return tree, nil
}

func insideCycles(m *mesh.Mesh) []*cycleInfo {
	var infos []*cycleInfo
	for _, rep := range Cycles(m) {
		if m.InsideLooking(rep) {
			infos = append(infos, newCycleInfo(m, rep))
		}
	}
	return infos
}
