package ops

import (
	"fmt"

	"github.com/chazu/facet/pkg/logging"
	"github.com/chazu/facet/pkg/mesh"
)

// FaceSummary counts what CreateFaces changed.
type FaceSummary struct {
	Linked   int
	Unlinked int
	Holes    int
	Outer    int // cycles labelled with the unbounded face
}

// CreateFaces brings the faces of m in line with its cycles.
//
// The first pass links a face for every inside-looking cycle that lacks one
// and unlinks faces whose cycle stopped looking inside. The second pass
// walks the containment tree: faces at odd depth become holes and every
// face records its container as parent. Finally each remaining cycle, the
// clockwise rims and dangling trees, is labelled with the face of its
// innermost container, or InfinityFace when nothing encloses it.
//
// Linking or unlinking a face never changes which cycles look inside, nor
// how they nest, so the tree is built once after the first pass and a
// single walk over it settles every hole flag and parent.
func CreateFaces(m *mesh.Mesh) (FaceSummary, error) {
	var sum FaceSummary

	for _, rep := range Cycles(m) {
		owner := m.OwnerFace(rep)
		switch inside := m.InsideLooking(rep); {
		case inside && owner == mesh.NoFace:
			if _, err := m.LinkFace(rep); err != nil {
				return sum, fmt.Errorf("create faces: %w", err)
			}
			sum.Linked++
		case !inside && owner != mesh.NoFace:
			if err := m.UnlinkFace(owner); err != nil {
				return sum, fmt.Errorf("create faces: %w", err)
			}
			sum.Unlinked++
		}
	}

	tree, err := Containment(m)
	if err != nil {
		return sum, fmt.Errorf("create faces: %w", err)
	}
	tree.Collect(func(level int, rep mesh.EdgeID) {
		if err != nil {
			return
		}
		f := m.OwnerFace(rep)
		hole := level%2 == 1
		if hole {
			sum.Holes++
		}
		if err = m.SetHole(f, hole); err != nil {
			return
		}
		parent := mesh.NoFace
		if p, ok := tree.Parent(rep); ok {
			parent = m.OwnerFace(p)
		}
		err = m.SetParent(f, parent)
	})
	if err != nil {
		return sum, fmt.Errorf("create faces: %w", err)
	}

	infos := insideCycles(m)
	for _, rep := range Cycles(m) {
		if m.InsideLooking(rep) {
			continue
		}
		ci := newCycleInfo(m, rep)
		var containers []*cycleInfo
		for _, outer := range infos {
			if outer.encloses(m, ci, false) {
				containers = append(containers, outer)
			}
		}
		label := mesh.InfinityFace
		if c := innermost(containers); c != nil {
			label = m.OwnerFace(c.rep)
		} else {
			sum.Outer++
		}
		if err := m.SetBoundaryLeft(rep, label); err != nil {
			return sum, fmt.Errorf("create faces: %w", err)
		}
	}

	logging.Logger().Info("ops: faces created",
		"linked", sum.Linked, "unlinked", sum.Unlinked, "holes", sum.Holes, "faces", m.NumFaces())
	return sum, nil
}
