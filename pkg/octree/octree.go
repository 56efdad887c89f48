// Package octree is a spatial index over the vertices, edges and faces of a
// mesh. Nodes live in an arena; a leaf holds one set per element kind and
// becomes a branch of eight octants when it holds more than the cell load.
// A branch turns back into a leaf once its subtree holds no more than the
// collapse load.
package octree

import (
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/logging"
)

const (
	DefaultCellLoad     = 8
	DefaultCollapseLoad = 0
	DefaultMaxDepth     = 12
)

// Option configures a Tree.
type Option func(*Tree)

// WithCellLoad sets how many elements a leaf holds before it splits.
func WithCellLoad(n int) Option {
	return func(t *Tree) { t.cellLoad = n }
}

// WithCollapseLoad sets the subtree size at or below which a branch turns
// back into a leaf.
func WithCollapseLoad(n int) Option {
	return func(t *Tree) { t.collapseLoad = n }
}

// WithMaxDepth bounds subdivision. Leaves at this depth never split, which
// keeps coincident geometry from splitting forever.
func WithMaxDepth(n int) Option {
	return func(t *Tree) { t.maxDepth = n }
}

type set = map[int64]struct{}

// node is either a leaf holding element sets or a branch with 8 children.
type node struct {
	box      geom.AlignedCube
	depth    int
	leaf     bool
	sets     [3]set
	children [8]int
}

func newLeaf(box geom.AlignedCube, depth int) node {
	return node{box: box, depth: depth, leaf: true, sets: [3]set{{}, {}, {}}}
}

func (n *node) count() int {
	return len(n.sets[Vertex]) + len(n.sets[Edge]) + len(n.sets[Face])
}

// Tree is the octree. The zero value is not usable; call New.
type Tree struct {
	nodes  []node
	free   []int
	shapes map[Element]Shape
	counts [3]int

	cellLoad     int
	collapseLoad int
	maxDepth     int
}

// New returns an empty tree covering extent.
func New(extent geom.AlignedCube, opts ...Option) *Tree {
	t := &Tree{
		shapes:       make(map[Element]Shape),
		cellLoad:     DefaultCellLoad,
		collapseLoad: DefaultCollapseLoad,
		maxDepth:     DefaultMaxDepth,
	}
	for _, o := range opts {
		o(t)
	}
	t.nodes = append(t.nodes, newLeaf(extent, 0))
	return t
}

// Extent is the box covered by the root.
func (t *Tree) Extent() geom.AlignedCube {
	return t.nodes[0].box
}

// Len returns how many elements of kind k are indexed.
func (t *Tree) Len(k Kind) int {
	return t.counts[k]
}

// Has reports whether e is indexed.
func (t *Tree) Has(e Element) bool {
	_, ok := t.shapes[e]
	return ok
}

// Insert indexes e with footprint s, replacing any previous footprint. It
// returns false, and indexes nothing, when s lies outside the extent.
func (t *Tree) Insert(e Element, s Shape) bool {
	if !s.touches(e.Kind, t.nodes[0].box) {
		logging.Logger().Warn("octree: element outside extent dropped",
			"kind", e.Kind.String(), "id", e.ID)
		return false
	}
	t.Remove(e)
	t.shapes[e] = s
	t.counts[e.Kind]++
	t.insert(0, e, s)
	return true
}

func (t *Tree) insert(idx int, e Element, s Shape) {
	n := &t.nodes[idx]
	if n.leaf {
		n.sets[e.Kind][e.ID] = struct{}{}
		if n.count() > t.cellLoad && n.depth < t.maxDepth {
			t.split(idx)
		}
		return
	}
	children := n.children
	for _, c := range children {
		if s.touches(e.Kind, t.nodes[c].box) {
			t.insert(c, e, s)
		}
	}
}

// split promotes the leaf at idx to a branch and redistributes its elements.
func (t *Tree) split(idx int) {
	n := &t.nodes[idx]
	sets, depth := n.sets, n.depth
	boxes := n.box.Split()

	var children [8]int
	for i, b := range boxes {
		children[i] = t.alloc(newLeaf(b, depth+1))
	}
	n = &t.nodes[idx]
	n.leaf = false
	n.sets = [3]set{}
	n.children = children
	logging.Logger().Debug("octree: split", "node", idx, "depth", depth)

	for k := range sets {
		for id := range sets[k] {
			e := Element{Kind: Kind(k), ID: id}
			s := t.shapes[e]
			for _, c := range children {
				if s.touches(e.Kind, t.nodes[c].box) {
					t.insert(c, e, s)
				}
			}
		}
	}
}

func (t *Tree) alloc(n node) int {
	if l := len(t.free); l > 0 {
		idx := t.free[l-1]
		t.free = t.free[:l-1]
		t.nodes[idx] = n
		return idx
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// Remove drops e from the index. It reports whether e was present.
func (t *Tree) Remove(e Element) bool {
	s, ok := t.shapes[e]
	if !ok {
		return false
	}
	delete(t.shapes, e)
	t.counts[e.Kind]--
	t.remove(0, e, s)
	return true
}

func (t *Tree) remove(idx int, e Element, s Shape) {
	n := &t.nodes[idx]
	if n.leaf {
		delete(n.sets[e.Kind], e.ID)
		return
	}
	for _, c := range n.children {
		if s.touches(e.Kind, t.nodes[c].box) {
			t.remove(c, e, s)
		}
	}
	held := make(map[Element]struct{})
	if t.collect(idx, held, t.collapseLoad) {
		t.collapse(idx, held)
	}
}

// collect gathers the distinct elements below idx into into. It gives up and
// returns false as soon as more than limit are found.
func (t *Tree) collect(idx int, into map[Element]struct{}, limit int) bool {
	n := &t.nodes[idx]
	if n.leaf {
		for k := range n.sets {
			for id := range n.sets[k] {
				into[Element{Kind: Kind(k), ID: id}] = struct{}{}
				if len(into) > limit {
					return false
				}
			}
		}
		return true
	}
	for _, c := range n.children {
		if !t.collect(c, into, limit) {
			return false
		}
	}
	return true
}

// collapse demotes the branch at idx to a leaf holding held.
func (t *Tree) collapse(idx int, held map[Element]struct{}) {
	for _, c := range t.nodes[idx].children {
		t.release(c)
	}
	leaf := newLeaf(t.nodes[idx].box, t.nodes[idx].depth)
	for e := range held {
		leaf.sets[e.Kind][e.ID] = struct{}{}
	}
	t.nodes[idx] = leaf
	logging.Logger().Debug("octree: collapse", "node", idx, "held", len(held))
}

func (t *Tree) release(idx int) {
	if n := t.nodes[idx]; !n.leaf {
		for _, c := range n.children {
			t.release(c)
		}
	}
	t.nodes[idx] = node{}
	t.free = append(t.free, idx)
}

// Result is the outcome of a range query. Ids are ascending and unique.
type Result struct {
	Vertices []int64
	Edges    []int64
	Faces    []int64
}

// Len is the total number of elements in r.
func (r Result) Len() int {
	return len(r.Vertices) + len(r.Edges) + len(r.Faces)
}

// Query returns every element whose footprint meets box.
func (t *Tree) Query(box geom.AlignedCube) Result {
	found := [3]set{{}, {}, {}}
	t.query(0, box, found)
	return Result{
		Vertices: sortedIDs(found[Vertex]),
		Edges:    sortedIDs(found[Edge]),
		Faces:    sortedIDs(found[Face]),
	}
}

func (t *Tree) query(idx int, box geom.AlignedCube, found [3]set) {
	n := &t.nodes[idx]
	if n.leaf {
		for k := range n.sets {
			for id := range n.sets[k] {
				if _, seen := found[k][id]; seen {
					continue
				}
				e := Element{Kind: Kind(k), ID: id}
				if t.shapes[e].touches(e.Kind, box) {
					found[k][id] = struct{}{}
				}
			}
		}
		return
	}
	for _, c := range n.children {
		if narrowed, ok := box.Minus(t.nodes[c].box); ok {
			t.query(c, narrowed, found)
		}
	}
}

func sortedIDs(s set) []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// VertexAt returns the vertex whose position equals p exactly.
func (t *Tree) VertexAt(p geom.Vec) (int64, bool) {
	if !t.nodes[0].box.Contains(p) {
		return 0, false
	}
	idx := 0
	for !t.nodes[idx].leaf {
		next := -1
		for _, c := range t.nodes[idx].children {
			if t.nodes[c].box.Contains(p) {
				next = c
				break
			}
		}
		if next < 0 {
			return 0, false
		}
		idx = next
	}
	for id := range t.nodes[idx].sets[Vertex] {
		if t.shapes[Element{Kind: Vertex, ID: id}].Point == p {
			return id, true
		}
	}
	return 0, false
}

// Depth is the depth of the deepest leaf; a lone root leaf has depth 0.
func (t *Tree) Depth() int {
	deepest := 0
	t.Walk(func(_ geom.AlignedCube, depth int, leaf bool) {
		if leaf && depth > deepest {
			deepest = depth
		}
	})
	return deepest
}

// Walk visits every live node depth first.
func (t *Tree) Walk(fn func(box geom.AlignedCube, depth int, leaf bool)) {
	var visit func(int)
	visit = func(idx int) {
		n := &t.nodes[idx]
		fn(n.box, n.depth, n.leaf)
		if !n.leaf {
			for _, c := range n.children {
				visit(c)
			}
		}
	}
	visit(0)
}
