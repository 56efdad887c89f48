// Package hierarchy is a small multi-root tree keyed by value.
//
// Nodes live in an arena and refer to each other by index. Removing a node
// hands its children to its parent, so the tree never loses values it was
// not asked to drop.
package hierarchy

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrExists is returned when adding a value the tree already holds.
	ErrExists = errors.New("hierarchy: value already present")
	// ErrUnknown is returned when a parent is not in the tree.
	ErrUnknown = errors.New("hierarchy: unknown value")
)

const none = -1

type node[T comparable] struct {
	value    T
	parent   int
	children []int
	removed  bool
}

// Tree is a forest of values of type T. The zero value is not usable; call
// New.
type Tree[T comparable] struct {
	nodes []node[T]
	index map[T]int
	roots []int
}

// New creates an empty tree.
func New[T comparable]() *Tree[T] {
	return &Tree[T]{index: make(map[T]int)}
}

// AddRoot adds v as a new root.
func (t *Tree[T]) AddRoot(v T) error {
	if _, ok := t.index[v]; ok {
		return fmt.Errorf("add root %v: %w", v, ErrExists)
	}
	t.roots = append(t.roots, t.alloc(v, none))
	return nil
}

// Add adds child under parent.
func (t *Tree[T]) Add(parent, child T) error {
	p, ok := t.index[parent]
	if !ok {
		return fmt.Errorf("add %v under %v: %w", child, parent, ErrUnknown)
	}
	if _, ok := t.index[child]; ok {
		return fmt.Errorf("add %v under %v: %w", child, parent, ErrExists)
	}
	c := t.alloc(child, p)
	t.nodes[p].children = append(t.nodes[p].children, c)
	return nil
}

func (t *Tree[T]) alloc(v T, parent int) int {
	t.nodes = append(t.nodes, node[T]{value: v, parent: parent})
	idx := len(t.nodes) - 1
	t.index[v] = idx
	return idx
}

// Contains reports whether v is in the tree.
func (t *Tree[T]) Contains(v T) bool {
	_, ok := t.index[v]
	return ok
}

// Len returns the number of values.
func (t *Tree[T]) Len() int { return len(t.index) }

// Roots returns the root values in insertion order.
func (t *Tree[T]) Roots() []T {
	return t.values(t.roots)
}

// Children returns the direct children of v in insertion order.
func (t *Tree[T]) Children(v T) []T {
	idx, ok := t.index[v]
	if !ok {
		return nil
	}
	return t.values(t.nodes[idx].children)
}

// Parent returns the parent of v. It reports false for roots and unknown
// values.
func (t *Tree[T]) Parent(v T) (T, bool) {
	var zero T
	idx, ok := t.index[v]
	if !ok || t.nodes[idx].parent == none {
		return zero, false
	}
	return t.nodes[t.nodes[idx].parent].value, true
}

// Level returns the depth of v, 0 for roots, or -1 if v is unknown.
func (t *Tree[T]) Level(v T) int {
	idx, ok := t.index[v]
	if !ok {
		return -1
	}
	level := 0
	for p := t.nodes[idx].parent; p != none; p = t.nodes[p].parent {
		level++
	}
	return level
}

// Remove drops v. Its children move to v's parent, or become roots when v
// was a root, keeping their relative order at v's position.
func (t *Tree[T]) Remove(v T) bool {
	idx, ok := t.index[v]
	if !ok {
		return false
	}
	n := &t.nodes[idx]
	for _, c := range n.children {
		t.nodes[c].parent = n.parent
	}
	if n.parent == none {
		t.roots = splice(t.roots, idx, n.children)
	} else {
		p := &t.nodes[n.parent]
		p.children = splice(p.children, idx, n.children)
	}
	n.children = nil
	n.removed = true
	delete(t.index, v)
	return true
}

// splice replaces idx in list with repl.
func splice(list []int, idx int, repl []int) []int {
	i := slices.Index(list, idx)
	if i < 0 {
		return list
	}
	return slices.Replace(list, i, i+1, repl...)
}

// Collect visits every value breadth-first, roots first, passing its level.
func (t *Tree[T]) Collect(fn func(level int, v T)) {
	level := slices.Clone(t.roots)
	for depth := 0; len(level) > 0; depth++ {
		var next []int
		for _, idx := range level {
			fn(depth, t.nodes[idx].value)
			next = append(next, t.nodes[idx].children...)
		}
		level = next
	}
}

func (t *Tree[T]) values(idxs []int) []T {
	out := make([]T, len(idxs))
	for i, idx := range idxs {
		out[i] = t.nodes[idx].value
	}
	return out
}
