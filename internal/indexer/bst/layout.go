package bst

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

// Slot is one node of a tree's pre-order layout. Left and Right record which
// children exist, which is enough to rebuild the exact shape.
type Slot[T Keyed] struct {
	Item  T
	Left  bool
	Right bool
}

// Layout returns the tree's nodes in pre-order with child-presence flags.
func (t *Tree[T]) Layout() []Slot[T] {
	slots := make([]Slot[T], 0, t.size)
	if t.root == nil {
		return slots
	}
	stack := []*node[T]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		slots = append(slots, Slot[T]{
			Item:  n.item,
			Left:  n.left != nil,
			Right: n.right != nil,
		})
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
	return slots
}

// FromLayout rebuilds a tree from Layout output. It rejects layouts whose
// flags do not describe exactly len(slots) nodes, zero items, and layouts
// that break the ordering invariant.
func FromLayout[T Keyed](slots []Slot[T]) (*Tree[T], error) {
	t := New[T]()
	if len(slots) == 0 {
		return t, nil
	}
	var zero T
	edges := []**node[T]{&t.root}
	for i, s := range slots {
		if len(edges) == 0 {
			return nil, fmt.Errorf("layout slot %d has no parent edge: %w", i, apperrors.ErrInvalidArgument)
		}
		if s.Item == zero {
			return nil, fmt.Errorf("layout slot %d is empty: %w", i, apperrors.ErrInvalidArgument)
		}
		edge := edges[len(edges)-1]
		edges = edges[:len(edges)-1]
		n := newNode(s.Item)
		*edge = n
		if s.Right {
			edges = append(edges, &n.right)
		}
		if s.Left {
			edges = append(edges, &n.left)
		}
	}
	if len(edges) != 0 {
		return nil, fmt.Errorf("layout ends with %d unfilled edges: %w", len(edges), apperrors.ErrInvalidArgument)
	}
	t.size = len(slots)
	if !t.ordered() {
		return nil, fmt.Errorf("layout violates key ordering: %w", apperrors.ErrInvalidArgument)
	}
	return t, nil
}

// ordered checks left <= node < right for every node.
func (t *Tree[T]) ordered() bool {
	type frame struct {
		n      *node[T]
		lo, hi string
		hasLo  bool
		hasHi  bool
	}
	if t.root == nil {
		return true
	}
	stack := []frame{{n: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		k := f.n.key()
		if f.hasLo && k <= f.lo {
			return false
		}
		if f.hasHi && k > f.hi {
			return false
		}
		if f.n.left != nil {
			stack = append(stack, frame{n: f.n.left, lo: f.lo, hasLo: f.hasLo, hi: k, hasHi: true})
		}
		if f.n.right != nil {
			stack = append(stack, frame{n: f.n.right, lo: k, hasLo: true, hi: f.hi, hasHi: f.hasHi})
		}
	}
	return true
}
