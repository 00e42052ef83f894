// Package bst implements the unbalanced binary search tree that orders the
// word index. Keys compare byte-wise; equal keys descend left on insert, so a
// duplicate always lands below the earlier entry on its left side.
//
// A Tree is not safe for concurrent use.
package bst

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

// Keyed is the payload constraint. The zero value of T is treated as "no item"
// and is rejected by Insert.
type Keyed interface {
	comparable
	Key() string
}

type Tree[T Keyed] struct {
	root *node[T]
	size int
}

func New[T Keyed]() *Tree[T] {
	return &Tree[T]{}
}

// Insert links item at the first open edge on its root-to-leaf path.
func (t *Tree[T]) Insert(item T) error {
	var zero T
	if item == zero {
		return fmt.Errorf("inserting into tree: %w", apperrors.ErrInvalidArgument)
	}
	fresh := newNode(item)
	if t.root == nil {
		t.root = fresh
		t.size = 1
		return nil
	}
	key := item.Key()
	n := t.root
	for {
		if key <= n.key() {
			if n.left == nil {
				n.left = fresh
				break
			}
			n = n.left
		} else {
			if n.right == nil {
				n.right = fresh
				break
			}
			n = n.right
		}
	}
	t.size++
	return nil
}

// Search returns the stored item for key. The item is the one held by the
// tree, so mutating it through its own methods updates the index in place.
func (t *Tree[T]) Search(key string) (T, bool, error) {
	var zero T
	if key == "" {
		return zero, false, fmt.Errorf("searching tree: empty key: %w", apperrors.ErrInvalidArgument)
	}
	n := t.root
	for n != nil {
		switch k := n.key(); {
		case key == k:
			return n.item, true, nil
		case key > k:
			n = n.right
		default:
			n = n.left
		}
	}
	return zero, false, nil
}

func (t *Tree[T]) Contains(key string) bool {
	_, ok, err := t.Search(key)
	return err == nil && ok
}

// RemoveMin unlinks the leftmost node and splices its right subtree into the
// vacated edge. It reports false on an empty tree.
func (t *Tree[T]) RemoveMin() (T, bool) {
	var zero T
	if t.root == nil {
		return zero, false
	}
	var parent *node[T]
	n := t.root
	for n.left != nil {
		parent = n
		n = n.left
	}
	if parent == nil {
		t.root = n.right
	} else {
		parent.left = n.right
	}
	n.right = nil
	t.size--
	return n.item, true
}

// RemoveMax is the mirror of RemoveMin.
func (t *Tree[T]) RemoveMax() (T, bool) {
	var zero T
	if t.root == nil {
		return zero, false
	}
	var parent *node[T]
	n := t.root
	for n.right != nil {
		parent = n
		n = n.right
	}
	if parent == nil {
		t.root = n.left
	} else {
		parent.right = n.left
	}
	n.left = nil
	t.size--
	return n.item, true
}

func (t *Tree[T]) Root() (T, bool) {
	var zero T
	if t.root == nil {
		return zero, false
	}
	return t.root.item, true
}

func (t *Tree[T]) Len() int {
	return t.size
}

func (t *Tree[T]) IsEmpty() bool {
	return t.root == nil
}

func (t *Tree[T]) Clear() {
	t.root = nil
	t.size = 0
}

// Height counts nodes on the longest root-to-leaf path: 0 for an empty tree,
// 1 for a lone root. It walks level by level to stay off the call stack.
func (t *Tree[T]) Height() int {
	if t.root == nil {
		return 0
	}
	height := 0
	level := []*node[T]{t.root}
	for len(level) > 0 {
		height++
		next := make([]*node[T], 0, len(level)*2)
		for _, n := range level {
			if n.left != nil {
				next = append(next, n.left)
			}
			if n.right != nil {
				next = append(next, n.right)
			}
		}
		level = next
	}
	return height
}
