package bst

import (
	"iter"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

// Cursor is a forward-only iterator over a traversal snapshot. To start over,
// run the traversal again.
type Cursor[T Keyed] struct {
	items []T
	pos   int
}

func newCursor[T Keyed](items []T) *Cursor[T] {
	return &Cursor[T]{items: items}
}

func (c *Cursor[T]) HasNext() bool {
	return c.pos < len(c.items)
}

// Next returns the next item, or ErrEndOfSequence once the cursor is drained.
func (c *Cursor[T]) Next() (T, error) {
	if !c.HasNext() {
		var zero T
		return zero, apperrors.ErrEndOfSequence
	}
	item := c.items[c.pos]
	c.pos++
	return item, nil
}

func (c *Cursor[T]) Remaining() int {
	return len(c.items) - c.pos
}

// All drains the cursor as a range-over-func sequence.
func (c *Cursor[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for c.HasNext() {
			item := c.items[c.pos]
			c.pos++
			if !yield(item) {
				return
			}
		}
	}
}
