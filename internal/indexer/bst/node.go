package bst

// node owns its two subtrees. There is no parent link; removal walks from the
// root and tracks the parent in a local variable.
type node[T Keyed] struct {
	item  T
	left  *node[T]
	right *node[T]
}

func newNode[T Keyed](item T) *node[T] {
	return &node[T]{item: item}
}

func (n *node[T]) key() string {
	return n.item.Key()
}
