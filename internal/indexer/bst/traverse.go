package bst

// Traversals copy the visited items into a fresh slice before returning, so a
// cursor never observes mutations made to the tree after it was created.

// InOrder yields items in ascending key order.
func (t *Tree[T]) InOrder() *Cursor[T] {
	out := make([]T, 0, t.size)
	stack := make([]*node[T], 0, 16)
	n := t.root
	for n != nil || len(stack) > 0 {
		for n != nil {
			stack = append(stack, n)
			n = n.left
		}
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.item)
		n = n.right
	}
	return newCursor(out)
}

// PreOrder yields each node before its left and then right subtree.
func (t *Tree[T]) PreOrder() *Cursor[T] {
	out := make([]T, 0, t.size)
	if t.root == nil {
		return newCursor(out)
	}
	stack := []*node[T]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.item)
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
	return newCursor(out)
}

// PostOrder yields both subtrees, left first, before the node itself.
func (t *Tree[T]) PostOrder() *Cursor[T] {
	out := make([]T, 0, t.size)
	if t.root == nil {
		return newCursor(out)
	}
	stack := []*node[T]{t.root}
	visited := make([]*node[T], 0, t.size)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited = append(visited, n)
		if n.left != nil {
			stack = append(stack, n.left)
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
	}
	for i := len(visited) - 1; i >= 0; i-- {
		out = append(out, visited[i].item)
	}
	return newCursor(out)
}
