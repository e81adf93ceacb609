// Package tree provides an ordered tree of arbitrary arity and depth,
// addressed by child-index paths, plus an index from projected item values
// back to every path they occur at.
package tree

import "sort"

// Tree is one node: an item and its ordered children. Child order is
// significant and is preserved exactly as built.
type Tree[T any] struct {
	Item     T
	Children []Tree[T]
}

// New builds a node owning the given children.
func New[T any](item T, children []Tree[T]) Tree[T] {
	return Tree[T]{Item: item, Children: children}
}

// Singleton builds a childless node.
func Singleton[T any](item T) Tree[T] {
	return Tree[T]{Item: item}
}

// Append adds child as the last child of t.
func (t *Tree[T]) Append(child Tree[T]) {
	t.Children = append(t.Children, child)
}

// Lookup returns the item at p. ok is false when any index is out of range
// or p runs deeper than a leaf.
func (t *Tree[T]) Lookup(p Path) (item T, ok bool) {
	node, ok := t.Node(p)
	if !ok {
		var zero T
		return zero, false
	}
	return node.Item, true
}

// Node returns the subtree at p.
func (t *Tree[T]) Node(p Path) (*Tree[T], bool) {
	first, rest, ok := p.SplitFront()
	if !ok {
		return t, true
	}
	if first < 0 || first >= len(t.Children) {
		return nil, false
	}
	return t.Children[first].Node(rest)
}

// Walk visits every node in pre-order (a node before its children, children
// left to right) together with its Path. Returning false from fn stops the
// walk early.
func (t *Tree[T]) Walk(fn func(p Path, node *Tree[T]) bool) {
	t.walk(Root(), fn)
}

func (t *Tree[T]) walk(p Path, fn func(Path, *Tree[T]) bool) bool {
	if !fn(p, t) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].walk(p.Push(i), fn) {
			return false
		}
	}
	return true
}

// Size returns the total number of nodes, the root included.
func (t *Tree[T]) Size() int {
	n := 1
	for i := range t.Children {
		n += t.Children[i].Size()
	}
	return n
}

// Depth returns the length of the longest Path in t. A leaf has depth 0.
func (t *Tree[T]) Depth() int {
	deepest := 0
	for i := range t.Children {
		if d := t.Children[i].Depth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Map returns a tree of the same shape with fn applied to every item.
func Map[T, U any](t Tree[T], fn func(T) U) Tree[U] {
	out := Tree[U]{Item: fn(t.Item)}
	if len(t.Children) > 0 {
		out.Children = make([]Tree[U], len(t.Children))
		for i, c := range t.Children {
			out.Children[i] = Map(c, fn)
		}
	}
	return out
}

// Equal reports deep structural equality: same items in the same shape and
// child order.
func Equal[T comparable](a, b Tree[T]) bool {
	if a.Item != b.Item || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// SortedBy returns a copy of t whose children are stably sorted at every
// level by less. t itself is left untouched.
func SortedBy[T any](t Tree[T], less func(a, b T) bool) Tree[T] {
	out := Tree[T]{Item: t.Item}
	if len(t.Children) == 0 {
		return out
	}
	out.Children = make([]Tree[T], len(t.Children))
	for i, c := range t.Children {
		out.Children[i] = SortedBy(c, less)
	}
	sort.SliceStable(out.Children, func(i, j int) bool {
		return less(out.Children[i].Item, out.Children[j].Item)
	})
	return out
}
