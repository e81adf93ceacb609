package tree

// PathIndex maps a projected item value to every Path at which it occurs in
// one Tree. Each bucket lists Paths in pre-order, so the first element is the
// occurrence that comes first in the tree's line order. An index is built once
// by IndexBy and is read-only afterwards.
type PathIndex[U comparable] struct {
	buckets map[U][]Path
	keys    []U
	total   int
}

// IndexBy walks t once in pre-order and files every node's Path, the root's
// empty Path included, under project(item).
func IndexBy[T any, U comparable](t *Tree[T], project func(T) U) PathIndex[U] {
	idx := PathIndex[U]{buckets: make(map[U][]Path)}
	t.Walk(func(p Path, node *Tree[T]) bool {
		key := project(node.Item)
		if _, seen := idx.buckets[key]; !seen {
			idx.keys = append(idx.keys, key)
		}
		idx.buckets[key] = append(idx.buckets[key], p)
		idx.total++
		return true
	})
	return idx
}

// Lookup returns the Paths for key in pre-order, or nil when key never occurs.
// The returned slice must not be modified.
func (idx PathIndex[U]) Lookup(key U) []Path {
	return idx.buckets[key]
}

// First returns the earliest Path for key in pre-order.
func (idx PathIndex[U]) First(key U) (Path, bool) {
	paths := idx.buckets[key]
	if len(paths) == 0 {
		return Path{}, false
	}
	return paths[0], true
}

// Keys returns the distinct keys in order of first occurrence.
func (idx PathIndex[U]) Keys() []U {
	out := make([]U, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Len returns the number of distinct keys.
func (idx PathIndex[U]) Len() int {
	return len(idx.keys)
}

// Total returns the number of indexed Paths, which equals the Size of the
// source tree.
func (idx PathIndex[U]) Total() int {
	return idx.total
}
