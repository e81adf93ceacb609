package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node relative to the root of a Tree as a sequence of
// zero-based child indices, read root first. The empty Path is the root.
//
// A Path is a value: Push and SplitFront return new Paths and never modify
// the receiver, so Paths can be stored in indexes and shared freely.
type Path struct {
	indices []int
}

// Root returns the empty Path.
func Root() Path {
	return Path{}
}

// PathOf builds a Path from the given indices. The slice is copied.
func PathOf(indices ...int) Path {
	if len(indices) == 0 {
		return Path{}
	}
	cp := make([]int, len(indices))
	copy(cp, indices)
	return Path{indices: cp}
}

// Len returns the number of indices (the depth of the addressed node).
func (p Path) Len() int {
	return len(p.indices)
}

// IsRoot reports whether p is the empty Path.
func (p Path) IsRoot() bool {
	return len(p.indices) == 0
}

// SplitFront returns the first index and the remainder of the Path.
// ok is false for the empty Path.
func (p Path) SplitFront() (first int, rest Path, ok bool) {
	if len(p.indices) == 0 {
		return 0, Path{}, false
	}
	// The remainder shares the backing array; it is never written through.
	return p.indices[0], Path{indices: p.indices[1:]}, true
}

// Push returns a new Path with index appended.
func (p Path) Push(index int) Path {
	cp := make([]int, len(p.indices), len(p.indices)+1)
	copy(cp, p.indices)
	return Path{indices: append(cp, index)}
}

// Parent returns the Path with its last index removed. ok is false for the
// empty Path.
func (p Path) Parent() (Path, bool) {
	if len(p.indices) == 0 {
		return Path{}, false
	}
	return Path{indices: p.indices[:len(p.indices)-1]}, true
}

// Indices returns a copy of the indices.
func (p Path) Indices() []int {
	cp := make([]int, len(p.indices))
	copy(cp, p.indices)
	return cp
}

// Equal reports whether p and o address the same node.
func (p Path) Equal(o Path) bool {
	if len(p.indices) != len(o.indices) {
		return false
	}
	for i := range p.indices {
		if p.indices[i] != o.indices[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.indices) > len(p.indices) {
		return false
	}
	for i := range prefix.indices {
		if p.indices[i] != prefix.indices[i] {
			return false
		}
	}
	return true
}

// String formats the Path as dot-separated indices. The root is "".
func (p Path) String() string {
	parts := make([]string, len(p.indices))
	for i, idx := range p.indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// MarshalText implements encoding.TextMarshaler using the String form.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath parses the String form of a Path. Negative indices are rejected.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	fields := strings.Split(s, ".")
	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Path{}, fmt.Errorf("parse path %q: %w", s, err)
		}
		if n < 0 {
			return Path{}, fmt.Errorf("parse path %q: negative index %d", s, n)
		}
		indices = append(indices, n)
	}
	return Path{indices: indices}, nil
}
