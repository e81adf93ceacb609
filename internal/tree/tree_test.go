package tree

import (
	"reflect"
	"testing"
)

// sample builds
//
//	a
//	+-- b
//	|   +-- c
//	|   +-- a
//	+-- d
//	    +-- a
func sample() Tree[string] {
	return New("a", []Tree[string]{
		New("b", []Tree[string]{Singleton("c"), Singleton("a")}),
		New("d", []Tree[string]{Singleton("a")}),
	})
}

func TestLookup(t *testing.T) {
	tr := sample()
	tests := []struct {
		path Path
		want string
		ok   bool
	}{
		{Root(), "a", true},
		{PathOf(0), "b", true},
		{PathOf(0, 0), "c", true},
		{PathOf(0, 1), "a", true},
		{PathOf(1), "d", true},
		{PathOf(1, 0), "a", true},
		{PathOf(2), "", false},
		{PathOf(0, 2), "", false},
		{PathOf(0, 0, 0), "", false},
		{PathOf(-1), "", false},
	}
	for _, tt := range tests {
		got, ok := tr.Lookup(tt.path)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("Lookup(%v) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSingletonLookup(t *testing.T) {
	tr := Singleton(42)
	if got, ok := tr.Lookup(Root()); !ok || got != 42 {
		t.Fatalf("Lookup(root) = (%d, %v), want (42, true)", got, ok)
	}
	if _, ok := tr.Lookup(PathOf(0)); ok {
		t.Fatalf("Lookup([0]) on a leaf should fail")
	}
}

func TestAppend(t *testing.T) {
	tr := Singleton("root")
	tr.Append(Singleton("x"))
	tr.Append(Singleton("y"))
	want := New("root", []Tree[string]{Singleton("x"), Singleton("y")})
	if !Equal(tr, want) {
		t.Fatalf("Append produced %+v, want %+v", tr, want)
	}
}

func TestWalkPreOrder(t *testing.T) {
	tr := sample()
	var items []string
	var paths []string
	tr.Walk(func(p Path, n *Tree[string]) bool {
		items = append(items, n.Item)
		paths = append(paths, p.String())
		return true
	})
	wantItems := []string{"a", "b", "c", "a", "d", "a"}
	wantPaths := []string{"", "0", "0.0", "0.1", "1", "1.0"}
	if !reflect.DeepEqual(items, wantItems) {
		t.Fatalf("items = %v, want %v", items, wantItems)
	}
	if !reflect.DeepEqual(paths, wantPaths) {
		t.Fatalf("paths = %v, want %v", paths, wantPaths)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	tr := sample()
	visited := 0
	tr.Walk(func(p Path, n *Tree[string]) bool {
		visited++
		return n.Item != "c"
	})
	if visited != 3 {
		t.Fatalf("visited %d nodes, want 3", visited)
	}
}

func TestSizeAndDepth(t *testing.T) {
	tr := sample()
	if got := tr.Size(); got != 6 {
		t.Fatalf("Size = %d, want 6", got)
	}
	if got := tr.Depth(); got != 2 {
		t.Fatalf("Depth = %d, want 2", got)
	}
	leaf := Singleton("x")
	if leaf.Size() != 1 || leaf.Depth() != 0 {
		t.Fatalf("leaf Size/Depth = %d/%d, want 1/0", leaf.Size(), leaf.Depth())
	}
}

func TestEqual(t *testing.T) {
	if !Equal(sample(), sample()) {
		t.Fatalf("identical trees compare unequal")
	}
	other := sample()
	other.Children[1].Children[0].Item = "z"
	if Equal(sample(), other) {
		t.Fatalf("trees differing in a leaf compare equal")
	}
	swapped := sample()
	swapped.Children[0], swapped.Children[1] = swapped.Children[1], swapped.Children[0]
	if Equal(sample(), swapped) {
		t.Fatalf("child order must be significant")
	}
}

func TestMap(t *testing.T) {
	lengths := Map(sample(), func(s string) int { return len(s) + 1 })
	if lengths.Size() != 6 {
		t.Fatalf("Map changed shape: size %d", lengths.Size())
	}
	if got, _ := lengths.Lookup(PathOf(0, 0)); got != 2 {
		t.Fatalf("mapped item = %d, want 2", got)
	}
}

func TestSortedByLeavesSourceUntouched(t *testing.T) {
	src := New("r", []Tree[string]{
		New("z", []Tree[string]{Singleton("y"), Singleton("x")}),
		Singleton("m"),
		Singleton("a"),
	})
	sorted := SortedBy(src, func(a, b string) bool { return a < b })

	want := New("r", []Tree[string]{
		Singleton("a"),
		Singleton("m"),
		New("z", []Tree[string]{Singleton("x"), Singleton("y")}),
	})
	if !Equal(sorted, want) {
		t.Fatalf("SortedBy = %+v, want %+v", sorted, want)
	}
	if first, _ := src.Lookup(PathOf(0)); first != "z" {
		t.Fatalf("source tree was reordered: first child %q", first)
	}
}
