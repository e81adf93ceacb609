package tree

import (
	"reflect"
	"strings"
	"testing"
)

func pathStrings(paths []Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func TestIndexByBucketsInPreOrder(t *testing.T) {
	tr := sample()
	idx := IndexBy(&tr, func(s string) string { return s })

	if got, want := pathStrings(idx.Lookup("a")), []string{"", "0.1", "1.0"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("bucket a = %v, want %v", got, want)
	}
	first, ok := idx.First("a")
	if !ok || !first.IsRoot() {
		t.Fatalf("First(a) = %v, %v; want root", first, ok)
	}
	if _, ok := idx.First("missing"); ok {
		t.Fatalf("First(missing) should fail")
	}
	if idx.Lookup("missing") != nil {
		t.Fatalf("Lookup(missing) should be nil")
	}
	if got, want := idx.Keys(), []string{"a", "b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys = %v, want %v", got, want)
	}
}

// Every node lands in exactly one bucket and every indexed Path resolves back
// to a node whose projection is the bucket key.
func TestIndexByCoversEveryNode(t *testing.T) {
	tr := New("Root", []Tree[string]{
		New("alpha", []Tree[string]{Singleton("ALPHA"), Singleton("beta")}),
		New("Beta", []Tree[string]{
			New("gamma", []Tree[string]{Singleton("Alpha"), Singleton("root")}),
		}),
		Singleton("GAMMA"),
	})
	project := strings.ToLower
	idx := IndexBy(&tr, project)

	total := 0
	for _, key := range idx.Keys() {
		bucket := idx.Lookup(key)
		if len(bucket) == 0 {
			t.Fatalf("key %q has an empty bucket", key)
		}
		total += len(bucket)
		for _, p := range bucket {
			item, ok := tr.Lookup(p)
			if !ok {
				t.Fatalf("indexed path %v does not resolve", p)
			}
			if project(item) != key {
				t.Fatalf("path %v resolves to %q, not key %q", p, item, key)
			}
		}
	}
	if total != tr.Size() || idx.Total() != tr.Size() {
		t.Fatalf("indexed %d paths (Total %d), tree has %d nodes", total, idx.Total(), tr.Size())
	}
	if idx.Len() != 4 {
		t.Fatalf("Len = %d, want 4", idx.Len())
	}
}

func TestIndexByThreeOccurrences(t *testing.T) {
	tr := New(0, []Tree[int]{
		New(1, []Tree[int]{Singleton(7)}),
		Singleton(7),
		New(2, []Tree[int]{New(3, []Tree[int]{Singleton(7)})}),
	})
	idx := IndexBy(&tr, func(n int) int { return n })
	want := []string{"0.0", "1", "2.0.0"}
	if got := pathStrings(idx.Lookup(7)); !reflect.DeepEqual(got, want) {
		t.Fatalf("bucket 7 = %v, want %v", got, want)
	}
}
