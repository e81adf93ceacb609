package query

import (
	"strings"

	"nqtv/internal/model"
	"nqtv/internal/tree"
)

// Result bundles one query's raw output, the parsed tree and the index from
// store path to every occurrence. A Result is never modified after it is
// built, so it can be handed between goroutines freely; re-querying or
// re-sorting produces a new Result.
type Result struct {
	Raw   string
	Tree  tree.Tree[model.Entry]
	Index tree.PathIndex[model.StorePath]
	Order SortOrder

	// lines maps Path.String() to the 1-based line in Raw; paths is its
	// inverse, indexed by line - 1. Both are built once per Result.
	lines map[string]int
	paths []tree.Path
}

// Build parses raw and derives the store path index. Fresh and Collapsed
// occurrences of one store path share a bucket.
func Build(raw string) (*Result, error) {
	t, err := ParseTree(raw)
	if err != nil {
		return nil, err
	}
	return newResult(raw, t, StoreOutput, nil), nil
}

// newResult derives the index and line tables. A nil lines means t is in
// output order, where a node's line is its pre-order position + 1.
func newResult(raw string, t tree.Tree[model.Entry], order SortOrder, lines map[string]int) *Result {
	r := &Result{
		Raw:   raw,
		Tree:  t,
		Index: tree.IndexBy(&t, entryStorePath),
		Order: order,
		lines: lines,
	}
	if r.lines == nil {
		r.lines = make(map[string]int, r.Size())
		pos := 0
		t.Walk(func(p tree.Path, _ *tree.Tree[model.Entry]) bool {
			pos++
			r.lines[p.String()] = pos
			return true
		})
	}
	r.paths = make([]tree.Path, len(r.lines))
	for key, line := range r.lines {
		if line < 1 || line > len(r.paths) {
			continue
		}
		if p, err := tree.ParsePath(key); err == nil {
			r.paths[line-1] = p
		}
	}
	return r
}

func entryStorePath(e model.Entry) model.StorePath {
	return e.Path
}

// Root returns the root entry.
func (r *Result) Root() model.Entry {
	return r.Tree.Item
}

// LookupPath returns the entry at p.
func (r *Result) LookupPath(p tree.Path) (model.Entry, bool) {
	return r.Tree.Lookup(p)
}

// FirstOccurrence returns the earliest Path of sp in tree order. For a
// Collapsed entry this is where its subtree is printed in full.
func (r *Result) FirstOccurrence(sp model.StorePath) (tree.Path, bool) {
	return r.Index.First(sp)
}

// FullOccurrence returns the earliest Path at which sp is printed with its
// subtree, i.e. the first Fresh occurrence. In output order this is the same
// as FirstOccurrence; after re-sorting a collapsed reference can come first.
func (r *Result) FullOccurrence(sp model.StorePath) (tree.Path, bool) {
	paths := r.Index.Lookup(sp)
	for _, p := range paths {
		if e, ok := r.Tree.Lookup(p); ok && !e.IsCollapsed() {
			return p, true
		}
	}
	if len(paths) > 0 {
		return paths[0], true
	}
	return tree.Path{}, false
}

// Occurrences returns every Path of sp in tree order.
func (r *Result) Occurrences(sp model.StorePath) []tree.Path {
	return r.Index.Lookup(sp)
}

// Search returns, in tree order, the Paths of every entry whose store path
// contains term, ignoring case. An empty term matches nothing.
func (r *Result) Search(term string) []tree.Path {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var matches []tree.Path
	r.Tree.Walk(func(p tree.Path, node *tree.Tree[model.Entry]) bool {
		if strings.Contains(strings.ToLower(node.Item.Path.String()), term) {
			matches = append(matches, p)
		}
		return true
	})
	return matches
}

// LineOf returns the 1-based line of Raw that the node at p was parsed from.
func (r *Result) LineOf(p tree.Path) (int, bool) {
	line, ok := r.lines[p.String()]
	return line, ok
}

// PathAtLine returns the path of the node parsed from the 1-based raw line.
func (r *Result) PathAtLine(line int) (tree.Path, bool) {
	if line < 1 || line > len(r.paths) {
		return tree.Path{}, false
	}
	return r.paths[line-1], true
}

// Size returns the number of nodes in the tree.
func (r *Result) Size() int {
	return r.Index.Total()
}

// Lines returns a copy of the raw line of every node, keyed by
// Path.String(). A raw line identifies one occurrence regardless of sort
// order.
func (r *Result) Lines() map[string]int {
	lines := make(map[string]int, len(r.lines))
	for k, v := range r.lines {
		lines[k] = v
	}
	return lines
}
