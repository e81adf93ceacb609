package query

import (
	"fmt"
	"strings"

	"nqtv/internal/model"
	"nqtv/internal/tree"
)

// SortOrder controls how siblings are ordered in a Result's tree.
type SortOrder int

const (
	// StoreOutput keeps the order nix-store printed.
	StoreOutput SortOrder = iota
	// Alphabetical orders siblings by package name, then full store path.
	Alphabetical
)

func (o SortOrder) String() string {
	switch o {
	case Alphabetical:
		return "alpha"
	default:
		return "store"
	}
}

// Label is the human-readable name shown in the status bar.
func (o SortOrder) Label() string {
	switch o {
	case Alphabetical:
		return "alphabetical"
	default:
		return "nix-store output"
	}
}

// ParseSortOrder accepts "store" or "alpha" (and a few spellings of each).
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "store", "output", "nix-store":
		return StoreOutput, nil
	case "alpha", "alphabetical", "name":
		return Alphabetical, nil
	}
	return StoreOutput, fmt.Errorf("unknown sort order %q (want store or alpha)", s)
}

// Next cycles to the other order.
func (o SortOrder) Next() SortOrder {
	if o == Alphabetical {
		return StoreOutput
	}
	return Alphabetical
}

type linedEntry struct {
	entry model.Entry
	line  int
}

func sortKey(p model.StorePath) string {
	if name, err := p.DrvName(); err == nil {
		return name
	}
	return p.String()
}

func lessEntry(a, b model.Entry) bool {
	ka, kb := sortKey(a.Path), sortKey(b.Path)
	if ka != kb {
		return ka < kb
	}
	return a.Path.Compare(b.Path) < 0
}

// Sorted returns a Result over a re-ordered copy of the tree with a freshly
// derived index. Raw is shared and r is left untouched. Line numbers keep
// pointing at the lines the entries were parsed from.
func (r *Result) Sorted(order SortOrder) *Result {
	if order == r.Order {
		return r
	}

	// Carry each node's raw line through the reordering.
	lined := tree.Map(r.Tree, func(e model.Entry) linedEntry { return linedEntry{entry: e} })
	lined.Walk(func(p tree.Path, node *tree.Tree[linedEntry]) bool {
		node.Item.line = r.lines[p.String()]
		return true
	})

	if order == Alphabetical {
		lined = tree.SortedBy(lined, func(a, b linedEntry) bool { return lessEntry(a.entry, b.entry) })
	} else {
		lined = tree.SortedBy(lined, func(a, b linedEntry) bool { return a.line < b.line })
	}

	lines := make(map[string]int, r.Size())
	lined.Walk(func(p tree.Path, node *tree.Tree[linedEntry]) bool {
		lines[p.String()] = node.Item.line
		return true
	})
	sorted := tree.Map(lined, func(le linedEntry) model.Entry { return le.entry })
	return newResult(r.Raw, sorted, order, lines)
}
