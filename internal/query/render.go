package query

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"nqtv/internal/model"
	"nqtv/internal/tree"
)

// Render writes t in the nix-store tree format. Each nesting level is "|   "
// while the ancestor at that level still has siblings to come, and "    "
// after its last sibling, matching what nix-store prints. The root is always
// written without a collapse marker.
func Render(t tree.Tree[model.Entry]) string {
	var b strings.Builder
	b.WriteString(t.Item.Path.String())
	b.WriteByte('\n')
	renderBranches(&b, t.Children, "")
	return b.String()
}

func renderBranches(b *strings.Builder, branches []tree.Tree[model.Entry], indent string) {
	for i, branch := range branches {
		b.WriteString(indent)
		b.WriteString(branchMarker)
		b.WriteString(branch.Item.Path.String())
		if branch.Item.IsCollapsed() {
			b.WriteByte(' ')
			b.WriteString(collapseMarker)
		}
		b.WriteByte('\n')

		unit := nestingUnits[1]
		if i < len(branches)-1 {
			unit = nestingUnits[0]
		}
		renderBranches(b, branch.Children, indent+unit)
	}
}

// Verify re-renders r's tree and compares it with the raw output it was
// parsed from. ok is true when they match line for line; otherwise diff is a
// unified diff from the raw text to the rendering. Only results in
// StoreOutput order can match.
func Verify(r *Result) (diff string, ok bool) {
	rendered := Render(r.Tree)
	if rendered == r.Raw {
		return "", true
	}
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.Raw),
		B:        difflib.SplitLines(rendered),
		FromFile: "nix-store output",
		ToFile:   "re-rendered tree",
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		// Differences difflib does not report, e.g. a missing final newline.
		return "--- nix-store output\n+++ re-rendered tree\n(outputs differ)\n", false
	}
	return s, false
}
