package query

import (
	"fmt"
	"strings"

	"nqtv/internal/model"
	"nqtv/internal/tree"
)

// GenerateReport renders a plain-text summary of r. The verbose form also
// lists every distinct store path with the location of its first occurrence
// and the entries collapsed under it.
func GenerateReport(r *Result, verbose bool) string {
	summary := NewAnalyzer().Analyze(r)

	var b strings.Builder
	fmt.Fprintf(&b, "nqtv report (version %s)\n", model.Version)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&b, "Root:             %s\n", summary.Root)
	fmt.Fprintf(&b, "Entries:          %d\n", summary.Nodes)
	fmt.Fprintf(&b, "Distinct paths:   %d\n", summary.Distinct)
	fmt.Fprintf(&b, "Collapsed [...]:  %d\n", summary.Collapsed)
	fmt.Fprintf(&b, "Maximum depth:    %d\n", summary.MaxDepth)
	fmt.Fprintf(&b, "Sort order:       %s\n", r.Order.Label())

	b.WriteString("\nEntries per depth\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for depth, n := range Depths(r) {
		fmt.Fprintf(&b, "  %3d  %d\n", depth, n)
	}

	if len(summary.Repeated) > 0 {
		b.WriteString("\nMost referenced\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, occ := range summary.Repeated {
			fmt.Fprintf(&b, "  %4dx  %s (first at [%s])\n", occ.Count, displayName(occ.Path), occ.First)
		}
	}

	b.WriteString("\nDiagnostics\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	if len(summary.Diagnostics) == 0 {
		b.WriteString("  No problems found.\n")
	}
	for _, d := range summary.Diagnostics {
		fmt.Fprintf(&b, "  ! %s\n", d)
	}

	if verbose {
		b.WriteString("\nAll store paths\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, sp := range r.Index.Keys() {
			paths := r.Occurrences(sp)
			line, _ := r.LineOf(paths[0])
			fmt.Fprintf(&b, "  %s\n      first: [%s] (line %d)", sp, paths[0], line)
			if len(paths) > 1 {
				fmt.Fprintf(&b, ", also at %s", joinPaths(paths[1:]))
			}
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func displayName(sp model.StorePath) string {
	if short, err := sp.ShortHashAndName(); err == nil {
		return short
	}
	return sp.String()
}

func joinPaths(paths []tree.Path) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = "[" + p.String() + "]"
	}
	return strings.Join(parts, " ")
}
