package query

import (
	"fmt"
	"sort"

	"nqtv/internal/model"
	"nqtv/internal/tree"
)

// Analyzer derives summary figures and consistency diagnostics from a Result.
type Analyzer struct {
	// TopN limits Summary.Repeated. Zero keeps every repeated store path.
	TopN int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{TopN: 10}
}

func (a *Analyzer) Analyze(r *Result) model.Summary {
	s := model.Summary{
		Root:     r.Root().Path,
		Nodes:    r.Size(),
		Distinct: r.Index.Len(),
		MaxDepth: r.Tree.Depth(),
	}

	var repeated []model.Occurrence
	for _, sp := range r.Index.Keys() {
		paths := r.Index.Lookup(sp)

		collapsed := 0
		for _, p := range paths {
			if e, ok := r.LookupPath(p); ok && e.IsCollapsed() {
				collapsed++
			}
		}
		s.Collapsed += collapsed

		if _, err := sp.DrvName(); err != nil {
			s.Diagnostics = append(s.Diagnostics, err.Error())
		}

		// Every back-reference should resolve to an occurrence printed in full.
		if collapsed == len(paths) {
			s.Diagnostics = append(s.Diagnostics,
				fmt.Sprintf("%s only appears as a collapsed reference [...]", sp))
		} else if first, ok := r.LookupPath(paths[0]); ok && first.IsCollapsed() && r.Order == StoreOutput {
			s.Diagnostics = append(s.Diagnostics,
				fmt.Sprintf("%s is collapsed at %s before it is printed in full", sp, paths[0]))
		}

		if len(paths) > 1 {
			repeated = append(repeated, model.Occurrence{
				Path:      sp,
				Count:     len(paths),
				Collapsed: collapsed,
				First:     paths[0].String(),
			})
		}
	}

	sort.SliceStable(repeated, func(i, j int) bool {
		if repeated[i].Count != repeated[j].Count {
			return repeated[i].Count > repeated[j].Count
		}
		return repeated[i].Path.Compare(repeated[j].Path) < 0
	})
	if a.TopN > 0 && len(repeated) > a.TopN {
		repeated = repeated[:a.TopN]
	}
	s.Repeated = repeated
	return s
}

// Depths returns how many nodes sit at each depth, index 0 being the root.
func Depths(r *Result) []int {
	depths := make([]int, r.Tree.Depth()+1)
	r.Tree.Walk(func(p tree.Path, _ *tree.Tree[model.Entry]) bool {
		depths[p.Len()]++
		return true
	})
	return depths
}
