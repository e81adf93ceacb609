package query

import (
	"nqtv/internal/model"
	"nqtv/internal/tree"
)

// Node is the JSON form of one tree node.
type Node struct {
	Path     model.StorePath `json:"path"`
	Recurse  model.Recurse   `json:"recurse"`
	Label    string          `json:"label"`
	TreePath tree.Path       `json:"treePath"`
	Line     int             `json:"line"`
	Children []Node          `json:"children,omitempty"`
}

// Document is what --json and /api/tree emit.
type Document struct {
	Version string        `json:"version"`
	Order   string        `json:"order"`
	Summary model.Summary `json:"summary"`
	Tree    Node          `json:"tree"`
}

// NewDocument converts r for JSON output.
func NewDocument(r *Result) Document {
	lines := r.Lines()
	return Document{
		Version: model.Version,
		Order:   r.Order.String(),
		Summary: NewAnalyzer().Analyze(r),
		Tree:    toNode(&r.Tree, tree.Root(), lines),
	}
}

func toNode(t *tree.Tree[model.Entry], p tree.Path, lines map[string]int) Node {
	label, _ := t.Item.Label()
	n := Node{
		Path:     t.Item.Path,
		Recurse:  t.Item.Recurse,
		Label:    label,
		TreePath: p,
		Line:     lines[p.String()],
	}
	for i := range t.Children {
		n.Children = append(n.Children, toNode(&t.Children[i], p.Push(i), lines))
	}
	return n
}
