package tui

import (
	"fmt"

	"nqtv/internal/model"
	"nqtv/internal/query"
	"nqtv/internal/tree"
)

// setResult installs res in the current sort order. Expansion state and the
// cursor are carried over by raw line, so re-sorting keeps the same rows open
// and the same occurrence selected.
func (m *AppModel) setResult(res *query.Result) {
	selected := 0
	if r, ok := m.selectedRow(); ok && m.Result != nil && m.Result.Raw == res.Raw {
		selected = r.Line
	} else {
		m.expanded = map[int]bool{1: true}
		m.Cursor, m.offset = 0, 0
		m.Matches, m.matchIdx = nil, 0
	}

	m.Result = res.Sorted(m.Order)
	m.Loading = false
	m.Err, m.ErrRaw = nil, ""
	m.RawViewport.SetContent(numberLines(m.Result.Raw))
	m.rebuildRows()

	if selected > 0 {
		m.selectLine(selected)
	}
	if m.Matches != nil {
		m.Matches = m.Result.Search(m.searchTerm)
		m.matchIdx = 0
	}
}

func (m *AppModel) rebuildRows() {
	m.rows = nil
	if m.Result == nil {
		return
	}
	m.appendRows(&m.Result.Tree, tree.Root(), "", true)
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *AppModel) appendRows(node *tree.Tree[model.Entry], p tree.Path, indent string, last bool) {
	line, _ := m.Result.LineOf(p)
	r := row{
		Path:     p,
		Entry:    node.Item,
		Line:     line,
		Children: len(node.Children),
		Open:     m.expanded[line],
	}
	childIndent := ""
	if !p.IsRoot() {
		r.Prefix = indent + "+---"
		childIndent = indent + "|   "
		if last {
			childIndent = indent + "    "
		}
	}
	m.rows = append(m.rows, r)
	if !r.Open {
		return
	}
	for i := range node.Children {
		m.appendRows(&node.Children[i], p.Push(i), childIndent, i == len(node.Children)-1)
	}
}

func (m *AppModel) selectedRow() (row, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.Cursor], true
}

// treeHeight is the number of rows the tree pane can show.
func (m *AppModel) treeHeight() int {
	h := m.WindowSize.Height - chromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (m *AppModel) ensureCursorVisible() {
	h := m.treeHeight()
	if m.Cursor < m.offset {
		m.offset = m.Cursor
	}
	if m.Cursor >= m.offset+h {
		m.offset = m.Cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
	m.syncRawViewport()
}

// syncRawViewport scrolls the raw pane so the selected line is in view.
func (m *AppModel) syncRawViewport() {
	r, ok := m.selectedRow()
	if !ok || m.RawViewport.Height == 0 {
		return
	}
	top := r.Line - 1 - m.RawViewport.Height/2
	if top < 0 {
		top = 0
	}
	m.RawViewport.SetYOffset(top)
}

func (m *AppModel) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.Cursor += delta
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *AppModel) setOpen(open bool) {
	r, ok := m.selectedRow()
	if !ok || r.Children == 0 || r.Open == open {
		return
	}
	m.expanded[r.Line] = open
	m.rebuildRows()
}

func (m *AppModel) toggle() {
	if r, ok := m.selectedRow(); ok {
		m.setOpen(!r.Open)
	}
}

// foldOrParent folds an open row, or moves to the parent of a folded one.
func (m *AppModel) foldOrParent() {
	r, ok := m.selectedRow()
	if !ok {
		return
	}
	if r.Open && r.Children > 0 {
		m.setOpen(false)
		return
	}
	if parent, ok := r.Path.Parent(); ok {
		m.selectPath(parent)
	}
}

func (m *AppModel) expandAll() {
	if m.Result == nil {
		return
	}
	for _, line := range m.Result.Lines() {
		m.expanded[line] = true
	}
	m.keepSelection(m.rebuildRows)
}

func (m *AppModel) collapseAll() {
	m.expanded = map[int]bool{1: true}
	m.keepSelection(m.rebuildRows)
}

// keepSelection runs fn and moves the cursor back to the previously selected
// occurrence, or its nearest visible ancestor.
func (m *AppModel) keepSelection(fn func()) {
	r, ok := m.selectedRow()
	fn()
	if !ok {
		return
	}
	for p := r.Path; ; {
		if m.findPath(p) >= 0 {
			m.selectPath(p)
			return
		}
		parent, ok := p.Parent()
		if !ok {
			return
		}
		p = parent
	}
}

// reveal expands every ancestor of p.
func (m *AppModel) reveal(p tree.Path) {
	for q, ok := p.Parent(); ok; q, ok = q.Parent() {
		if line, found := m.Result.LineOf(q); found {
			m.expanded[line] = true
		}
	}
	m.rebuildRows()
}

func (m *AppModel) findPath(p tree.Path) int {
	for i, r := range m.rows {
		if r.Path.Equal(p) {
			return i
		}
	}
	return -1
}

func (m *AppModel) selectPath(p tree.Path) bool {
	i := m.findPath(p)
	if i < 0 {
		return false
	}
	m.Cursor = i
	m.ensureCursorVisible()
	return true
}

// selectLine selects the occurrence parsed from raw line.
func (m *AppModel) selectLine(line int) {
	if p, ok := m.Result.PathAtLine(line); ok {
		m.reveal(p)
		m.selectPath(p)
	}
}

// gotoFirstInstance jumps from a "[...]" row to the occurrence that lists its
// dependencies.
func (m *AppModel) gotoFirstInstance() {
	r, ok := m.selectedRow()
	if !ok {
		return
	}
	if !r.Entry.IsCollapsed() {
		m.Status = "not a [...] reference"
		return
	}
	full, ok := m.Result.FullOccurrence(r.Entry.Path)
	if !ok {
		return
	}
	m.reveal(full)
	m.selectPath(full)
	line, _ := m.Result.LineOf(full)
	m.Status = fmt.Sprintf("first instance at [%s], line %d", full, line)
}

func (m *AppModel) runSearch(term string) {
	m.searchTerm = term
	m.Matches = m.Result.Search(term)
	m.matchIdx = 0
	if m.Matches == nil {
		m.Matches = []tree.Path{}
	}
	if len(m.Matches) == 0 {
		m.Status = fmt.Sprintf("no matches for %q", term)
		return
	}
	m.showMatch()
}

func (m *AppModel) cycleMatch(delta int) {
	if len(m.Matches) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx + delta + len(m.Matches)) % len(m.Matches)
	m.showMatch()
}

func (m *AppModel) showMatch() {
	p := m.Matches[m.matchIdx]
	m.reveal(p)
	m.selectPath(p)
	m.Status = fmt.Sprintf("match %d/%d", m.matchIdx+1, len(m.Matches))
}

func (m *AppModel) clearSearch() {
	m.Matches, m.matchIdx = nil, 0
	m.searchTerm = ""
	m.Input.SetValue("")
	m.Status = ""
}

func (m *AppModel) isMatch(p tree.Path) bool {
	for _, q := range m.Matches {
		if q.Equal(p) {
			return true
		}
	}
	return false
}
