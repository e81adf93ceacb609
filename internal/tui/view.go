package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"nqtv/internal/config"
	"nqtv/internal/model"
	"nqtv/internal/query"
)

// chromeHeight is every line that is not a tree row: title, pane borders,
// status bar and footer.
const chromeHeight = 5

type styles struct {
	title     lipgloss.Style
	selected  lipgloss.Style
	normal    lipgloss.Style
	dim       lipgloss.Style
	link      lipgloss.Style
	match     lipgloss.Style
	errText   lipgloss.Style
	status    lipgloss.Style
	border    lipgloss.Color
	accent    lipgloss.Color
	dialogBox lipgloss.Style
}

func newStyles(theme config.Theme) styles {
	def := config.Default().Theme
	if theme.Accent == "" {
		theme.Accent = def.Accent
	}
	if theme.Muted == "" {
		theme.Muted = def.Muted
	}
	if theme.Link == "" {
		theme.Link = def.Link
	}
	accent := lipgloss.Color(theme.Accent)
	muted := lipgloss.Color(theme.Muted)

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		normal:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		dim:      lipgloss.NewStyle().Foreground(muted),
		link:     lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Link)),
		match:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("238")),
		border: muted,
		accent: accent,
		dialogBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
	}
}

func (m AppModel) View() string {
	if m.ShowHelp {
		return m.renderHelpDialog()
	}
	if m.Loading {
		return fmt.Sprintf("\n  Running nix-store --query --tree %s ... please wait.\n", m.StorePath)
	}

	var body string
	switch {
	case m.Err != nil:
		body = m.renderError()
	case m.Result == nil:
		body = "\n  No store path given. Press 'o' to open one, 'q' to quit.\n"
	default:
		body = m.renderPanes()
	}

	return body + "\n" + m.renderStatus() + "\n" + m.renderFooter()
}

func (m AppModel) paneSizes() (left, right, interior int) {
	netWidth := m.WindowSize.Width - 4
	if netWidth < 20 {
		netWidth = 20
	}
	left = netWidth / 2
	right = netWidth - left
	return left, right, m.treeHeight()
}

func (m AppModel) renderPanes() string {
	leftWidth, rightWidth, interior := m.paneSizes()

	var left strings.Builder
	end := m.offset + interior
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		left.WriteString(m.renderRow(m.rows[i], i == m.Cursor, leftWidth))
		if i < end-1 {
			left.WriteString("\n")
		}
	}

	leftPane := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interior).
		Border(lipgloss.NormalBorder()).
		BorderForeground(m.styles.accent).
		Render(left.String())

	var rightContent string
	if m.ShowRaw {
		rightContent = m.RawViewport.View()
	} else {
		rightContent = clipLines(m.renderDetails(), interior, rightWidth)
	}
	rightPane := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interior).
		Border(lipgloss.NormalBorder()).
		BorderForeground(m.styles.border).
		Render(rightContent)

	title := m.styles.title.Render("nqtv " + m.Result.Root().Path.String())
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

func (m AppModel) renderRow(r row, isSelected bool, width int) string {
	icon := model.IconLeaf
	switch {
	case r.Entry.IsCollapsed():
		icon = model.IconCollapsed
	case r.Children > 0 && r.Open:
		icon = model.IconExpanded
	case r.Children > 0:
		icon = model.IconFolded
	}

	label, ok := r.Entry.Label()
	if !ok {
		icon = model.IconMissing
	}
	if r.Entry.IsCollapsed() {
		label += " [...]"
	}
	marker := " "
	if m.isMatch(r.Path) {
		marker = model.IconMatch
	}

	line := truncate(fmt.Sprintf("%s%s %s %s", r.Prefix, marker, icon, label), width)

	switch {
	case isSelected:
		return m.styles.selected.Render(line)
	case m.isMatch(r.Path):
		return m.styles.match.Render(line)
	case r.Entry.IsCollapsed():
		return m.styles.link.Render(line)
	}
	return m.styles.normal.Render(line)
}

func (m AppModel) renderDetails() string {
	r, ok := m.selectedRow()
	if !ok {
		return "No entries."
	}
	res := m.Result
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Details"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "\nStore path: %s", r.Entry.Path)
	if name, err := r.Entry.Path.DrvName(); err == nil {
		fmt.Fprintf(&b, "\nName:       %s", name)
	} else {
		fmt.Fprintf(&b, "\nName:       %s %v", model.IconMissing, err)
	}
	fmt.Fprintf(&b, "\nTree path:  [%s]", r.Path)
	fmt.Fprintf(&b, "\nLine:       %d", r.Line)
	fmt.Fprintf(&b, "\nChildren:   %d", r.Children)

	occurrences := res.Occurrences(r.Entry.Path)
	fmt.Fprintf(&b, "\nSeen:       %d time(s)", len(occurrences))
	if r.Entry.IsCollapsed() {
		if full, ok := res.FullOccurrence(r.Entry.Path); ok {
			b.WriteString(m.styles.link.Render(fmt.Sprintf("\n\n%s Already listed at [%s]. Press 'f' to go there.", model.IconCollapsed, full)))
		}
	}
	if len(occurrences) > 1 {
		b.WriteString("\n\n--- Occurrences ---")
		for _, p := range occurrences {
			e, _ := res.LookupPath(p)
			mark := ""
			if e.IsCollapsed() {
				mark = " [...]"
			}
			if p.Equal(r.Path) {
				mark += "  (this)"
			}
			fmt.Fprintf(&b, "\n  [%s]%s", p, mark)
		}
	}

	ctx := model.LineContextOf(res.Raw, r.Line)
	if ctx.ErrorMsg == "" {
		b.WriteString("\n\n--- nix-store output ---")
		writeLineContext(&b, ctx)
	}
	return b.String()
}

func writeLineContext(b *strings.Builder, ctx model.LineContext) {
	if ctx.HasBefore2 {
		fmt.Fprintf(b, "\n  %4d  %s", ctx.LineNumber-2, ctx.Before2)
	}
	if ctx.HasBefore1 {
		fmt.Fprintf(b, "\n  %4d  %s", ctx.LineNumber-1, ctx.Before1)
	}
	fmt.Fprintf(b, "\n» %4d  %s", ctx.LineNumber, ctx.Target)
	if ctx.HasAfter1 {
		fmt.Fprintf(b, "\n  %4d  %s", ctx.LineNumber+1, ctx.After1)
	}
	if ctx.HasAfter2 {
		fmt.Fprintf(b, "\n  %4d  %s", ctx.LineNumber+2, ctx.After2)
	}
}

func (m AppModel) renderError() string {
	var b strings.Builder
	b.WriteString(m.styles.errText.Render("Error"))
	fmt.Fprintf(&b, "\n\n  %v\n", m.Err)

	var pe *query.ParseError
	if errors.As(m.Err, &pe) && m.ErrRaw != "" {
		ctx := model.LineContextOf(m.ErrRaw, pe.Line)
		if ctx.ErrorMsg == "" {
			b.WriteString("\n--- nix-store output ---")
			writeLineContext(&b, ctx)
			b.WriteString("\n")
		}
	}
	if m.ErrRaw != "" {
		if m.ShowRaw {
			b.WriteString("\n" + m.RawViewport.View() + "\n")
		} else {
			b.WriteString(m.styles.dim.Render("\nPress 'r' to view the full nix-store output.\n"))
		}
	}
	return b.String()
}

func (m AppModel) renderStatus() string {
	parts := []string{}
	if m.Result != nil {
		parts = append(parts, fmt.Sprintf("%d nodes", m.Result.Size()))
		if r, ok := m.selectedRow(); ok {
			parts = append(parts, "["+r.Path.String()+"]")
		}
		parts = append(parts, "sort: "+m.Order.Label())
	}
	if m.Status != "" {
		parts = append(parts, m.Status)
	}
	line := " " + strings.Join(parts, " │ ")
	width := m.WindowSize.Width
	if width > 0 {
		line = truncate(line, width)
	}
	return m.styles.status.Width(max(width, 0)).Render(line)
}

func (m AppModel) renderFooter() string {
	switch m.mode {
	case modeSearch:
		return "Search: " + m.Input.View()
	case modeOpen:
		return "Open store path: " + m.Input.View()
	}
	help := "↑/↓: Move • enter: Expand • f: First instance • Q: Query this • /: Search • s: Sort • r: Raw • y: Copy • o: Open • ?: Help • q: Quit"
	return m.styles.dim.Render(help)
}

func (m AppModel) renderHelpDialog() string {
	w, h := m.WindowSize.Width, m.WindowSize.Height
	if w < 20 || h < 10 {
		return "Window too small"
	}

	helpWidth := w * 80 / 100
	if helpWidth < 40 {
		helpWidth = 40
	}
	if helpWidth > w-4 {
		helpWidth = w - 4
	}
	helpHeight := h - 6
	if helpHeight < 5 {
		helpHeight = 5
	}

	content := clipLines(model.Help(), helpHeight-2, helpWidth-2)
	dialog := m.styles.dialogBox.
		Width(helpWidth).
		Height(helpHeight).
		Render(content)

	return lipgloss.Place(w, h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

// numberLines prefixes each line of raw with its 1-based line number.
func numberLines(raw string) string {
	if raw == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(raw, "\n"), "\n")
	width := len(fmt.Sprintf("%d", len(lines)))
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%*d  %s\n", width, i+1, line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// clipLines keeps the first height lines of s and cuts each to width.
func clipLines(s string, height, width int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = truncate(line, width)
	}
	return strings.Join(lines, "\n")
}

// truncate cuts s to at most width cells, ending in "..." when cut. Styled
// text keeps its escape sequences intact.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "...")
}
