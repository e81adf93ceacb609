package tui

import (
	"context"
	"fmt"
	"strings"

	"nqtv/internal/query"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgQueryReady carries a finished query. Seq identifies the request so a
// slow, superseded query cannot replace a newer result.
type MsgQueryReady struct {
	Seq       int
	StorePath string
	Result    *query.Result
}

// MsgError indicates a query failed. Raw is the tool output when it ran but
// could not be parsed.
type MsgError struct {
	Seq       int
	StorePath string
	Err       error
	Raw       string
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// QueryCmd runs the tool in the background and reports the outcome as a
// MsgQueryReady or MsgError.
func QueryCmd(ctx context.Context, tool query.Tool, storePath string, seq int) tea.Cmd {
	return func() tea.Msg {
		res, raw, err := query.Query(ctx, tool, storePath)
		if err != nil {
			return MsgError{Seq: seq, StorePath: storePath, Err: err, Raw: raw}
		}
		return MsgQueryReady{Seq: seq, StorePath: storePath, Result: res}
	}
}

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.RawViewport.Width = msg.Width / 2
		m.RawViewport.Height = msg.Height - chromeHeight
		m.ensureCursorVisible()
		return m, nil

	case MsgQueryReady:
		if msg.Seq != m.querySeq {
			return m, nil
		}
		m.StorePath = msg.StorePath
		m.setResult(msg.Result)
		m.Status = fmt.Sprintf("loaded %d entries", m.Result.Size())
		return m, nil

	case MsgError:
		if msg.Seq != m.querySeq {
			return m, nil
		}
		m.Loading = false
		m.Err = msg.Err
		m.ErrRaw = msg.Raw
		m.Result = nil
		m.rows = nil
		m.RawViewport.SetContent(numberLines(msg.Raw))
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		if m.ShowHelp {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "?", "esc", "q":
				m.ShowHelp = false
			}
			return m, nil
		}
		return m.updateKeys(msg)
	}

	return m, cmd
}

func (m AppModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Type {
	case tea.KeyEnter:
		mode := m.mode
		m.mode = modeNormal
		m.Input.Blur()
		value := strings.TrimSpace(m.Input.Value())
		if mode == modeOpen {
			m.Input.SetValue("")
			if value == "" {
				return m, nil
			}
			return m.open(value)
		}
		if value == "" || m.Result == nil {
			m.clearSearch()
			return m, nil
		}
		m.runSearch(value)
		return m, nil
	case tea.KeyEsc:
		if m.mode == modeSearch {
			m.clearSearch()
		}
		m.mode = modeNormal
		m.Input.Blur()
		m.Input.SetValue("")
		return m, nil
	}
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// open starts a query for storePath. Any older query still running is
// superseded.
func (m AppModel) open(storePath string) (tea.Model, tea.Cmd) {
	m.querySeq++
	m.StorePath = storePath
	m.Loading = true
	m.Err = nil
	m.Status = ""
	return m, QueryCmd(m.ctx, m.tool, storePath, m.querySeq)
}

func (m AppModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.ShowHelp = true
		return m, nil
	case "o":
		m.mode = modeOpen
		m.Input.Placeholder = "/nix/store/..."
		m.Input.SetValue("")
		m.Input.Focus()
		return m, textinput.Blink
	case "r":
		m.ShowRaw = !m.ShowRaw
		m.ensureCursorVisible()
		return m, nil
	}

	if m.Result == nil {
		if m.ShowRaw {
			var cmd tea.Cmd
			m.RawViewport, cmd = m.RawViewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.Matches != nil {
			m.clearSearch()
		}
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "g", "home":
		m.moveCursor(-len(m.rows))
	case "G", "end":
		m.moveCursor(len(m.rows))
	case "pgup":
		m.moveCursor(-m.treeHeight())
	case "pgdown":
		m.moveCursor(m.treeHeight())
	case "enter", " ", "space":
		m.toggle()
	case "l", "right":
		m.setOpen(true)
	case "h", "left":
		m.foldOrParent()
	case "E":
		m.expandAll()
	case "C":
		m.collapseAll()
	case "f":
		m.gotoFirstInstance()
	case "/":
		m.mode = modeSearch
		m.Input.Placeholder = "store path contains..."
		m.Input.SetValue("")
		m.Input.Focus()
		return m, textinput.Blink
	case "n":
		m.cycleMatch(1)
	case "N":
		m.cycleMatch(-1)
	case "Q":
		// Re-query with the selected entry as the root.
		if r, ok := m.selectedRow(); ok {
			return m.open(r.Entry.Path.String())
		}
	case "y":
		if r, ok := m.selectedRow(); ok {
			if err := writeClipboard(r.Entry.Path.String()); err != nil {
				m.Status = "clipboard: " + err.Error()
			} else {
				m.Status = "copied " + r.Entry.Path.String()
			}
		}
	case "s":
		m.Order = m.Order.Next()
		m.setResult(m.Result)
		m.Status = "sorted by " + m.Order.Label()
	}
	return m, nil
}
