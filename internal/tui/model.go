package tui

import (
	"context"

	"nqtv/internal/config"
	"nqtv/internal/model"
	"nqtv/internal/query"
	"nqtv/internal/tree"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeOpen
)

// row is one visible line of the tree pane.
type row struct {
	Path     tree.Path
	Entry    model.Entry
	Line     int    // raw nix-store output line
	Prefix   string // "|   |   +---" style branch drawing
	Children int
	Open     bool
}

// Options configures a new AppModel.
type Options struct {
	Ctx       context.Context
	Tool      query.Tool
	StorePath string
	// Result, when set, is shown instead of running Tool, e.g. for --input.
	Result *query.Result
	Order  query.SortOrder
	Theme  config.Theme
}

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Result    *query.Result
	StorePath string
	Loading   bool
	Err       error
	ErrRaw    string // output that failed to parse, if any

	ctx      context.Context
	tool     query.Tool
	querySeq int

	// Tree state. expanded is keyed by raw line, which identifies an
	// occurrence in every sort order.
	Order    query.SortOrder
	expanded map[int]bool
	rows     []row
	Cursor   int
	offset   int

	WindowSize tea.WindowSizeMsg

	// View modes
	ShowRaw  bool
	ShowHelp bool

	// Search and open-path prompts
	mode     inputMode
	Input    textinput.Model
	Matches  []tree.Path
	matchIdx int

	// searchTerm is the last search run; Input is shared with the open prompt.
	searchTerm string

	Status string

	RawViewport viewport.Model
	styles      styles
}

// InitialModel returns the initial state.
func InitialModel(opts Options) AppModel {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60

	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	tool := opts.Tool
	if tool == nil {
		tool = query.DetectTool("")
	}

	m := AppModel{
		StorePath:   opts.StorePath,
		Order:       opts.Order,
		ctx:         ctx,
		tool:        tool,
		expanded:    make(map[int]bool),
		Input:       ti,
		RawViewport: viewport.New(0, 0),
		styles:      newStyles(opts.Theme),
	}
	if opts.Result != nil {
		m.setResult(opts.Result)
	} else {
		m.Loading = opts.StorePath != ""
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	if m.Result == nil && m.StorePath != "" {
		return QueryCmd(m.ctx, m.tool, m.StorePath, m.querySeq)
	}
	return nil
}
