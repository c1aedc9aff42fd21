package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scrape-client-go/pkg/cli/display"
	"scrape-client-go/pkg/cli/logger"
	"scrape-client-go/pkg/cli/tui/views"
	"scrape-client-go/pkg/search"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// documentSearchModel searches processed documents and keeps the result set
// fresh while the view is open.
type documentSearchModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	search   *search.Search
	interval time.Duration

	state      search.State
	cursor     int
	focus      int
	queryInput textinput.Model
	spinner    spinner.Model
	err        error

	width int
}

// NewDocumentSearchModel creates the document search flow wrapped in a scrolling viewport.
func NewDocumentSearchModel(parent context.Context, api search.Searcher, interval time.Duration) tea.Model {
	return NewViewportWrapper(newDocumentSearchModel(parent, api, interval), ViewportConfig{
		Title:       "Document Search",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: DocumentSearchHelpContent,
		MinWidth:    60,
		MinHeight:   10,
	})
}

func newDocumentSearchModel(parent context.Context, api search.Searcher, interval time.Duration) *documentSearchModel {
	ctx, cancel := context.WithCancel(parent)

	input := textinput.New()
	input.Placeholder = "Search documents..."
	input.CharLimit = 256
	input.Width = 50
	input.Prompt = "Query: "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	s := search.New(api, search.Options{
		Interval: interval,
		Logger:   logger.L(),
	})
	s.Bind(ctx)

	return &documentSearchModel{
		ctx:        ctx,
		cancel:     cancel,
		search:     s,
		interval:   interval,
		state:      s.Snapshot(),
		focus:      views.FocusInput,
		queryInput: input,
		spinner:    sp,
		width:      views.DefaultWidth,
	}
}

func (m *documentSearchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForUpdate())
}

// Close cancels in-flight requests and the background refresh.
func (m *documentSearchModel) Close() {
	m.cancel()
	m.search.Close()
}

func (m *documentSearchModel) InputFocused() bool {
	return m.focus == views.FocusInput
}

func (m *documentSearchModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.search.Updates():
			return views.StateChangedMsg{}
		case <-m.search.Done():
			return nil
		}
	}
}

func (m *documentSearchModel) sync() {
	m.state = m.search.Snapshot()
	m.cursor = clampCursor(m.cursor, len(m.state.Results))
}

func (m *documentSearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width == 0 {
			m.width = views.DefaultWidth
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case views.StateChangedMsg:
		m.sync()
		return m, m.waitForUpdate()

	case views.SearchDoneMsg:
		m.sync()
		m.setErr(msg.Err)
		if msg.Err == nil {
			m.cursor = 0
		}
		return m, nil

	case views.RefreshDoneMsg:
		m.sync()
		m.setErr(msg.Err)
		return m, nil

	case tea.KeyMsg:
		if m.focus == views.FocusInput {
			return m.handleInputKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.focus == views.FocusInput {
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *documentSearchModel) setErr(err error) {
	if errors.Is(err, search.ErrClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}
	m.err = err
}

func (m *documentSearchModel) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "esc":
		m.focus = views.FocusList
		m.queryInput.Blur()
		return m, nil
	case "enter":
		if m.state.Loading {
			return m, nil
		}
		query := m.queryInput.Value()
		return m, func() tea.Msg {
			return views.SearchDoneMsg{Query: query, Err: m.search.Search(m.ctx, query)}
		}
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *documentSearchModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if newCursor, handled := handleListNavigation(key, m.cursor, len(m.state.Results)); handled {
		m.cursor = newCursor
		return m, nil
	}

	switch key {
	case "tab", "shift+tab", "i", "/":
		m.focus = views.FocusInput
		m.queryInput.Focus()
		return m, textinput.Blink
	case "r":
		if m.state.Refreshing || m.state.Query == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			ran, err := m.search.Refresh(m.ctx, true)
			return views.RefreshDoneMsg{Ran: ran, Err: err}
		}
	}
	return m, nil
}

func (m *documentSearchModel) View() string {
	var b strings.Builder

	b.WriteString(m.queryInput.View() + "\n")
	if m.state.Loading {
		b.WriteString(m.spinner.View() + " " + infoStyle.Render("Searching...") + "\n")
	}
	if m.err != nil {
		b.WriteString(renderInlineError(m.err) + "\n")
	}
	b.WriteString("\n")

	if !m.state.Searched {
		b.WriteString(helpStyle.Render("Press Enter to search. An empty query lists every document.") + "\n")
		return b.String()
	}

	interval := time.Duration(0)
	if m.state.AutoRefresh {
		interval = m.interval
	}
	b.WriteString(renderLastUpdated(m.state.LastUpdated, interval))
	if m.state.Refreshing {
		b.WriteString(m.spinner.View() + " " + infoStyle.Render("Refreshing...") + "\n")
	}
	b.WriteString("\n")

	title := "Search Results"
	if len(m.state.Results) > 0 {
		title = fmt.Sprintf("Search Results (%d)", len(m.state.Results))
	}
	b.WriteString(renderSection(title))

	if len(m.state.Results) == 0 {
		b.WriteString(renderEmptyState(display.EmptyDocumentsMessage))
		return b.String()
	}

	for i, doc := range m.state.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderDocument(doc, m.focus == views.FocusList && i == m.cursor, m.width))
	}
	return b.String()
}
