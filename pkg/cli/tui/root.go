package tui

import (
	"context"
	"strings"
	"time"

	"scrape-client-go/pkg/cli/logger"
	"scrape-client-go/pkg/monitor"
	"scrape-client-go/pkg/poll"
	"scrape-client-go/pkg/search"

	tea "github.com/charmbracelet/bubbletea"
)

// Backend is everything the TUI flows call on the scraping service.
type Backend interface {
	monitor.API
	search.Searcher
}

// MenuNavigationMsg asks the root model to close the active flow and show
// the main menu again.
type MenuNavigationMsg struct{}

// rootModel is the Bubble Tea model that acts as an app shell for multiple flows.
// It presents a simple menu and then hands control to a specific flow model.
type rootModel struct {
	// Shared dependencies
	ctx          context.Context
	backend      Backend
	pollInterval time.Duration

	// Current active flow (when nil, we are in the main menu)
	current  tea.Model
	showHelp bool

	// Last known terminal size, replayed to flows opened later
	width  int
	height int
}

// NewRootModel constructs the root app-shell model that can launch multiple flows.
func NewRootModel(ctx context.Context, backend Backend, pollInterval time.Duration) tea.Model {
	return newRootModel(ctx, backend, pollInterval)
}

func newRootModel(ctx context.Context, backend Backend, pollInterval time.Duration) *rootModel {
	if pollInterval <= 0 {
		pollInterval = poll.DefaultInterval
	}
	return &rootModel{
		ctx:          ctx,
		backend:      backend,
		pollInterval: pollInterval,
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, backend Backend, pollInterval time.Duration) error {
	root := newRootModel(ctx, backend, pollInterval)
	defer root.Close()

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *rootModel) Init() tea.Cmd {
	// No async work on start; just render the menu.
	return nil
}

// IsDelegating reports whether a flow is active.
func (m *rootModel) IsDelegating() bool {
	return m.current != nil
}

// Close stops the active flow's background work.
func (m *rootModel) Close() {
	if c, ok := m.current.(closer); ok {
		c.Close()
	}
	m.current = nil
}

func (m *rootModel) open(flow tea.Model) (tea.Model, tea.Cmd) {
	if m.width > 0 {
		flow, _ = flow.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	m.current = flow
	return m, flow.Init()
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(MenuNavigationMsg); ok {
		logger.L().Debug("returning to main menu")
		m.Close()
		return m, nil
	}

	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}

	// If we have an active flow, delegate all messages to it.
	if m.current != nil {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "?":
			m.showHelp = !m.showHelp
			return m, nil

		case "ctrl+c", "q", "esc":
			if m.showHelp && msg.String() != "ctrl+c" {
				m.showHelp = false
				return m, nil
			}
			return m, tea.Quit

		case "1":
			m.showHelp = false
			return m.open(NewJobMonitorModel(m.ctx, m.backend, m.pollInterval))

		case "2":
			m.showHelp = false
			return m.open(NewDocumentSearchModel(m.ctx, m.backend, m.pollInterval))
		}
	}

	return m, nil
}

func (m *rootModel) View() string {
	// When a flow is active, defer to its view.
	if m.current != nil {
		return m.current.View()
	}

	var b strings.Builder

	b.WriteString(renderTitle("Web Scraper"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("Select an action:") + "\n\n")
	b.WriteString("  " + selectedMarkerStyle.Render("1)") + " Job monitor (submit URLs, watch jobs, view results)\n")
	b.WriteString("  " + selectedMarkerStyle.Render("2)") + " Document search\n")
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(RootMenuHelpContent() + "\n")
		b.WriteString(CommonHelpContent() + "\n")
	}
	b.WriteString(helpStyle.Render("Press the number of an option, '?' for help, or 'q' / Esc to quit.") + "\n")

	return b.String()
}
