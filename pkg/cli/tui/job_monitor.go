package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"scrape-client-go/pkg/cli/display"
	"scrape-client-go/pkg/cli/logger"
	"scrape-client-go/pkg/cli/tui/views"
	"scrape-client-go/pkg/monitor"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// jobMonitorModel lets the user submit URLs, watch jobs refresh, and open a
// job to see its processed results.
type jobMonitorModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	monitor  *monitor.Monitor
	interval time.Duration

	state    monitor.State
	cursor   int
	focus    int // views.FocusInput or views.FocusList
	urlInput textinput.Model
	spinner  spinner.Model
	notice   string
	err      error

	width int
}

// NewJobMonitorModel creates the job monitor flow wrapped in a scrolling viewport.
func NewJobMonitorModel(parent context.Context, api monitor.API, interval time.Duration) tea.Model {
	model := newJobMonitorModel(parent, api, interval)

	return NewViewportWrapper(model, ViewportConfig{
		Title:       "Job Monitor",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: JobMonitorHelpContent,
		MinWidth:    60,
		MinHeight:   10,
	})
}

func newJobMonitorModel(parent context.Context, api monitor.API, interval time.Duration) *jobMonitorModel {
	ctx, cancel := context.WithCancel(parent)

	input := textinput.New()
	input.Placeholder = "https://example.com"
	input.CharLimit = 2048
	input.Width = 60
	input.Prompt = "URL: "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	mon := monitor.New(api, monitor.Options{
		Interval: interval,
		Logger:   logger.L(),
	})

	return &jobMonitorModel{
		ctx:      ctx,
		cancel:   cancel,
		monitor:  mon,
		interval: interval,
		state:    mon.Snapshot(),
		focus:    views.FocusInput,
		urlInput: input,
		spinner:  sp,
		width:    views.DefaultWidth,
	}
}

func (m *jobMonitorModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForUpdate(),
		func() tea.Msg {
			return views.StartedMsg{Err: m.monitor.Start(m.ctx)}
		},
	)
}

// Close cancels in-flight requests and the background refresh.
func (m *jobMonitorModel) Close() {
	m.cancel()
	m.monitor.Close()
}

func (m *jobMonitorModel) InputFocused() bool {
	return m.focus == views.FocusInput
}

// waitForUpdate blocks until the monitor reports a change. It yields nil
// once the monitor is closed, which ends the chain.
func (m *jobMonitorModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.monitor.Updates():
			return views.StateChangedMsg{}
		case <-m.monitor.Done():
			return nil
		}
	}
}

func (m *jobMonitorModel) sync() {
	m.state = m.monitor.Snapshot()
	m.cursor = clampCursor(m.cursor, len(m.state.Jobs))
}

func (m *jobMonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	case views.StartedMsg:
		m.sync()
		m.setErr(msg.Err)
		return m, nil

	case views.SubmitDoneMsg:
		m.sync()
		if msg.Err != nil {
			logger.L().Debug("submit failed", "error", msg.Err)
			return m, nil
		}
		m.urlInput.Reset()
		m.notice = "Scrape job started: " + msg.JobID
		m.moveCursorTo(msg.JobID)
		return m, nil

	case views.RefreshDoneMsg:
		m.sync()
		m.setErr(msg.Err)
		return m, nil

	case views.JobLoadedMsg:
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
		m.urlInput, cmd = m.urlInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *jobMonitorModel) setErr(err error) {
	if errors.Is(err, monitor.ErrClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}
	m.err = err
}

func (m *jobMonitorModel) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "esc":
		m.focusList()
		return m, nil
	case "enter":
		if m.state.Submitting {
			return m, nil
		}
		m.notice = ""
		url := m.urlInput.Value()
		return m, func() tea.Msg {
			resp, err := m.monitor.SubmitJob(m.ctx, url)
			if err != nil {
				return views.SubmitDoneMsg{Err: err}
			}
			return views.SubmitDoneMsg{JobID: resp.JobID}
		}
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m *jobMonitorModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if newCursor, handled := handleListNavigation(key, m.cursor, len(m.state.Jobs)); handled {
		m.cursor = newCursor
		return m, nil
	}

	switch key {
	case "tab", "shift+tab", "i":
		m.focusInput()
		return m, textinput.Blink
	case "r":
		if m.state.Refreshing {
			return m, nil
		}
		return m, func() tea.Msg {
			ran, err := m.monitor.RefreshAll(m.ctx)
			return views.RefreshDoneMsg{Ran: ran, Err: err}
		}
	case "x":
		m.monitor.ClearSelection()
		return m, nil
	case "enter":
		if len(m.state.Jobs) == 0 {
			return m, nil
		}
		id := m.state.Jobs[m.cursor].ID
		m.monitor.SelectJob(id)
		return m, func() tea.Msg {
			return views.JobLoadedMsg{JobID: id, Err: m.monitor.RefreshSelected(m.ctx)}
		}
	}
	return m, nil
}

func (m *jobMonitorModel) focusInput() {
	m.focus = views.FocusInput
	m.urlInput.Focus()
}

func (m *jobMonitorModel) focusList() {
	m.focus = views.FocusList
	m.urlInput.Blur()
}

func (m *jobMonitorModel) moveCursorTo(id string) {
	for i, job := range m.state.Jobs {
		if job.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *jobMonitorModel) View() string {
	var b strings.Builder

	b.WriteString(renderLastUpdated(m.state.LastUpdated, m.interval))
	if m.state.Refreshing {
		b.WriteString(m.spinner.View() + " " + infoStyle.Render("Refreshing...") + "\n")
	} else if m.state.Loading {
		b.WriteString(m.spinner.View() + " " + renderLoadingState("Loading..."))
	} else {
		b.WriteString(helpStyle.Render("Press 'r' in the job list to refresh") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(renderSection("Submit URL to Scrape"))
	b.WriteString(m.urlInput.View() + "\n")
	if m.state.Submitting {
		b.WriteString(m.spinner.View() + " " + infoStyle.Render("Starting...") + "\n")
	}
	if m.state.Error != "" {
		b.WriteString(alertStyle.Render(m.state.Error) + "\n")
	}
	if m.notice != "" {
		b.WriteString(renderSuccess(m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString(renderInlineError(m.err) + "\n")
	}
	b.WriteString("\n")

	openID := m.state.Selected.OrEmpty()
	b.WriteString(renderJobList(m.state.Jobs, m.cursor, openID, m.focus == views.FocusList))

	if job := m.state.SelectedJob; job != nil {
		b.WriteString("\n")
		b.WriteString(renderJobDetails(job))

		if len(m.state.Results) > 0 {
			b.WriteString("\n")
			b.WriteString(renderSection("Processed Results"))
			for i, archive := range m.state.Results {
				if i > 0 {
					b.WriteString(renderDivider(40) + "\n")
				}
				b.WriteString(renderProcessedResult(archive, m.width))
			}
		} else if job.Status.Finished() {
			b.WriteString("\n" + renderEmptyState(display.EmptyResultsMessage))
		}
	}

	return b.String()
}
