package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scrape-client-go/pkg/cli/logger"
)

// inputFocuser is implemented by flows that own a text input. While the
// input has focus every key except Ctrl+C goes to the flow.
type inputFocuser interface {
	InputFocused() bool
}

// closer is implemented by flows that own background work.
type closer interface {
	Close()
}

// ViewportWrapper wraps a model with viewport and common command support
type ViewportWrapper struct {
	model    tea.Model
	viewport viewport.Model
	width    int
	height   int
	config   ViewportConfig

	// Common commands
	showHelp    bool
	helpContent string
}

// ViewportConfig configures the wrapper behavior
type ViewportConfig struct {
	Title        string
	ShowHeader   bool
	ShowFooter   bool
	HeaderHeight int            // Fixed header height (0 = auto)
	FooterHeight int            // Fixed footer height (0 = auto)
	UseViewport  bool           // Enable scrolling (false = simple responsive)
	MinWidth     int            // Minimum terminal width
	MinHeight    int            // Minimum terminal height
	EnableHelp   bool           // Enable '?' for help
	EnableMenu   bool           // Enable 'm' to return to menu
	HelpContent  func() string  // Function to generate help text
	OnMenu       func() tea.Cmd // Callback for menu command
}

// NewViewportWrapper creates a new wrapper around a model
func NewViewportWrapper(model tea.Model, config ViewportConfig) *ViewportWrapper {
	vp := viewport.New(0, 0)
	// Only page keys scroll; arrows and j/k belong to the wrapped lists.
	vp.KeyMap.Up.SetEnabled(false)
	vp.KeyMap.Down.SetEnabled(false)

	return &ViewportWrapper{
		model:    model,
		viewport: vp,
		config:   config,
		width:    80, // Default
		height:   24, // Default
	}
}

func (w *ViewportWrapper) Init() tea.Cmd {
	if w.model == nil {
		return nil
	}
	return w.model.Init()
}

// Close releases the wrapped flow's background work.
func (w *ViewportWrapper) Close() {
	if c, ok := w.model.(closer); ok {
		c.Close()
	}
}

// InputFocused reports whether the wrapped flow is capturing keys.
func (w *ViewportWrapper) InputFocused() bool {
	f, ok := w.model.(inputFocuser)
	return ok && f.InputFocused()
}

func (w *ViewportWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window size first
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = msg.Width
		w.height = msg.Height

		// Validate minimum size
		if w.config.MinWidth > 0 && w.width < w.config.MinWidth {
			w.width = w.config.MinWidth
		}
		if w.config.MinHeight > 0 && w.height < w.config.MinHeight {
			w.height = w.config.MinHeight
		}

		w.calculateLayout()
		logger.L().Debug("viewport resized", "title", w.config.Title, "width", w.viewport.Width, "height", w.viewport.Height)

		var cmd tea.Cmd
		if w.model != nil {
			w.model, cmd = w.model.Update(msg)
		}
		return w, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if model, cmd, handled := w.handleCommonKeys(keyMsg); handled {
			return model, cmd
		}
	}

	// Forward all other messages to wrapped model
	var cmd tea.Cmd
	if w.model != nil {
		w.model, cmd = w.model.Update(msg)
	}

	// If using viewport, also pass messages for scrolling
	if w.config.UseViewport && !w.InputFocused() {
		var vpCmd tea.Cmd
		w.viewport, vpCmd = w.viewport.Update(msg)
		cmd = tea.Batch(cmd, vpCmd)
	}

	return w, cmd
}

// handleCommonKeys implements help, menu and quit. handled is false when the
// key belongs to the wrapped model.
func (w *ViewportWrapper) handleCommonKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()

	if key == "ctrl+c" {
		return w, tea.Quit, true
	}

	// If help is showing, only handle help-related keys
	if w.showHelp {
		switch key {
		case "?", "esc", "q":
			w.showHelp = false
		}
		return w, nil, true
	}

	if w.InputFocused() {
		return w, nil, false
	}

	switch key {
	case "?":
		if w.config.EnableHelp {
			w.showHelp = true
			if w.config.HelpContent != nil {
				w.helpContent = w.config.HelpContent()
			}
			return w, nil, true
		}
	case "m":
		if w.config.EnableMenu {
			logger.L().Debug("menu key pressed", "title", w.config.Title)
			if w.config.OnMenu != nil {
				return w, w.config.OnMenu(), true
			}
			return w, func() tea.Msg { return MenuNavigationMsg{} }, true
		}
	case "q", "esc":
		return w, tea.Quit, true
	}
	return w, nil, false
}

func (w *ViewportWrapper) View() string {
	if w.showHelp {
		return w.renderHelpOverlay()
	}

	content := ""
	if w.model != nil {
		content = w.model.View()
	}

	if w.config.UseViewport {
		w.calculateLayout()
		w.viewport.SetContent(content)
		content = w.viewport.View()
	}

	var parts []string
	if w.config.ShowHeader {
		parts = append(parts, w.renderHeader())
	}
	parts = append(parts, content)
	if w.config.ShowFooter {
		parts = append(parts, w.renderFooter())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (w *ViewportWrapper) calculateLayout() {
	headerH := w.config.HeaderHeight
	if headerH == 0 && w.config.ShowHeader {
		headerH = 4 // Title, margin and hint line
	}

	footerH := w.config.FooterHeight
	if footerH == 0 && w.config.ShowFooter {
		footerH = 1 // Default footer height
	}

	if w.width <= 0 {
		w.width = 80
	}
	if w.height <= 0 {
		w.height = 24
	}

	contentH := w.height - headerH - footerH
	if contentH < 1 {
		contentH = 1
	}

	if w.config.UseViewport {
		w.viewport.Width = w.width
		w.viewport.Height = contentH
	}
}

func (w *ViewportWrapper) renderHeader() string {
	var b strings.Builder

	if w.config.Title != "" {
		b.WriteString(renderTitle(w.config.Title))
	}

	// Navigation hint
	if w.config.EnableMenu && w.config.EnableHelp {
		b.WriteString(helpStyle.Render("Press 'm' for menu, '?' for help") + "\n")
	} else if w.config.EnableHelp {
		b.WriteString(helpStyle.Render("Press '?' for help") + "\n")
	} else if w.config.EnableMenu {
		b.WriteString(helpStyle.Render("Press 'm' for menu") + "\n")
	}

	return b.String()
}

func (w *ViewportWrapper) renderFooter() string {
	shortcuts := []string{}

	if w.config.EnableHelp {
		shortcuts = append(shortcuts, "? help")
	}
	if w.config.EnableMenu {
		shortcuts = append(shortcuts, "m menu")
	}
	if w.config.UseViewport {
		shortcuts = append(shortcuts, "pgup/pgdn scroll")
	}
	shortcuts = append(shortcuts, "q quit")

	return helpStyle.Render(strings.Join(shortcuts, " • "))
}

func (w *ViewportWrapper) renderHelpOverlay() string {
	helpText := w.helpContent
	if helpText == "" {
		helpText = "No help available"
	}

	overlayStyle := lipgloss.NewStyle().
		Width(w.width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2).
		Foreground(lipgloss.Color("252"))

	title := titleStyle.Render("Keyboard Shortcuts")
	closeHint := helpStyle.Render("Press '?' or Esc to close")

	return overlayStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", helpText, "", closeHint),
	)
}
