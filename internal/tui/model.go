// Package tui provides the bubbletea terminal host and overlay renderer.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/notifarea/internal/compose"
	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/overlay"
	"github.com/jmylchreest/notifarea/internal/store"
)

const (
	frameInterval = time.Second / 60

	// overlayScrollStep is the rows one wheel notch scrolls the overlay.
	overlayScrollStep = 3
)

// Focus is the pane receiving keyboard input.
type Focus int

const (
	FocusForm Focus = iota
	FocusHistory
	FocusOverlay
)

func (f Focus) String() string {
	switch f {
	case FocusForm:
		return "compose"
	case FocusHistory:
		return "history"
	case FocusOverlay:
		return "notifications"
	default:
		return "unknown"
	}
}

// Options configures the TUI model.
type Options struct {
	Config  *config.Config
	Center  *daemon.Center
	Logger  *slog.Logger
	Context context.Context

	// Send delivers messages from callbacks that run outside Update.
	// Nil drops them.
	Send func(tea.Msg)
}

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg    *config.Config
	center *daemon.Center
	logger *slog.Logger
	ctx    context.Context

	composer *compose.Composer
	request  *compose.Request

	// Components
	form     *huh.Form
	history  list.Model
	viewport viewport.Model
	help     help.Model

	// Overlay
	engine     *overlay.Engine
	controller *overlay.Controller
	layer      *overlayRenderer

	// State
	focus    Focus
	detail   bool
	showHelp bool
	ticking  bool
	width    int
	height   int
	ready    bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool

	changes <-chan store.ChangeEvent
}

// Messages.
type (
	dispatchMsg     struct{ fn func() }
	refreshMsg      struct{}
	storeChangedMsg struct{ event store.ChangeEvent }
	frameMsg        struct{}
	actionMsg       struct {
		id    model.ID
		label string
	}
	configReloadedMsg struct{ cfg *config.Config }
	statusMsg         struct {
		text  string
		isErr bool
	}
	clearStatusMsg struct{}
)

// New creates a new TUI model.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	send := opts.Send
	onAction := func(id model.ID, label string) {
		if send != nil {
			go send(actionMsg{id: id, label: label})
		}
	}

	hostBackground := "#101114"
	if !lipgloss.HasDarkBackground() {
		hostBackground = "#f5f5f5"
	}

	layout := cfg.TUI.Overlay.Layout()
	layer := newOverlayRenderer(hostBackground, layout.ItemHeight)
	engine := overlay.NewEngine(layout, 0)

	l := list.New(nil, newHistoryDelegate(), 0, 0)
	l.Title = "History"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	req := compose.DefaultRequest(cfg)

	m := Model{
		cfg:        cfg,
		center:     opts.Center,
		logger:     logger,
		ctx:        ctx,
		composer:   compose.New(opts.Center, cfg, logger, onAction),
		request:    &req,
		form:       newComposeForm(&req, 40),
		history:    l,
		help:       help.New(),
		engine:     engine,
		controller: overlay.NewController(engine, opts.Center.Store(), layer, nil),
		layer:      layer,
		showHelp:   cfg.TUI.ShowHelp,
		keys:       DefaultKeyMap(),
		changes:    opts.Center.Store().Subscribe(),
	}
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.form.Init(),
		m.watchForChanges,
		func() tea.Msg { return refreshMsg{} },
	)
}

// watchForChanges waits for the next store change.
func (m Model) watchForChanges() tea.Msg {
	event, ok := <-m.changes
	if !ok {
		return nil
	}
	return storeChangedMsg{event: event}
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg.fn()
		return m, nil

	case refreshMsg:
		cmd := m.refresh()
		return m, cmd

	case storeChangedMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, m.watchForChanges)

	case frameMsg:
		if m.controller.Tick() {
			return m, m.frameTick()
		}
		m.ticking = false
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		cmd := m.refresh()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case actionMsg:
		title := string(msg.id)
		if n := m.center.Store().Get(msg.id); n != nil {
			title = n.Title
		}
		return m, status(fmt.Sprintf("Action %q on %q", msg.label, title), false)

	case configReloadedMsg:
		cmd := m.applyConfig(msg.cfg)
		return m, cmd

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case formDoneMsg:
		return m, nil
	}

	if m.focus == FocusForm {
		return m.updateForm(msg)
	}
	return m, nil
}

// refresh feeds the store into the history list and the overlay engine, and
// starts the frame loop when an animation begins.
func (m *Model) refresh() tea.Cmd {
	records := m.center.Store().All()
	m.history.SetItems(buildHistoryItems(records))
	if m.detail {
		if item, ok := m.history.SelectedItem().(historyItem); ok {
			m.viewport.SetContent(renderDetail(item.notification))
		}
	}

	animating := m.controller.Refresh()
	if m.focus == FocusOverlay && !m.layer.Focused() {
		m.focus = FocusForm
	}
	if animating && !m.ticking {
		m.ticking = true
		return m.frameTick()
	}
	return nil
}

func (m *Model) resize() {
	bodyH := max(m.height-2, 4)
	leftW := m.width / 2
	rightW := m.width - leftW

	m.form = m.form.WithWidth(max(leftW-4, 20))
	m.history.SetSize(max(rightW-2, 10), max(bodyH-2, 3))
	m.viewport = viewport.New(max(rightW-2, 10), max(bodyH-2, 3))
	m.help.Width = m.width

	layout := m.cfg.TUI.Overlay.Layout()
	m.engine.SetScreenHeight(m.height-layout.OffsetY, time.Now())
}

func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	m.cfg = cfg
	m.composer.SetConfig(cfg)
	layout := cfg.TUI.Overlay.Layout()
	m.layer.itemHeight = layout.ItemHeight
	m.engine.SetConfig(layout, time.Now())
	m.engine.SetScreenHeight(m.height-layout.OffsetY, time.Now())
	m.logger.Info("tui configuration applied")
	return m.refresh()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}

	switch m.form.State {
	case huh.StateCompleted:
		n, err := m.composer.Submit(m.ctx, *m.request)
		m.form = newComposeForm(m.request, max(m.width/2-4, 20))
		if err != nil {
			return m, tea.Batch(m.form.Init(), status("Not shown: "+err.Error(), true))
		}
		return m, tea.Batch(m.form.Init(), status(fmt.Sprintf("Shown %q", n.Title), false))
	case huh.StateAborted:
		m.form = newComposeForm(m.request, max(m.width/2-4, 20))
		return m, m.form.Init()
	}
	return m, cmd
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		m.cycleFocus()
		return m, nil
	case key.Matches(msg, m.keys.DismissTop):
		return m, m.dismissNewest()
	}

	switch m.focus {
	case FocusHistory:
		return m.handleHistoryKey(msg)
	case FocusOverlay:
		return m.handleOverlayKey(msg)
	default:
		return m.updateForm(msg)
	}
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case FocusForm:
		m.focus = FocusHistory
	case FocusHistory:
		m.detail = false
		if m.layer.SetFocused(true) {
			m.focus = FocusOverlay
			m.revealFocused()
			return
		}
		m.focus = FocusForm
	case FocusOverlay:
		m.layer.SetFocused(false)
		m.focus = FocusForm
	}
}

// dismissNewest hides the most recently inserted visible record.
func (m Model) dismissNewest() tea.Cmd {
	visible := m.center.Store().Visible()
	if len(visible) == 0 {
		return nil
	}
	n := visible[len(visible)-1]
	m.center.Hide(n.ID)
	return status(fmt.Sprintf("Dismissed %q", n.Title), false)
}

// handleHistoryKey handles keys in the history pane.
func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail {
		if key.Matches(msg, m.keys.Back) {
			m.detail = false
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	item, selected := m.history.SelectedItem().(historyItem)
	switch {
	case key.Matches(msg, m.keys.Enter):
		if selected {
			m.detail = true
			m.viewport.SetContent(renderDetail(item.notification))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Hide):
		if selected && m.center.Hide(item.notification.ID) {
			return m, status("Notification hidden", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reshow):
		if selected && !item.notification.Visible {
			n := item.notification.Clone()
			n.Visible = true
			m.center.Show(n)
			return m, status("Notification shown again", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.focus = FocusForm
		return m, nil
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

// handleOverlayKey handles keys while a notification card has focus.
func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.layer.MoveCard(-1)
		m.revealFocused()
	case key.Matches(msg, m.keys.Down):
		m.layer.MoveCard(1)
		m.revealFocused()
	case key.Matches(msg, m.keys.Left):
		m.layer.MoveButton(-1)
	case key.Matches(msg, m.keys.Right):
		m.layer.MoveButton(1)
	case key.Matches(msg, m.keys.Enter):
		if id, action, ok := m.layer.Selection(); ok {
			return m, m.press(id, action)
		}
	case key.Matches(msg, m.keys.Back):
		m.layer.SetFocused(false)
		m.focus = FocusForm
	}
	return m, nil
}

// revealFocused scrolls the overlay so the focused card is on screen.
func (m *Model) revealFocused() {
	if id, ok := m.layer.FocusedID(); ok {
		m.controller.Reveal(id)
	}
}

// handleMouse hit-tests overlay buttons and scrolls card messages.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if t, ok := m.layer.Hit(msg.X, msg.Y); ok {
			return m, m.press(t.ID, t.Action)
		}
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		if id, ok := m.layer.TextAt(msg.X, msg.Y); ok && m.layer.ScrollText(id, delta) {
			return m, nil
		}
		if m.layer.Contains(msg.X, msg.Y) {
			m.controller.Scroll(delta * overlayScrollStep)
			return m, nil
		}
		if m.focus == FocusHistory && !m.detail {
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// press activates a card button. An empty action is Dismiss.
func (m Model) press(id model.ID, action string) tea.Cmd {
	if action == "" {
		if m.center.Hide(id) {
			return status("Notification dismissed", false)
		}
		return nil
	}
	if !m.center.Act(id, action) {
		return status(fmt.Sprintf("Action %q is not available", action), true)
	}
	return nil
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	lines, x, y := m.layer.Layer()
	return composite(m.viewHost(), lines, x, y, m.width, m.height)
}

func (m Model) viewHost() string {
	bodyH := max(m.height-2, 4)
	leftW := m.width / 2
	rightW := m.width - leftW

	pane := func(focused bool, w int) lipgloss.Style {
		border := lipgloss.Color("8")
		if focused {
			border = lipgloss.Color("12")
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(max(w-2, 1)).
			Height(max(bodyH-2, 1)).
			MaxHeight(bodyH)
	}

	left := pane(m.focus == FocusForm, leftW).Render(m.form.View())
	var right string
	if m.detail {
		right = pane(m.focus == FocusHistory, rightW).Render(m.viewport.View())
	} else {
		right = pane(m.focus == FocusHistory, rightW).Render(m.history.View())
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	header := titleStyle.Render("notifarea") + dimStyle.Render(fmt.Sprintf("  %d visible · %d total · focus: %s",
		m.center.Store().VisibleCount(), m.center.Store().Count(), m.focus))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.footer(),
	)
}

func (m Model) footer() string {
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return statusStyle.Render(m.statusMsg)
	}
	if !m.showHelp {
		return ""
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
