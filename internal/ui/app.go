package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quill/internal/draft"
	"github.com/five82/quill/internal/notes"
)

// focus is the input receiving keystrokes.
type focus int

const (
	focusContent focus = iota
	focusTitle
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *draft.Controller
	Notifier   *Notifier
	Logger     *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx    context.Context
	ctrl   *draft.Controller
	keys   keyMap
	logger *slog.Logger

	view  draft.View
	theme Theme
	now   time.Time

	width  int
	height int
	ready  bool

	title   textinput.Model
	content textarea.Model
	focus   focus

	modal    Modal
	showHelp bool
}

// New creates a new Bubble Tea model bound to ctrl.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = notes.UntitledTitle
	title.CharLimit = 0

	content := textarea.New()
	content.Prompt = ""
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.MaxHeight = 0
	content.Placeholder = "Start typing..."

	m := Model{
		ctx:     ctx,
		ctrl:    opts.Controller,
		keys:    DefaultKeyMap(),
		logger:  logger,
		now:     time.Now(),
		title:   title,
		content: content,
		focus:   focusContent,
	}
	m.refresh()
	m.applyFocus()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		tickCmd(StatusTick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd(StatusTick)

	case controllerChangedMsg, copyDoneMsg:
		m.refresh()
		return m, nil

	case decisionResolvedMsg:
		m.refresh()
		if msg.intent == draft.IntentQuit && msg.applied {
			return m, tea.Quit
		}
		return m, nil

	case selectNoteMsg:
		return m.handleOutcome(m.ctrl.Select(msg.id))

	case addNoteMsg:
		return m.handleOutcome(m.ctrl.Add())

	case deleteNoteMsg:
		return m.handleOutcome(m.ctrl.Delete(msg.id))

	case clearAllMsg:
		return m.handleOutcome(m.ctrl.ClearAll())

	case confirmClearMsg:
		m.modal = &confirmModal{
			title: "Clear all notes",
			body:  "Every note will be removed.",
			yes:   clearAllMsg{},
		}
		return m, nil

	case toggleThemeMsg:
		m.ctrl.ToggleTheme()
		m.refresh()
		return m, nil

	case copyAllMsg:
		return m, m.copyCmd("")
	}

	return m.updateInputs(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		next, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		out := m.ctrl.Quit()
		if out.Applied {
			return m, tea.Quit
		}
		return m.handleOutcome(out)

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.ctrl.Save()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		return m.handleOutcome(m.ctrl.Add())

	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.view.Selected(); ok {
			m.modal = &confirmModal{
				title: "Delete note",
				body:  "Delete \"" + truncate(n.Title, 28) + "\"?",
				yes:   deleteNoteMsg{id: n.ID},
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if n, ok := m.view.Selected(); ok {
			return m, m.copyCmd(n.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		m.ctrl.ToggleTheme()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Menu):
		m.modal = newMenuModal(m.view.State)
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusTitle {
			m.focus = focusContent
		} else {
			m.focus = focusTitle
		}
		m.applyFocus()
		return m, nil
	}

	return m.updateInputs(msg)
}

// handleOutcome applies the result of a navigation intent.
func (m Model) handleOutcome(out draft.Outcome) (tea.Model, tea.Cmd) {
	if out.Decision != nil {
		m.modal = newUnsavedModal(out.Decision)
		return m, nil
	}
	m.refresh()
	return m, nil
}

// updateInputs forwards msg to the focused input and pushes any edit to
// the controller.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		before := m.title.Value()
		m.title, cmd = m.title.Update(msg)
		if after := m.title.Value(); after != before {
			m.ctrl.SetTitle(after)
			m.refresh()
		}
	default:
		before := m.content.Value()
		m.content, cmd = m.content.Update(msg)
		if after := m.content.Value(); after != before {
			m.ctrl.SetContent(after)
			m.refresh()
		}
	}
	return m, cmd
}

// refresh pulls a fresh view from the controller and realigns the inputs
// with the draft when the controller replaced it.
func (m *Model) refresh() {
	if m.ctrl == nil {
		return
	}
	m.view = m.ctrl.View()
	m.theme = ThemeFor(m.view.State.Theme)
	if m.title.Value() != m.view.Draft.Title {
		m.title.SetValue(m.view.Draft.Title)
	}
	if m.content.Value() != m.view.Draft.Content {
		m.content.SetValue(m.view.Draft.Content)
	}
	m.applyStyles()
}

func (m *Model) applyFocus() {
	if m.focus == focusTitle {
		m.content.Blur()
		m.title.Focus()
		return
	}
	m.title.Blur()
	m.content.Focus()
}

func (m *Model) resize() {
	m.title.Width = max(m.width-30, 10)
	m.content.SetWidth(max(m.width-2, 10))
	m.content.SetHeight(max(m.height-chromeHeight, 1))
}

func (m *Model) applyStyles() {
	t := m.theme
	surface := lipgloss.Color(t.Surface)
	background := lipgloss.Color(t.Background)

	m.title.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)).Background(surface)
	m.title.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)).Background(surface)
	m.title.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))

	base := lipgloss.NewStyle().Background(background).Foreground(lipgloss.Color(t.Text))
	m.content.FocusedStyle.Base = base
	m.content.FocusedStyle.Text = base
	m.content.FocusedStyle.CursorLine = lipgloss.NewStyle().Background(lipgloss.Color(t.SurfaceAlt)).Foreground(lipgloss.Color(t.Text))
	m.content.FocusedStyle.Placeholder = lipgloss.NewStyle().Background(background).Foreground(lipgloss.Color(t.Faint))
	m.content.FocusedStyle.EndOfBuffer = lipgloss.NewStyle().Background(background).Foreground(lipgloss.Color(t.Border))
	m.content.BlurredStyle = m.content.FocusedStyle
	m.content.BlurredStyle.CursorLine = base
}

// renderMain renders the editor screen.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderRule())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Padding(0, 1).
		Width(m.width).
		Render(m.content.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	return b.String()
}

func (m Model) copyCmd(id string) tea.Cmd {
	ctrl := m.ctrl
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, CopyTimeout)
		defer cancel()
		var err error
		if id == "" {
			err = ctrl.CopyAll(ctx)
		} else {
			err = ctrl.CopyNote(ctx, id)
		}
		return copyDoneMsg{err: err}
	}
}

// Messages

type tickMsg time.Time

type controllerChangedMsg struct{}

type decisionResolvedMsg struct {
	intent  draft.Intent
	applied bool
}

type selectNoteMsg struct{ id string }

type addNoteMsg struct{}

type deleteNoteMsg struct{ id string }

type confirmClearMsg struct{}

type clearAllMsg struct{}

type toggleThemeMsg struct{}

type copyAllMsg struct{}

type copyDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts.Context = ctx

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if opts.Notifier != nil {
		go opts.Notifier.forward(ctx, p)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
