package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quill/internal/draft"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// placeModal centers a bordered box on a blank screen.
func placeModal(theme Theme, width, height, boxWidth int, content string) string {
	box := theme.Styles().Modal.Width(boxWidth).Render(content)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(lipgloss.Color(theme.Background)),
	)
}

// unsavedModal resolves a held-back navigation away from a dirty draft.
type unsavedModal struct {
	decision *draft.Decision
	cursor   int
}

var unsavedChoices = []string{"Discard", "Save", "Cancel"}

func newUnsavedModal(d *draft.Decision) *unsavedModal {
	return &unsavedModal{decision: d, cursor: 1}
}

func (m *unsavedModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Cancel):
		return m.resolve(2)
	case key.Matches(keyMsg, keys.Confirm):
		return m.resolve(m.cursor)
	}
	switch keyMsg.String() {
	case "left", "h", "shift+tab":
		m.cursor = (m.cursor + len(unsavedChoices) - 1) % len(unsavedChoices)
	case "right", "l", "tab":
		m.cursor = (m.cursor + 1) % len(unsavedChoices)
	case "d":
		return m.resolve(0)
	case "s":
		return m.resolve(1)
	case "c":
		return m.resolve(2)
	}
	return m, nil, false
}

func (m *unsavedModal) resolve(choice int) (Modal, tea.Cmd, bool) {
	intent := m.decision.Intent()
	var applied bool
	switch choice {
	case 0:
		applied = m.decision.Discard()
	case 1:
		applied = m.decision.Save()
	default:
		m.decision.Cancel()
	}
	return nil, msgCmd(decisionResolvedMsg{intent: intent, applied: applied}), true
}

func (m *unsavedModal) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.Surface)
	bg := NewBgStyle(theme.Surface)

	var b strings.Builder
	b.WriteString(bg.Render("Unsaved changes", styles.WarningText.Bold(true)))
	b.WriteString("\n\n")
	b.WriteString(bg.Render("This note has edits that are not saved.", styles.Text))
	b.WriteString("\n")
	b.WriteString(bg.Render("What should happen before you "+intentVerb(m.decision.Intent())+"?", styles.MutedText))
	b.WriteString("\n\n")

	buttons := make([]string, 0, len(unsavedChoices))
	for i, label := range unsavedChoices {
		text := "[" + strings.ToLower(label[:1]) + "] " + label
		if i == m.cursor {
			buttons = append(buttons, styles.Selected.Render(" "+text+" "))
			continue
		}
		buttons = append(buttons, bg.Render(" "+text+" ", styles.AccentText))
	}
	b.WriteString(bg.Join(buttons, "  "))
	return placeModal(theme, width, height, 52, b.String())
}

func intentVerb(intent draft.Intent) string {
	switch intent {
	case draft.IntentSelect:
		return "switch notes"
	case draft.IntentAdd:
		return "create a note"
	case draft.IntentDelete:
		return "delete this note"
	case draft.IntentClearAll:
		return "clear all notes"
	case draft.IntentQuit:
		return "quit"
	default:
		return "continue"
	}
}

// confirmModal asks a yes/no question and emits yes when confirmed.
type confirmModal struct {
	title string
	body  string
	yes   tea.Msg
}

func (m *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	if key.Matches(keyMsg, keys.Confirm) || keyMsg.String() == "y" {
		return nil, msgCmd(m.yes), true
	}
	if key.Matches(keyMsg, keys.Cancel) || keyMsg.String() == "n" {
		return nil, nil, true
	}
	return m, nil, false
}

func (m *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.Surface)
	bg := NewBgStyle(theme.Surface)

	var b strings.Builder
	b.WriteString(bg.Render(m.title, styles.DangerText))
	b.WriteString("\n\n")
	b.WriteString(bg.Render(m.body, styles.Text))
	b.WriteString("\n\n")
	b.WriteString(bg.Render("y", styles.AccentText) + bg.Sep(":") + bg.Render("Yes", styles.MutedText) +
		bg.Spaces(2) + bg.Render("n", styles.AccentText) + bg.Sep(":") + bg.Render("No", styles.MutedText))
	return placeModal(theme, width, height, 44, b.String())
}
