package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/quill/internal/notes"
)

type menuEntry struct {
	label    string
	msg      tea.Msg
	selected bool
	action   bool
}

// menuModal lists the notes followed by collection-wide actions.
type menuModal struct {
	entries []menuEntry
	cursor  int
}

func newMenuModal(state notes.State) *menuModal {
	m := &menuModal{}
	for _, n := range state.Notes {
		selected := n.ID == state.SelectedID
		m.entries = append(m.entries, menuEntry{
			label:    shortTitle(n.Title),
			msg:      selectNoteMsg{id: n.ID},
			selected: selected,
		})
		if selected {
			m.cursor = len(m.entries) - 1
		}
	}
	themeLabel := "Light theme"
	if state.Theme == notes.ThemeLight {
		themeLabel = "Dark theme"
	}
	m.entries = append(m.entries,
		menuEntry{label: "+ New note", msg: addNoteMsg{}, action: true},
		menuEntry{label: themeLabel, msg: toggleThemeMsg{}, action: true},
		menuEntry{label: "Copy all notes", msg: copyAllMsg{}, action: true},
		menuEntry{label: "Clear all notes", msg: confirmClearMsg{}, action: true},
	)
	return m
}

func (m *menuModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Cancel), key.Matches(keyMsg, keys.Menu):
		return nil, nil, true
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Confirm):
		return nil, msgCmd(m.entries[m.cursor].msg), true
	}
	return m, nil, false
}

func (m *menuModal) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.Surface)
	bg := NewBgStyle(theme.Surface)
	inner := LayoutMenuWidth - 4

	var b strings.Builder
	b.WriteString(bg.Render("Notes", styles.AccentText.Bold(true)))
	b.WriteString("\n")
	b.WriteString(bg.Render(strings.Repeat("─", inner), styles.FaintText))
	b.WriteString("\n")

	dividerDone := false
	for i, e := range m.entries {
		if e.action && !dividerDone {
			b.WriteString(bg.Render(strings.Repeat("─", inner), styles.FaintText))
			b.WriteString("\n")
			dividerDone = true
		}
		marker := "  "
		if e.selected {
			marker = "● "
		}
		line := marker + e.label
		if i == m.cursor {
			b.WriteString(styles.Selected.Width(inner).Render(line))
		} else if e.action {
			b.WriteString(bg.FillLine(bg.Render(line, styles.MutedText), inner))
		} else {
			b.WriteString(bg.FillLine(bg.Render(line, styles.Text), inner))
		}
		if i < len(m.entries)-1 {
			b.WriteString("\n")
		}
	}
	return placeModal(theme, width, height, LayoutMenuWidth, b.String())
}
