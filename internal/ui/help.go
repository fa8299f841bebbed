package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var helpSectionTitles = []string{"Notes", "Editor", "Menus", "General"}

// renderHelp renders the help overlay from the key map.
func (m Model) renderHelp() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Background(lipgloss.Color(m.theme.Surface)).
		Width(12)

	var b strings.Builder
	b.WriteString(bg.Render("Keyboard Shortcuts", styles.Text.Bold(true)))
	b.WriteString("\n")
	b.WriteString(bg.Render(strings.Repeat("─", 30), styles.FaintText))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	for i, group := range groups {
		if i < len(helpSectionTitles) {
			b.WriteString(bg.Render(helpSectionTitles[i], styles.AccentText.Bold(true)))
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(bg.Render(h.Desc, styles.Text))
			b.WriteString("\n")
		}
		if i < len(groups)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(bg.Render("Sync: "+m.view.Policy.String(), styles.FaintText))

	return placeModal(m.theme, m.width, m.height, 40, b.String())
}
