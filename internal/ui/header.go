package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quill/internal/state"
)

// renderHeader renders the logo, the title input and the dirty marker.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("quill", styles.Logo),
		bg.Render("≡", styles.AccentText),
	}
	label := "Title"
	if m.focus == focusTitle {
		parts = append(parts, bg.Render(label, styles.AccentText.Bold(true)))
	} else {
		parts = append(parts, bg.Render(label, styles.MutedText))
	}
	parts = append(parts, m.title.View())
	if m.view.Dirty {
		parts = append(parts, bg.Render("● modified", styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderRule renders the line between the header and the editor.
func (m Model) renderRule() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Border)).
		Background(lipgloss.Color(m.theme.Background)).
		Render(strings.Repeat("─", max(m.width, 0)))
}

// renderStatusLine shows the save status, the last message and collection facts.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)
	status := m.view.Status

	var parts []string
	parts = append(parts, bg.Render(statusLabel(status), styles.SaveStatusStyle(status.Status, false).Background(lipgloss.Color(m.theme.Surface))))
	if msg := statusMessage(status, m.now); msg != "" {
		style := styles.MutedText
		if status.MessageIsError {
			style = styles.DangerText
		}
		parts = append(parts, bg.Render(msg, style))
	}
	if status.Failing() {
		parts = append(parts, bg.Render("saves keep failing, see log", styles.DangerText))
	}

	right := []string{
		bg.Render(plural(len(m.view.State.Notes), "note", "notes"), styles.FaintText),
		bg.Render(m.theme.Name, styles.FaintText),
	}
	left := strings.Join(parts, sep)
	rightText := strings.Join(right, sep)
	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 2 {
		return styles.Header.Width(m.width).Render(left)
	}
	return styles.Header.Width(m.width).Render(left + bg.Spaces(gap) + rightText)
}

// renderCommandBar lists the main shortcuts.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	colon := bg.Sep(":")
	compact := m.width < LayoutCompactWidth

	bindings := m.keys.ShortHelp()
	segments := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		if compact {
			segments = append(segments, bg.Render(h.Key, styles.AccentText))
			continue
		}
		segments = append(segments, bg.Render(h.Key, styles.AccentText)+colon+bg.Render(h.Desc, styles.MutedText))
	}
	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

func statusLabel(s state.Snapshot) string {
	switch s.Status {
	case state.StatusPending:
		return "● saving"
	case state.StatusSaved:
		return "● saved"
	default:
		return "○ idle"
	}
}

// statusMessage decorates the status message with the last save time.
func statusMessage(s state.Snapshot, now time.Time) string {
	msg := s.Message
	if s.Status == state.StatusSaved && msg == state.MsgSaved && !s.LastSaved.IsZero() {
		return msg + " " + formatAgo(now.Sub(s.LastSaved))
	}
	return msg
}

func formatAgo(d time.Duration) string {
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return plural(int(d/time.Second), "second", "seconds") + " ago"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute", "minutes") + " ago"
	default:
		return plural(int(d/time.Hour), "hour", "hours") + " ago"
	}
}
