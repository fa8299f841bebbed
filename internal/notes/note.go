package notes

import (
	"strings"
	"time"
)

// Default titles applied by the engine.
const (
	UntitledTitle = "Untitled"
	NewNoteTitle  = "New note"

	DefaultWelcomeTitle   = "Welcome"
	DefaultWelcomeContent = "This is your first note. Start typing!"
)

// Theme is the persisted colour mode.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme returns ThemeLight only for exactly "light"; anything else is dark.
func ParseTheme(value string) Theme {
	if value == string(ThemeLight) {
		return ThemeLight
	}
	return ThemeDark
}

// Note is a single text note.
type Note struct {
	ID        string
	Title     string
	Content   string
	UpdatedAt time.Time
}

// Text renders the note the way it is copied to the clipboard.
func (n Note) Text() string {
	return NormalizeTitle(n.Title) + "\n" + n.Content
}

// JoinText renders several notes separated by a horizontal rule.
func JoinText(list []Note) string {
	parts := make([]string, 0, len(list))
	for _, n := range list {
		parts = append(parts, n.Text())
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// NormalizeTitle trims raw and substitutes UntitledTitle when nothing is left.
func NormalizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if title == "" {
		return UntitledTitle
	}
	return title
}

// State is the full collection: notes in display order, selection and theme.
// An empty SelectedID means nothing is selected.
type State struct {
	Notes      []Note
	SelectedID string
	Theme      Theme
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	out := State{SelectedID: s.SelectedID, Theme: s.Theme}
	if len(s.Notes) > 0 {
		out.Notes = make([]Note, len(s.Notes))
		copy(out.Notes, s.Notes)
	}
	return out
}

// Find returns the note with the given id.
func (s State) Find(id string) (Note, bool) {
	for _, n := range s.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

// Selected returns the selected note, if any.
func (s State) Selected() (Note, bool) {
	if s.SelectedID == "" {
		return Note{}, false
	}
	return s.Find(s.SelectedID)
}
