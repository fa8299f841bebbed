package notes

// Engine owns the note collection and is its only mutator. Every operation is
// synchronous and total: stale ids are reported through return values, never
// as errors. Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	clock Clock
	ids   IDGenerator
	state State
}

// NewEngine creates an empty engine. Nil collaborators fall back to the
// system clock and UUID generator.
func NewEngine(clock Clock, ids IDGenerator) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Engine{
		clock: clock,
		ids:   ids,
		state: State{Theme: ThemeDark},
	}
}

// Hydrate replaces the collection with s. Notes without an id and repeated
// ids are dropped, titles are normalized, and a selection that does not
// point at a surviving note moves to the first note.
func (e *Engine) Hydrate(s State) {
	seen := make(map[string]struct{}, len(s.Notes))
	list := make([]Note, 0, len(s.Notes))
	for _, n := range s.Notes {
		if n.ID == "" {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		n.Title = NormalizeTitle(n.Title)
		list = append(list, n)
	}

	selected := s.SelectedID
	if _, ok := seen[selected]; !ok {
		selected = ""
		if len(list) > 0 {
			selected = list[0].ID
		}
	}

	e.state = State{
		Notes:      list,
		SelectedID: selected,
		Theme:      ParseTheme(string(s.Theme)),
	}
}

// EnsureAtLeastOneNote inserts and selects a note built from the given
// defaults when the collection is empty. It reports whether a note was created.
func (e *Engine) EnsureAtLeastOneNote(title, content string) bool {
	if len(e.state.Notes) > 0 {
		return false
	}
	n := e.newNote(title, content)
	e.state.Notes = append(e.state.Notes, n)
	e.state.SelectedID = n.ID
	return true
}

// AddNote creates a blank note at the front of the list and selects it.
func (e *Engine) AddNote() Note {
	n := e.newNote(NewNoteTitle, "")
	e.state.Notes = append([]Note{n}, e.state.Notes...)
	e.state.SelectedID = n.ID
	return n
}

// SelectNote selects id. It returns false when id is unknown or already selected.
func (e *Engine) SelectNote(id string) bool {
	if id == e.state.SelectedID || e.index(id) < 0 {
		return false
	}
	e.state.SelectedID = id
	return true
}

// UpdateTitle stores the normalized title and reports whether the note exists.
func (e *Engine) UpdateTitle(id, raw string) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	e.state.Notes[i].Title = NormalizeTitle(raw)
	e.state.Notes[i].UpdatedAt = e.clock.Now()
	return true
}

// UpdateContent stores raw verbatim and reports whether the note exists.
func (e *Engine) UpdateContent(id, raw string) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	e.state.Notes[i].Content = raw
	e.state.Notes[i].UpdatedAt = e.clock.Now()
	return true
}

// DeleteNote removes id. A deleted selection moves to the new first note, or
// to none when the list is now empty; callers must then call
// EnsureAtLeastOneNote.
func (e *Engine) DeleteNote(id string) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	e.state.Notes = append(e.state.Notes[:i:i], e.state.Notes[i+1:]...)
	switch {
	case len(e.state.Notes) == 0:
		e.state.SelectedID = ""
	case e.state.SelectedID == id:
		e.state.SelectedID = e.state.Notes[0].ID
	}
	return true
}

// ClearAll removes every note. Callers must then call EnsureAtLeastOneNote.
func (e *Engine) ClearAll() {
	e.state.Notes = nil
	e.state.SelectedID = ""
}

// SetTheme applies mode and returns the resulting theme.
func (e *Engine) SetTheme(mode string) Theme {
	e.state.Theme = ParseTheme(mode)
	return e.state.Theme
}

// Theme returns the current theme.
func (e *Engine) Theme() Theme {
	return e.state.Theme
}

// Selected returns a copy of the selected note.
func (e *Engine) Selected() (Note, bool) {
	return e.state.Selected()
}

// Note returns a copy of the note with the given id.
func (e *Engine) Note(id string) (Note, bool) {
	return e.state.Find(id)
}

// Len returns the number of notes.
func (e *Engine) Len() int {
	return len(e.state.Notes)
}

// Snapshot returns an independent copy of the collection.
func (e *Engine) Snapshot() State {
	return e.state.Clone()
}

func (e *Engine) newNote(title, content string) Note {
	return Note{
		ID:        e.ids.NewID(),
		Title:     NormalizeTitle(title),
		Content:   content,
		UpdatedAt: e.clock.Now(),
	}
}

func (e *Engine) index(id string) int {
	if id == "" {
		return -1
	}
	for i, n := range e.state.Notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
