package draft

// Intent names a navigation the user asked for.
type Intent int

const (
	IntentSelect Intent = iota
	IntentAdd
	IntentDelete
	IntentClearAll
	IntentQuit
)

func (i Intent) String() string {
	switch i {
	case IntentSelect:
		return "select"
	case IntentAdd:
		return "add"
	case IntentDelete:
		return "delete"
	case IntentClearAll:
		return "clear-all"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Outcome reports what happened to a navigation intent. When Decision is
// non-nil the intent was held back because the draft is dirty.
type Outcome struct {
	Applied  bool
	Decision *Decision
}

// Decision is a navigation waiting on the user's choice about a dirty
// draft. Exactly one resolution takes effect; later calls do nothing. A
// newer intent supersedes an unresolved decision.
type Decision struct {
	c      *Controller
	intent Intent
	target string
	apply  func() bool
}

// Intent returns the held-back navigation.
func (d *Decision) Intent() Intent { return d.intent }

// Target returns the note id the intent refers to, if any.
func (d *Decision) Target() string { return d.target }

// Discard drops the draft and its pending commits, then applies the intent.
// It reports whether the intent was applied.
func (d *Decision) Discard() bool {
	c := d.c
	c.mu.Lock()
	if !d.claimLocked() {
		c.mu.Unlock()
		return false
	}
	c.cancelTimersLocked()
	c.resetDraftLocked()
	applied := d.apply()
	c.mu.Unlock()
	c.changed()
	return applied
}

// Save commits the draft, flushes and then applies the intent.
func (d *Decision) Save() bool {
	c := d.c
	c.mu.Lock()
	if !d.claimLocked() {
		c.mu.Unlock()
		return false
	}
	c.commitDraftLocked()
	c.flushLocked()
	applied := d.apply()
	c.mu.Unlock()
	c.changed()
	return applied
}

// Cancel abandons the intent and leaves the draft dirty.
func (d *Decision) Cancel() {
	c := d.c
	c.mu.Lock()
	d.claimLocked()
	c.mu.Unlock()
}

func (d *Decision) claimLocked() bool {
	if d.c.closed || d.c.decision != d {
		return false
	}
	d.c.decision = nil
	return true
}

// Select moves the selection to id.
func (c *Controller) Select(id string) Outcome {
	return c.navigate(IntentSelect, id, nil, func() bool {
		if !c.engine.SelectNote(id) {
			return false
		}
		c.resetDraftLocked()
		c.flushLocked()
		return true
	}, func() bool {
		cur, ok := c.engine.Selected()
		_, exists := c.engine.Note(id)
		return exists && (!ok || cur.ID != id)
	})
}

// Add creates a note at the top of the list and selects it.
func (c *Controller) Add() Outcome {
	return c.navigate(IntentAdd, "", nil, func() bool {
		c.engine.AddNote()
		c.resetDraftLocked()
		c.flushLocked()
		return true
	}, nil)
}

// Delete removes note id. Only deleting the selected note navigates away
// from the draft; other notes are deleted directly.
func (c *Controller) Delete(id string) Outcome {
	leaving := func() bool {
		cur, ok := c.engine.Selected()
		return ok && cur.ID == id
	}
	return c.navigate(IntentDelete, id, leaving, func() bool {
		if !c.engine.DeleteNote(id) {
			return false
		}
		c.engine.EnsureAtLeastOneNote(c.welcome.Title, c.welcome.Content)
		if c.draft.NoteID == id {
			c.resetDraftLocked()
		}
		c.flushLocked()
		return true
	}, func() bool {
		_, ok := c.engine.Note(id)
		return ok
	})
}

// ClearAll removes every note and recreates the welcome note.
func (c *Controller) ClearAll() Outcome {
	return c.navigate(IntentClearAll, "", nil, func() bool {
		c.engine.ClearAll()
		c.engine.EnsureAtLeastOneNote(c.welcome.Title, c.welcome.Content)
		c.resetDraftLocked()
		c.flushLocked()
		return true
	}, nil)
}

// Quit asks to leave the editor. Applied means the caller may exit; it
// should still call Close.
func (c *Controller) Quit() Outcome {
	return c.navigate(IntentQuit, "", nil, func() bool {
		return true
	}, nil)
}

// navigate applies an intent or, when it leaves a dirty draft, returns a
// Decision for it. valid screens out stale targets before any decision is
// raised so a no-op never prompts the user. A nil leaves means the intent
// always leaves the draft.
func (c *Controller) navigate(intent Intent, target string, leaves, apply, valid func() bool) Outcome {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}
	}
	if valid != nil && !valid() {
		c.mu.Unlock()
		return Outcome{}
	}
	leaving := leaves == nil || leaves()
	if leaving && c.dirtyLocked() {
		d := &Decision{c: c, intent: intent, target: target, apply: apply}
		c.decision = d
		c.mu.Unlock()
		return Outcome{Decision: d}
	}
	c.decision = nil
	if leaving {
		c.cancelTimersLocked()
	}
	applied := apply()
	c.mu.Unlock()
	c.changed()
	return Outcome{Applied: applied}
}
