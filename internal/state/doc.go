// Package state tracks Quill's save status for the presentation layer.
//
// # Overview
//
// The draft controller records every transition of the save indicator here
// and the UI reads it back through Snapshot. Saves complete on their own
// goroutines, so the Store is the meeting point between those goroutines and
// the render loop.
//
// # Status Machine
//
//	edit buffered (debounced)  → StatusPending  "Saving..."
//	edit buffered (manual)     → StatusIdle     "Unsaved changes"
//	save issued                → StatusPending  "Saving..."
//	save completed             → StatusSaved    "Saved"
//	save failed                → StatusIdle     "Save failed"
//
// A failed save never reports StatusSaved. The in-memory notes stay as they
// are and the next mutation retries.
//
// # Overlapping Saves
//
// BeginSave hands out increasing tokens. CompleteSave ignores any token other
// than the newest, so a slow early save that finishes after a later one
// cannot flip the indicator back. Every save carries the full snapshot, so
// the late write itself is harmless.
//
// # Messages
//
// Announce sets a one-off message ("Copied note", "Copy failed") without
// changing the save status.
//
// # Concurrency Model
//
// Writers take the write lock; Snapshot takes the read lock and copies the
// error value so callers never share it with the Store. The zero Store is
// ready to use.
package state
