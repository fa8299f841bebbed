// Package notes holds Quill's note model and the Engine that owns it.
//
// # Overview
//
// The Engine is the single writer of the note collection: the ordered list of
// notes, the selected note id and the colour theme. Everything else in Quill
// reads the collection through Engine.Snapshot, which returns an independent
// copy, so presentation code can never reach engine-owned memory.
//
// # Invariants
//
//   - Note ids are unique and never change after creation.
//   - Titles are trimmed on write and never blank; "Untitled" replaces an
//     empty title.
//   - When the list is non-empty the selection refers to a note in it.
//     DeleteNote and ClearAll may leave the list empty; the caller repairs
//     that with EnsureAtLeastOneNote in the same step.
//   - New notes are prepended, so list order is newest-first insertion order.
//
// # Concurrency
//
// Engine does no locking. The draft controller serializes every call behind
// its own mutex.
package notes
