package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/five82/quill/internal/notes"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "quill.notes.v1"

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Snapshot is the unit of persistence: the whole collection plus the id of
// the client that wrote it.
type Snapshot struct {
	State       notes.State
	LastWriteBy string

	// Revision orders saves issued by one process. Stores drop a save whose
	// revision is older than one already written. Zero disables the check.
	// It is never persisted.
	Revision uint64
}

// Default returns the empty snapshot used on first run and after load errors.
func Default() Snapshot {
	return Snapshot{State: notes.State{Theme: notes.ThemeDark}}
}

// Port loads and saves the single snapshot blob.
//
// Load fails soft: whatever goes wrong, the returned snapshot is usable (the
// empty default when nothing could be read) and the error is informational.
// A missing blob is not an error.
type Port interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

type wireNote struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
}

type wireSnapshot struct {
	Notes       []wireNote `json:"notes"`
	SelectedID  *string    `json:"selectedId"`
	Theme       string     `json:"theme"`
	LastWriteBy *string    `json:"lastWriteBy"`
}

// Encode renders snap as the JSON blob written by every backend.
func Encode(snap Snapshot) ([]byte, error) {
	w := wireSnapshot{
		Notes:       make([]wireNote, 0, len(snap.State.Notes)),
		SelectedID:  optional(snap.State.SelectedID),
		Theme:       string(notes.ParseTheme(string(snap.State.Theme))),
		LastWriteBy: optional(snap.LastWriteBy),
	}
	for _, n := range snap.State.Notes {
		w.Notes = append(w.Notes, wireNote{
			ID:        n.ID,
			Title:     n.Title,
			Content:   n.Content,
			UpdatedAt: toMillis(n.UpdatedAt),
		})
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a blob field by field. A blob that is not a JSON object
// yields the default snapshot and an error; individual fields of the wrong
// shape fall back to their defaults silently, as do notes without an id.
func Decode(data []byte) (Snapshot, error) {
	snap := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Default(), fmt.Errorf("parse snapshot: %w", err)
	}

	var items []json.RawMessage
	if raw, ok := fields["notes"]; ok && json.Unmarshal(raw, &items) == nil {
		for _, item := range items {
			if n, ok := decodeNote(item); ok {
				snap.State.Notes = append(snap.State.Notes, n)
			}
		}
	}
	snap.State.SelectedID = decodeString(fields["selectedId"])
	snap.State.Theme = notes.ParseTheme(decodeString(fields["theme"]))
	snap.LastWriteBy = decodeString(fields["lastWriteBy"])
	return snap, nil
}

func decodeNote(raw json.RawMessage) (notes.Note, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return notes.Note{}, false
	}
	id := decodeString(fields["id"])
	if id == "" {
		return notes.Note{}, false
	}
	var millis float64
	if raw, ok := fields["updatedAt"]; ok {
		_ = json.Unmarshal(raw, &millis)
	}
	return notes.Note{
		ID:        id,
		Title:     decodeString(fields["title"]),
		Content:   decodeString(fields["content"]),
		UpdatedAt: fromMillis(int64(millis)),
	}, true
}

func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileName maps a storage key to a safe file name stem.
func fileName(key string) string {
	name := unsafeKeyChars.ReplaceAllString(key, "_")
	if name == "" || name == "." || name == ".." {
		name = DefaultKey
	}
	return name
}
