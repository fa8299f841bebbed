package state

import (
	"fmt"
	"sync"
	"time"
)

// Status is the save indicator shown to the user.
type Status int

const (
	// StatusIdle is neutral: nothing in flight and nothing confirmed. Unsaved
	// manual edits and failed saves both land here.
	StatusIdle Status = iota
	// StatusPending means an edit is buffered or a save is in flight.
	StatusPending
	// StatusSaved means the most recent save completed.
	StatusSaved
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending-save"
	case StatusSaved:
		return "saved"
	default:
		return "idle"
	}
}

// Status messages.
const (
	MsgUnsaved    = "Unsaved changes"
	MsgSaving     = "Saving..."
	MsgSaved      = "Saved"
	MsgSaveFailed = "Save failed"
	MsgLoadFailed = "Failed to load"
)

// Snapshot is a copy of the save status at one instant.
type Snapshot struct {
	Status              Status
	Message             string
	MessageIsError      bool
	LastSaved           time.Time
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed saves
}

// Failing reports whether saves have failed repeatedly.
func (s Snapshot) Failing() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates status updates from the controller and save goroutines.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	issued   uint64
	// edited is the value of issued when the last edit was buffered. A save
	// with a token at or below it predates that edit.
	edited uint64
}

// MarkUnsaved records a buffered edit that nothing will save automatically.
func (s *Store) MarkUnsaved() {
	s.markEdited(StatusIdle, MsgUnsaved)
}

// MarkPending records a buffered edit that a timer will save.
func (s *Store) MarkPending() {
	s.markEdited(StatusPending, MsgSaving)
}

// BeginSave records that a save was issued and returns its token. Only the
// newest token may settle the status.
func (s *Store) BeginSave() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	s.snapshot.Status = StatusPending
	s.snapshot.Message = MsgSaving
	s.snapshot.MessageIsError = false
	s.snapshot.LastUpdated = time.Now()
	return s.issued
}

// CompleteSave settles the save identified by token. Completions of
// superseded saves are ignored and reported as false. A successful save
// issued before the latest edit records the save time but leaves the edit's
// status in place.
func (s *Store) CompleteSave(token uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.issued {
		return false
	}
	now := time.Now()
	s.snapshot.LastUpdated = now
	if err != nil {
		s.snapshot.Status = StatusIdle
		s.snapshot.Message = MsgSaveFailed
		s.snapshot.MessageIsError = true
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return true
	}
	s.snapshot.LastSaved = now
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	if s.edited >= token {
		return true
	}
	s.snapshot.Status = StatusSaved
	s.snapshot.Message = MsgSaved
	s.snapshot.MessageIsError = false
	return true
}

// MarkSaved reports the persisted state as current without a new save.
func (s *Store) MarkSaved() {
	s.set(StatusSaved, MsgSaved, false)
}

// Fail resets the status to neutral and records err with msg.
func (s *Store) Fail(msg string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Status = StatusIdle
	s.snapshot.Message = msg
	s.snapshot.MessageIsError = true
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
}

// Announce replaces the message without touching the save status.
func (s *Store) Announce(msg string, isErr bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Message = msg
	s.snapshot.MessageIsError = isErr
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current status.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) markEdited(status Status, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edited = s.issued
	s.snapshot.Status = status
	s.snapshot.Message = msg
	s.snapshot.MessageIsError = false
	s.snapshot.LastUpdated = time.Now()
}

func (s *Store) set(status Status, msg string, isErr bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Status = status
	s.snapshot.Message = msg
	s.snapshot.MessageIsError = isErr
	s.snapshot.LastUpdated = time.Now()
}
