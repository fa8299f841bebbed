package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded blob in memory. It backs ephemeral sessions
// and lets tests inject failures.
type MemoryStore struct {
	mu       sync.Mutex
	blob     []byte
	saves    int
	written  uint64
	loadErr  error
	saveHook func(Snapshot) error
}

// NewMemoryStore starts with the given raw blob (nil for first run).
func NewMemoryStore(blob []byte) *MemoryStore {
	return &MemoryStore{blob: append([]byte(nil), blob...)}
}

// SetLoadError makes Load report err (and return the default snapshot).
func (m *MemoryStore) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetSaveHook installs fn to run before each save; a non-nil result fails
// the save. fn runs without the store lock held.
func (m *MemoryStore) SetSaveHook(fn func(Snapshot) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveHook = fn
}

// Load implements Port.
func (m *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Default(), err
	}
	if m.loadErr != nil {
		return Default(), m.loadErr
	}
	return Decode(m.blob)
}

// Save implements Port.
func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	hook := m.saveHook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(snap); err != nil {
			return err
		}
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	m.saves++
	if snap.Revision != 0 && snap.Revision < m.written {
		return nil
	}
	m.blob = data
	if snap.Revision > m.written {
		m.written = snap.Revision
	}
	return nil
}

// Close implements Port.
func (m *MemoryStore) Close() error { return nil }

// Blob returns a copy of the stored blob.
func (m *MemoryStore) Blob() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.blob...)
}

// Saves returns how many saves reached the store.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Snapshot decodes the stored blob.
func (m *MemoryStore) Snapshot() Snapshot {
	snap, _ := Decode(m.Blob())
	return snap
}
