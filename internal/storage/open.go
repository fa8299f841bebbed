package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Options select and locate a backend.
type Options struct {
	Backend string
	Dir     string
	Key     string
	Logger  *slog.Logger
}

// Open returns the Port for opts.Backend.
func Open(opts Options) (Port, error) {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = DefaultKey
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.Dir, key, opts.Logger), nil
	case BackendBolt:
		return OpenBoltStore(filepath.Join(opts.Dir, "quill.db"), key, opts.Logger)
	case BackendMemory:
		return NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
