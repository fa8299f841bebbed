package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const tempFilePrefix = ".quill-tmp-"

// FileStore keeps the snapshot as one JSON file named after the storage key.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	written uint64
}

// NewFileStore stores key inside dir. The directory is created on first save.
func NewFileStore(dir, key string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   filepath.Join(dir, fileName(key)+".json"),
		logger: logger,
	}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Port. A blob that cannot be parsed is renamed aside so the
// next save does not destroy it.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Default(), err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := Decode(data)
	if err != nil {
		aside := s.path + ".corrupt-" + strconv.FormatInt(time.Now().Unix(), 10)
		if renameErr := os.Rename(s.path, aside); renameErr != nil {
			s.logger.Warn("could not preserve unreadable snapshot", "path", s.path, "error", renameErr)
		} else {
			s.logger.Warn("unreadable snapshot moved aside", "path", aside)
		}
		return Default(), err
	}
	return snap, nil
}

// Save implements Port.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Revision != 0 && snap.Revision < s.written {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o600); err != nil {
		return err
	}
	if snap.Revision > s.written {
		s.written = snap.Revision
	}
	return nil
}

// Close implements Port.
func (s *FileStore) Close() error { return nil }

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it and renames it over filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
