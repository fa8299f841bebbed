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

	bolt "go.etcd.io/bbolt"
)

var bucketSnapshots = []byte("quill")

// BoltStore keeps the snapshot under the storage key in a bbolt database.
type BoltStore struct {
	db     *bolt.DB
	key    []byte
	logger *slog.Logger

	mu      sync.Mutex
	written uint64
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path, key string, logger *slog.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt db: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}
	return &BoltStore{db: db, key: []byte(key), logger: logger}, nil
}

// Load implements Port. An unreadable blob is copied to a sibling key before
// the default snapshot is returned.
func (s *BoltStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Default(), err
	}
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return errors.New("snapshot bucket missing")
		}
		if v := b.Get(s.key); len(v) > 0 {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Default(), fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := Decode(raw)
	if err != nil {
		aside := append(append([]byte(nil), s.key...), []byte(".corrupt-"+strconv.FormatInt(time.Now().Unix(), 10))...)
		if putErr := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketSnapshots).Put(aside, raw)
		}); putErr != nil {
			s.logger.Warn("could not preserve unreadable snapshot", "key", string(s.key), "error", putErr)
		}
		return Default(), err
	}
	return snap, nil
}

// Save implements Port.
func (s *BoltStore) Save(ctx context.Context, snap Snapshot) error {
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
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put(s.key, data)
	}); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if snap.Revision > s.written {
		s.written = snap.Revision
	}
	return nil
}

// Close implements Port.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
