package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/quill/internal/notes"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		State: notes.State{
			Notes: []notes.Note{
				{ID: "a", Title: "First", Content: "one", UpdatedAt: time.UnixMilli(1700000000123)},
				{ID: "b", Title: "Second", Content: "", UpdatedAt: time.UnixMilli(1700000000456)},
			},
			SelectedID: "b",
			Theme:      notes.ThemeLight,
		},
		LastWriteBy: "host-1",
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := sampleSnapshot()
	data, err := Encode(want)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, want.State.SelectedID, got.State.SelectedID)
	require.Equal(t, want.State.Theme, got.State.Theme)
	require.Equal(t, want.LastWriteBy, got.LastWriteBy)
	require.Len(t, got.State.Notes, 2)
	for i := range want.State.Notes {
		require.Equal(t, want.State.Notes[i].ID, got.State.Notes[i].ID)
		require.Equal(t, want.State.Notes[i].Title, got.State.Notes[i].Title)
		require.Equal(t, want.State.Notes[i].Content, got.State.Notes[i].Content)
		require.True(t, want.State.Notes[i].UpdatedAt.Equal(got.State.Notes[i].UpdatedAt))
	}
}

func TestEncode_NullsForUnsetFields(t *testing.T) {
	data, err := Encode(Default())
	require.NoError(t, err)
	require.JSONEq(t, `{"notes":[],"selectedId":null,"theme":"dark","lastWriteBy":null}`, string(data))
}

func TestDecode_EmptyAndMalformed(t *testing.T) {
	snap, err := Decode(nil)
	require.NoError(t, err)
	require.Empty(t, snap.State.Notes)
	require.Equal(t, notes.ThemeDark, snap.State.Theme)

	snap, err = Decode([]byte("{not json"))
	require.Error(t, err)
	require.Empty(t, snap.State.Notes)
	require.Empty(t, snap.State.SelectedID)
	require.Equal(t, notes.ThemeDark, snap.State.Theme)
	require.Empty(t, snap.LastWriteBy)
}

func TestDecode_ToleratesBadFields(t *testing.T) {
	snap, err := Decode([]byte(`{
		"notes": [
			{"id": "a", "title": 5, "content": "c", "updatedAt": "soon"},
			{"title": "no id"},
			"garbage",
			{"id": "b", "title": "B", "updatedAt": 1700000000000}
		],
		"selectedId": 42,
		"theme": "LIGHT",
		"lastWriteBy": ["x"]
	}`))
	require.NoError(t, err)
	require.Len(t, snap.State.Notes, 2)
	require.Equal(t, "a", snap.State.Notes[0].ID)
	require.Empty(t, snap.State.Notes[0].Title)
	require.True(t, snap.State.Notes[0].UpdatedAt.IsZero())
	require.Equal(t, "B", snap.State.Notes[1].Title)
	require.Empty(t, snap.State.SelectedID)
	require.Equal(t, notes.ThemeDark, snap.State.Theme)
	require.Empty(t, snap.LastWriteBy)

	snap, err = Decode([]byte(`{"notes": {"id": "x"}, "theme": "light"}`))
	require.NoError(t, err)
	require.Empty(t, snap.State.Notes)
	require.Equal(t, notes.ThemeLight, snap.State.Theme)
}

func TestFileStore_MissingFileIsDefault(t *testing.T) {
	s := NewFileStore(t.TempDir(), DefaultKey, nil)
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.State.Notes)
}

func TestFileStore_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewFileStore(dir, "my/key", nil)
	require.Equal(t, filepath.Join(dir, "my_key.json"), s.Path())

	require.NoError(t, s.Save(context.Background(), sampleSnapshot()))
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.State.Notes, 2)
	require.Equal(t, "b", snap.State.SelectedID)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(dir, tempFilePrefix+"*"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestFileStore_CorruptFileMovedAside(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, DefaultKey, nil)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{{{"), 0o600))

	snap, err := s.Load(context.Background())
	require.Error(t, err)
	require.Empty(t, snap.State.Notes)

	_, statErr := os.Stat(s.Path())
	require.True(t, errors.Is(statErr, os.ErrNotExist))
	aside, err := filepath.Glob(s.Path() + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, aside, 1)
}

func TestFileStore_DropsOlderRevision(t *testing.T) {
	s := NewFileStore(t.TempDir(), DefaultKey, nil)
	newer := sampleSnapshot()
	newer.Revision = 2
	older := Default()
	older.Revision = 1

	require.NoError(t, s.Save(context.Background(), newer))
	require.NoError(t, s.Save(context.Background(), older))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.State.Notes, 2)
}

func TestBoltStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.db")
	s, err := OpenBoltStore(path, DefaultKey, nil)
	require.NoError(t, err)

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.State.Notes)

	require.NoError(t, s.Save(context.Background(), sampleSnapshot()))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path, DefaultKey, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	snap, err = s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.State.Notes, 2)
	require.Equal(t, notes.ThemeLight, snap.State.Theme)
	require.Equal(t, "host-1", snap.LastWriteBy)
}

func TestMemoryStore_Failures(t *testing.T) {
	m := NewMemoryStore(nil)
	m.SetSaveHook(func(Snapshot) error { return errors.New("boom") })
	require.Error(t, m.Save(context.Background(), sampleSnapshot()))
	require.Equal(t, 0, m.Saves())

	m.SetSaveHook(nil)
	require.NoError(t, m.Save(context.Background(), sampleSnapshot()))
	require.Equal(t, 1, m.Saves())
	require.Len(t, m.Snapshot().State.Notes, 2)

	m.SetLoadError(errors.New("unavailable"))
	snap, err := m.Load(context.Background())
	require.Error(t, err)
	require.Empty(t, snap.State.Notes)
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	p, err := Open(Options{Backend: "file", Dir: dir})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, p)

	p, err = Open(Options{Backend: "bolt", Dir: dir, Key: "k"})
	require.NoError(t, err)
	require.IsType(t, &BoltStore{}, p)
	require.NoError(t, p.Close())

	p, err = Open(Options{Backend: "memory"})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, p)

	_, err = Open(Options{Backend: "redis"})
	require.ErrorIs(t, err, ErrUnknownBackend)
}
