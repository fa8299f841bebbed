package draft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/quill/internal/notes"
	"github.com/five82/quill/internal/state"
	"github.com/five82/quill/internal/storage"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("n%d", s.n)
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (f *fakeClipboard) WriteText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func (f *fakeClipboard) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seedBlob(t *testing.T, list ...notes.Note) []byte {
	t.Helper()
	snap := storage.Snapshot{State: notes.State{Notes: list, Theme: notes.ThemeDark}}
	if len(list) > 0 {
		snap.State.SelectedID = list[0].ID
	}
	data, err := storage.Encode(snap)
	require.NoError(t, err)
	return data
}

type harness struct {
	c      *Controller
	store  *storage.MemoryStore
	clip   *fakeClipboard
	status *state.Store
	notify atomic.Int32
}

func newHarness(t *testing.T, policy Policy, debounce time.Duration, blob []byte) *harness {
	t.Helper()
	h := &harness{
		store:  storage.NewMemoryStore(blob),
		clip:   &fakeClipboard{},
		status: &state.Store{},
	}
	h.c = New(Options{
		Engine:    notes.NewEngine(fixedClock{now: testTime}, &seqIDs{}),
		Store:     h.store,
		Clipboard: h.clip,
		Status:    h.status,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Policy:    policy,
		Debounce:  debounce,
		ClientID:  "test-client",
		Notify:    func() { h.notify.Add(1) },
	})
	t.Cleanup(h.c.Close)
	return h
}

func twoNotes(t *testing.T) []byte {
	return seedBlob(t,
		notes.Note{ID: "a", Title: "A", Content: "B", UpdatedAt: testTime},
		notes.Note{ID: "b", Title: "Second", Content: "two", UpdatedAt: testTime},
	)
}

func TestStart_FirstRunCreatesAndSavesWelcome(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, nil)
	require.NoError(t, h.c.Start(context.Background()))

	v := h.c.View()
	require.Len(t, v.State.Notes, 1)
	require.Equal(t, notes.DefaultWelcomeTitle, v.State.Notes[0].Title)
	require.Equal(t, v.State.Notes[0].ID, v.State.SelectedID)
	require.Equal(t, v.State.SelectedID, v.Draft.NoteID)
	require.False(t, v.Dirty)
	require.Equal(t, state.StatusSaved, v.Status.Status)

	persisted := h.store.Snapshot()
	require.Len(t, persisted.State.Notes, 1)
	require.Equal(t, "test-client", persisted.LastWriteBy)
	require.Equal(t, 1, h.store.Saves())
}

func TestStart_LoadFailureReportsAndFallsBack(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, nil)
	h.store.SetLoadError(errors.New("disk gone"))
	require.NoError(t, h.c.Start(context.Background()))

	v := h.c.View()
	require.Len(t, v.State.Notes, 1)
	require.Equal(t, state.StatusIdle, v.Status.Status)
	require.Equal(t, state.MsgLoadFailed, v.Status.Message)
	require.True(t, v.Status.MessageIsError)
}

func TestStart_ExistingNotesDoNotFlush(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.Wait()

	v := h.c.View()
	require.Len(t, v.State.Notes, 2)
	require.Equal(t, "a", v.State.SelectedID)
	require.Equal(t, Draft{NoteID: "a", Title: "A", Content: "B"}, v.Draft)
	require.Equal(t, state.StatusSaved, v.Status.Status)
	require.Zero(t, h.store.Saves())
}

func TestDirty_UsesCommitTitleRule(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetTitle("A")
	h.c.SetContent("B")
	require.False(t, h.c.Dirty())

	h.c.SetTitle("  A  ")
	require.False(t, h.c.Dirty())

	h.c.SetTitle("AB")
	require.True(t, h.c.Dirty())
	h.c.SetTitle("A")
	require.False(t, h.c.Dirty())

	h.c.SetContent("B ")
	require.True(t, h.c.Dirty())

	h.c.SetTitle("  My Note  ")
	h.c.Save()
	require.False(t, h.c.Dirty())
	n, ok := h.c.View().Selected()
	require.True(t, ok)
	require.Equal(t, "My Note", n.Title)
	require.Equal(t, "B ", n.Content)

	h.c.SetTitle("   ")
	h.c.Save()
	n, _ = h.c.View().Selected()
	require.Equal(t, notes.UntitledTitle, n.Title)
	require.False(t, h.c.Dirty())
}

func TestManual_EditsWaitForSave(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetContent("edited")
	v := h.c.View()
	require.True(t, v.Dirty)
	require.Equal(t, state.StatusIdle, v.Status.Status)
	require.Equal(t, state.MsgUnsaved, v.Status.Message)

	time.Sleep(20 * time.Millisecond)
	h.c.Wait()
	require.Zero(t, h.store.Saves())

	h.c.Save()
	h.c.Wait()
	require.Equal(t, 1, h.store.Saves())
	require.Equal(t, "edited", h.store.Snapshot().State.Notes[0].Content)
	require.Equal(t, state.StatusSaved, h.c.View().Status.Status)
}

func TestSave_CleanDraftStillFlushes(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.Save()
	h.c.Wait()
	require.Equal(t, 1, h.store.Saves())
	n, _ := h.c.View().Selected()
	require.True(t, n.UpdatedAt.Equal(testTime))
}

func TestSelect_CleanAppliesAndResyncsDraft(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	out := h.c.Select("b")
	require.True(t, out.Applied)
	require.Nil(t, out.Decision)

	v := h.c.View()
	require.Equal(t, "b", v.State.SelectedID)
	require.Equal(t, Draft{NoteID: "b", Title: "Second", Content: "two"}, v.Draft)
	h.c.Wait()
	require.Equal(t, "b", h.store.Snapshot().State.SelectedID)
}

func TestSelect_NoOpDoesNotFlushOrPrompt(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.SetContent("dirty")

	require.Equal(t, Outcome{}, h.c.Select("a"))
	require.Equal(t, Outcome{}, h.c.Select("missing"))
	h.c.Wait()
	require.Zero(t, h.store.Saves())
	require.True(t, h.c.Dirty())
}

func TestDecision_Cancel(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.SetContent("unsaved")

	out := h.c.Select("b")
	require.False(t, out.Applied)
	require.NotNil(t, out.Decision)
	require.Equal(t, IntentSelect, out.Decision.Intent())
	require.Equal(t, "b", out.Decision.Target())

	out.Decision.Cancel()
	v := h.c.View()
	require.Equal(t, "a", v.State.SelectedID)
	require.True(t, v.Dirty)
	require.Equal(t, "unsaved", v.Draft.Content)

	require.False(t, out.Decision.Discard())
	require.False(t, out.Decision.Save())
	require.Equal(t, "a", h.c.View().State.SelectedID)
}

func TestDecision_Discard(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.SetContent("unsaved")

	out := h.c.Select("b")
	require.NotNil(t, out.Decision)
	require.True(t, out.Decision.Discard())

	v := h.c.View()
	require.Equal(t, "b", v.State.SelectedID)
	require.Equal(t, "two", v.Draft.Content)
	require.False(t, v.Dirty)
	a, _ := v.State.Find("a")
	require.Equal(t, "B", a.Content)

	require.False(t, out.Decision.Save())
}

func TestDecision_SaveCommitsThenProceeds(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.SetTitle("  Renamed ")
	h.c.SetContent("kept")

	out := h.c.Select("b")
	require.NotNil(t, out.Decision)
	require.True(t, out.Decision.Save())
	h.c.Wait()

	v := h.c.View()
	require.Equal(t, "b", v.State.SelectedID)
	a, _ := v.State.Find("a")
	require.Equal(t, "Renamed", a.Title)
	require.Equal(t, "kept", a.Content)

	persisted, ok := h.store.Snapshot().State.Find("a")
	require.True(t, ok)
	require.Equal(t, "kept", persisted.Content)
}

func TestDecision_NewerIntentSupersedes(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.SetContent("unsaved")

	first := h.c.Select("b").Decision
	second := h.c.Add().Decision
	require.NotNil(t, first)
	require.NotNil(t, second)

	require.False(t, first.Discard())
	require.True(t, second.Discard())
	require.Len(t, h.c.View().State.Notes, 3)
}

func TestAdd_PrependsAndSelects(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	out := h.c.Add()
	require.True(t, out.Applied)
	v := h.c.View()
	require.Len(t, v.State.Notes, 3)
	require.Equal(t, notes.NewNoteTitle, v.State.Notes[0].Title)
	require.Equal(t, v.State.Notes[0].ID, v.State.SelectedID)
	require.Equal(t, v.State.SelectedID, v.Draft.NoteID)
}

func TestDelete_OnlyNoteRecreatesWelcome(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, nil)
	require.NoError(t, h.c.Start(context.Background()))
	only := h.c.View().State.SelectedID

	out := h.c.Delete(only)
	require.True(t, out.Applied)

	v := h.c.View()
	require.Len(t, v.State.Notes, 1)
	require.NotEqual(t, only, v.State.SelectedID)
	require.Equal(t, v.State.Notes[0].ID, v.State.SelectedID)
	require.Equal(t, v.State.SelectedID, v.Draft.NoteID)
}

func TestDelete_SelectedMovesToFirst(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, seedBlob(t,
		notes.Note{ID: "a", Title: "A"},
		notes.Note{ID: "b", Title: "B"},
		notes.Note{ID: "c", Title: "C"},
	))
	require.NoError(t, h.c.Start(context.Background()))
	require.True(t, h.c.Select("b").Applied)

	require.True(t, h.c.Delete("b").Applied)
	v := h.c.View()
	require.Equal(t, "a", v.State.SelectedID)
	require.Equal(t, "a", v.Draft.NoteID)
}

func TestDelete_OtherNoteKeepsDirtyDraft(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.SetContent("still editing")

	out := h.c.Delete("b")
	require.True(t, out.Applied)
	require.Nil(t, out.Decision)

	v := h.c.View()
	require.Len(t, v.State.Notes, 1)
	require.True(t, v.Dirty)
	require.Equal(t, "still editing", v.Draft.Content)
}

func TestDelete_SelectedWhileDirtyPrompts(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.c.SetContent("x")

	out := h.c.Delete("a")
	require.NotNil(t, out.Decision)
	require.Equal(t, IntentDelete, out.Decision.Intent())
	require.True(t, out.Decision.Discard())
	_, ok := h.c.View().State.Find("a")
	require.False(t, ok)

	require.Equal(t, Outcome{}, h.c.Delete("missing"))
}

func TestClearAll(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	require.True(t, h.c.ClearAll().Applied)
	h.c.Wait()
	v := h.c.View()
	require.Len(t, v.State.Notes, 1)
	require.Equal(t, notes.DefaultWelcomeTitle, v.State.Notes[0].Title)
	require.Len(t, h.store.Snapshot().State.Notes, 1)
}

func TestQuit(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	require.True(t, h.c.Quit().Applied)

	h.c.SetContent("x")
	out := h.c.Quit()
	require.False(t, out.Applied)
	require.NotNil(t, out.Decision)
	require.Equal(t, IntentQuit, out.Decision.Intent())
	require.True(t, out.Decision.Save())
	h.c.Wait()
	require.Equal(t, "x", h.store.Snapshot().State.Notes[0].Content)
}

func TestDebounced_CoalescesEdits(t *testing.T) {
	h := newHarness(t, PolicyDebounced, 30*time.Millisecond, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	for _, text := range []string{"h", "he", "hel", "hell", "hello"} {
		h.c.SetContent(text)
	}
	require.Equal(t, state.StatusPending, h.c.View().Status.Status)

	require.Eventually(t, func() bool {
		n, _ := h.c.View().Selected()
		return n.Content == "hello"
	}, time.Second, 5*time.Millisecond)
	h.c.Wait()
	require.Equal(t, 1, h.store.Saves())
	require.Equal(t, "hello", h.store.Snapshot().State.Notes[0].Content)
	require.Equal(t, state.StatusSaved, h.c.View().Status.Status)
	require.False(t, h.c.Dirty())
}

func TestDebounced_TitleCommitsPerNote(t *testing.T) {
	h := newHarness(t, PolicyDebounced, 20*time.Millisecond, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetTitle("  Fresh  ")
	require.Eventually(t, func() bool {
		n, _ := h.c.View().Selected()
		return n.Title == "Fresh"
	}, time.Second, 5*time.Millisecond)
}

func TestDebounced_DiscardCancelsPendingCommit(t *testing.T) {
	h := newHarness(t, PolicyDebounced, 40*time.Millisecond, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetContent("throw away")
	out := h.c.Select("b")
	require.NotNil(t, out.Decision)
	require.True(t, out.Decision.Discard())

	time.Sleep(120 * time.Millisecond)
	h.c.Wait()
	a, _ := h.c.View().State.Find("a")
	require.Equal(t, "B", a.Content)
	b, _ := h.c.View().State.Find("b")
	require.Equal(t, "two", b.Content)
}

func TestClose_CommitsPendingDebouncedEdits(t *testing.T) {
	h := newHarness(t, PolicyDebounced, time.Hour, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetContent("before exit")
	h.c.Close()
	require.Equal(t, "before exit", h.store.Snapshot().State.Notes[0].Content)

	h.c.SetContent("after close")
	require.Equal(t, "before exit", h.c.View().Draft.Content)
}

func TestSaveFailure_RevertsToNeutral(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	h.store.SetSaveHook(func(storage.Snapshot) error { return errors.New("disk full") })

	h.c.SetContent("x")
	h.c.Save()
	h.c.Wait()
	v := h.c.View()
	require.Equal(t, state.StatusIdle, v.Status.Status)
	require.Equal(t, state.MsgSaveFailed, v.Status.Message)
	require.False(t, v.Status.Failing())
	n, _ := v.Selected()
	require.Equal(t, "x", n.Content)

	h.c.Save()
	h.c.Wait()
	require.True(t, h.c.View().Status.Failing())

	h.store.SetSaveHook(nil)
	h.c.Save()
	h.c.Wait()
	v = h.c.View()
	require.Equal(t, state.StatusSaved, v.Status.Status)
	require.Zero(t, v.Status.ConsecutiveFailures)
}

func TestOverlappingSaves_LastIssuedWins(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	release := make(chan struct{})
	h.store.SetSaveHook(func(snap storage.Snapshot) error {
		if snap.State.Theme == notes.ThemeLight {
			<-release
			return errors.New("slow disk")
		}
		return nil
	})

	require.Equal(t, notes.ThemeLight, h.c.ToggleTheme())
	require.Equal(t, notes.ThemeDark, h.c.ToggleTheme())
	require.Eventually(t, func() bool {
		return h.store.Saves() == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, state.StatusSaved, h.c.View().Status.Status)

	close(release)
	h.c.Wait()
	v := h.c.View()
	require.Equal(t, state.StatusSaved, v.Status.Status)
	require.Zero(t, v.Status.ConsecutiveFailures)
	require.Equal(t, notes.ThemeDark, h.store.Snapshot().State.Theme)
}

func TestSaveIssuedBeforeEditKeepsUnsaved(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	release := make(chan struct{})
	h.store.SetSaveHook(func(snap storage.Snapshot) error {
		if snap.State.Notes[0].Title == "first" {
			<-release
		}
		return nil
	})

	h.c.SetTitle("first")
	h.c.Save()
	h.c.SetTitle("second edit")
	close(release)
	h.c.Wait()

	v := h.c.View()
	require.True(t, v.Dirty)
	require.Equal(t, state.StatusIdle, v.Status.Status)
	require.Equal(t, state.MsgUnsaved, v.Status.Message)
	require.False(t, v.Status.LastSaved.IsZero())

	h.c.Save()
	h.c.Wait()
	require.Equal(t, state.StatusSaved, h.c.View().Status.Status)
}

func TestSaveIssuedBeforeDebouncedEditKeepsPending(t *testing.T) {
	h := newHarness(t, PolicyDebounced, time.Hour, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	release := make(chan struct{})
	h.store.SetSaveHook(func(snap storage.Snapshot) error {
		if snap.State.Theme == notes.ThemeLight {
			<-release
		}
		return nil
	})

	h.c.ToggleTheme()
	h.c.SetContent("typed")
	close(release)
	h.c.Wait()

	v := h.c.View()
	require.True(t, v.Dirty)
	require.Equal(t, state.StatusPending, v.Status.Status)
}

func TestSaveWhileDraftDirtyKeepsPending(t *testing.T) {
	h := newHarness(t, PolicyDebounced, time.Hour, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetContent("typed")
	h.c.ToggleTheme()
	h.c.Wait()

	v := h.c.View()
	require.True(t, v.Dirty)
	require.Equal(t, state.StatusPending, v.Status.Status)
	require.Equal(t, notes.ThemeLight, h.store.Snapshot().State.Theme)
}

func TestDirectIntentSupersedesDecision(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetContent("x")
	d := h.c.Add().Decision
	require.NotNil(t, d)

	h.c.SetContent("B")
	require.True(t, h.c.Add().Applied)
	require.False(t, d.Discard())
	require.Len(t, h.c.View().State.Notes, 3)
}

func TestSaveSupersedesDecision(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	h.c.SetContent("x")
	d := h.c.Select("b").Decision
	require.NotNil(t, d)

	h.c.Save()
	require.False(t, d.Discard())
	require.Equal(t, "a", h.c.View().State.SelectedID)
}

func TestSetTheme(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))

	require.Equal(t, notes.ThemeLight, h.c.SetTheme("light"))
	require.Equal(t, notes.ThemeDark, h.c.SetTheme("anything-else"))
	require.Equal(t, notes.ThemeDark, h.c.SetTheme("dark"))
	h.c.Wait()
	require.Equal(t, 2, h.store.Saves())
}

func TestCopy(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	ctx := context.Background()

	h.c.SetContent("uncommitted")
	require.NoError(t, h.c.CopyNote(ctx, "a"))
	require.Equal(t, "A\nB", h.clip.Text())
	require.Equal(t, MsgCopied, h.c.View().Status.Message)

	require.NoError(t, h.c.CopyAll(ctx))
	require.Equal(t, "A\nB\n\n---\n\nSecond\ntwo", h.clip.Text())

	require.ErrorIs(t, h.c.CopyNote(ctx, "missing"), ErrUnknownNote)

	h.clip.err = errors.New("no clipboard")
	require.Error(t, h.c.CopyAll(ctx))
	v := h.c.View()
	require.Equal(t, MsgCopyFailed, v.Status.Message)
	require.True(t, v.Status.MessageIsError)
	require.Len(t, v.State.Notes, 2)
}

func TestNotify_CalledOnChanges(t *testing.T) {
	h := newHarness(t, PolicyManual, 0, twoNotes(t))
	require.NoError(t, h.c.Start(context.Background()))
	before := h.notify.Load()

	h.c.SetContent("x")
	require.Greater(t, h.notify.Load(), before)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Debounced ")
	require.NoError(t, err)
	require.Equal(t, PolicyDebounced, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyManual, p)

	_, err = ParsePolicy("sometimes")
	require.Error(t, err)
}
