package draft

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/quill/internal/clipboard"
	"github.com/five82/quill/internal/notes"
	"github.com/five82/quill/internal/schedule"
	"github.com/five82/quill/internal/state"
	"github.com/five82/quill/internal/storage"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 400 * time.Millisecond

// Status messages owned by the controller.
const (
	MsgCopied     = "Copied to clipboard"
	MsgCopyFailed = "Copy failed"
)

const contentKey = "content"

// ErrUnknownNote is returned by CopyNote for an id that does not exist.
var ErrUnknownNote = errors.New("unknown note")

// Draft is the editable, uncommitted copy of the selected note.
type Draft struct {
	NoteID  string
	Title   string
	Content string
}

// View is an immutable picture of everything the presentation layer renders.
type View struct {
	State  notes.State
	Draft  Draft
	Dirty  bool
	Policy Policy
	Status state.Snapshot
}

// Selected returns the committed copy of the selected note.
func (v View) Selected() (notes.Note, bool) {
	return v.State.Selected()
}

// Options configures a Controller. Engine, Store and Status default to fresh
// values; Clipboard defaults to clipboard.System.
type Options struct {
	Engine    *notes.Engine
	Store     storage.Port
	Clipboard clipboard.Writer
	Status    *state.Store
	Logger    *slog.Logger

	Policy   Policy
	Debounce time.Duration
	ClientID string

	WelcomeTitle   string
	WelcomeContent string

	// Notify is called after every state or status change, never with the
	// controller lock held.
	Notify func()
}

// Controller owns the draft of the selected note and every path that
// commits or persists it.
type Controller struct {
	mu       sync.Mutex
	engine   *notes.Engine
	store    storage.Port
	clip     clipboard.Writer
	status   *state.Store
	logger   *slog.Logger
	sched    *schedule.Scheduler
	policy   Policy
	clientID string
	welcome  notes.Note
	notify   func()

	draft    Draft
	decision *Decision
	revision uint64
	closed   bool
	saves    sync.WaitGroup
}

// New builds a controller. Call Start before use.
func New(opts Options) *Controller {
	if opts.Engine == nil {
		opts.Engine = notes.NewEngine(nil, nil)
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore(nil)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if opts.Status == nil {
		opts.Status = &state.Store{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.WelcomeTitle == "" {
		opts.WelcomeTitle = notes.DefaultWelcomeTitle
	}
	if opts.WelcomeContent == "" {
		opts.WelcomeContent = notes.DefaultWelcomeContent
	}

	c := &Controller{
		engine:   opts.Engine,
		store:    opts.Store,
		clip:     opts.Clipboard,
		status:   opts.Status,
		logger:   opts.Logger,
		policy:   opts.Policy,
		clientID: opts.ClientID,
		welcome:  notes.Note{Title: opts.WelcomeTitle, Content: opts.WelcomeContent},
		notify:   opts.Notify,
	}
	c.sched = schedule.New(opts.Debounce, c.runTimer)
	return c
}

// Start loads the persisted snapshot, repairs it and, when the collection
// was empty, creates the welcome note and waits for it to be written.
func (c *Controller) Start(ctx context.Context) error {
	snap, loadErr := c.store.Load(ctx)
	if loadErr != nil {
		c.logger.Warn("load notes failed, starting from defaults", "error", loadErr)
	}

	c.mu.Lock()
	c.engine.Hydrate(snap.State)
	created := c.engine.EnsureAtLeastOneNote(c.welcome.Title, c.welcome.Content)
	c.resetDraftLocked()
	count := c.engine.Len()
	var done <-chan error
	if created {
		done = c.flushLocked()
	}
	c.mu.Unlock()

	var saveErr error
	if done != nil {
		select {
		case saveErr = <-done:
		case <-ctx.Done():
			saveErr = ctx.Err()
		}
	}

	switch {
	case loadErr != nil:
		c.status.Fail(state.MsgLoadFailed, loadErr)
	case !created:
		c.status.MarkSaved()
	}
	c.logger.Info("notes loaded",
		"notes", count,
		"created_welcome", created,
		"policy", c.policy.String(),
	)
	c.changed()
	return saveErr
}

// SetTitle replaces the draft title.
func (c *Controller) SetTitle(text string) {
	c.mu.Lock()
	if c.closed || c.draft.NoteID == "" {
		c.mu.Unlock()
		return
	}
	c.draft.Title = text
	if c.policy == PolicyDebounced {
		id := c.draft.NoteID
		c.sched.Schedule(titleKey(id), func() { c.commitTitleLocked(id, text) })
	}
	c.markEditedLocked()
	c.mu.Unlock()
	c.changed()
}

// SetContent replaces the draft content.
func (c *Controller) SetContent(text string) {
	c.mu.Lock()
	if c.closed || c.draft.NoteID == "" {
		c.mu.Unlock()
		return
	}
	c.draft.Content = text
	if c.policy == PolicyDebounced {
		id := c.draft.NoteID
		c.sched.Schedule(contentKey, func() { c.commitContentLocked(id, text) })
	}
	c.markEditedLocked()
	c.mu.Unlock()
	c.changed()
}

// Dirty reports whether the draft differs from the committed note.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

// Save commits the draft and flushes, even when nothing changed. It
// supersedes any unresolved Decision.
func (c *Controller) Save() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.decision = nil
	c.commitDraftLocked()
	c.flushLocked()
	c.mu.Unlock()
	c.changed()
}

// SetTheme applies mode and flushes when the theme changed.
func (c *Controller) SetTheme(mode string) notes.Theme {
	c.mu.Lock()
	before := c.engine.Theme()
	theme := c.engine.SetTheme(mode)
	if theme != before {
		c.flushLocked()
	}
	c.mu.Unlock()
	c.changed()
	return theme
}

// ToggleTheme switches between dark and light.
func (c *Controller) ToggleTheme() notes.Theme {
	c.mu.Lock()
	next := notes.ThemeLight
	if c.engine.Theme() == notes.ThemeLight {
		next = notes.ThemeDark
	}
	c.engine.SetTheme(string(next))
	c.flushLocked()
	c.mu.Unlock()
	c.changed()
	return next
}

// CopyNote writes the committed text of note id to the clipboard.
func (c *Controller) CopyNote(ctx context.Context, id string) error {
	c.mu.Lock()
	n, ok := c.engine.Note(id)
	c.mu.Unlock()
	if !ok {
		return ErrUnknownNote
	}
	return c.copyText(ctx, n.Text())
}

// CopyAll writes every committed note to the clipboard.
func (c *Controller) CopyAll(ctx context.Context) error {
	c.mu.Lock()
	text := notes.JoinText(c.engine.Snapshot().Notes)
	c.mu.Unlock()
	return c.copyText(ctx, text)
}

// View returns a snapshot of the controller for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:  c.engine.Snapshot(),
		Draft:  c.draft,
		Dirty:  c.dirtyLocked(),
		Policy: c.policy,
		Status: c.status.Snapshot(),
	}
}

// Close commits pending debounced edits, stops the timers and waits for
// in-flight saves. A dirty manual draft is not committed.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.closed {
		if n := c.sched.FlushAll(); n > 0 {
			c.logger.Debug("committed pending edits on close", "count", n)
		}
		c.sched.Stop()
		c.closed = true
		c.decision = nil
	}
	c.mu.Unlock()
	c.saves.Wait()
}

// Wait blocks until every issued save has completed.
func (c *Controller) Wait() {
	c.saves.Wait()
}

func (c *Controller) copyText(ctx context.Context, text string) error {
	if err := c.clip.WriteText(ctx, text); err != nil {
		c.logger.Warn("clipboard write failed", "error", err)
		c.status.Announce(MsgCopyFailed, true)
		c.changed()
		return err
	}
	c.status.Announce(MsgCopied, false)
	c.changed()
	return nil
}

// runTimer is the scheduler executor: fired commits run under the
// controller lock like any other intent.
func (c *Controller) runTimer(run func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	run()
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) commitTitleLocked(id, text string) {
	if !c.engine.UpdateTitle(id, text) {
		return
	}
	c.logger.Debug("committed title", "note", id)
	c.flushLocked()
}

func (c *Controller) commitContentLocked(id, text string) {
	if !c.engine.UpdateContent(id, text) {
		return
	}
	c.logger.Debug("committed content", "note", id)
	c.flushLocked()
}

// commitDraftLocked writes the draft into the engine and drops the focused
// note's timers. Unchanged fields are left alone so updatedAt only moves on
// real edits.
func (c *Controller) commitDraftLocked() {
	c.cancelTimersLocked()
	n, ok := c.engine.Selected()
	if !ok || n.ID != c.draft.NoteID {
		return
	}
	if notes.NormalizeTitle(c.draft.Title) != n.Title {
		c.engine.UpdateTitle(n.ID, c.draft.Title)
	}
	if c.draft.Content != n.Content {
		c.engine.UpdateContent(n.ID, c.draft.Content)
	}
}

func (c *Controller) cancelTimersLocked() {
	if c.draft.NoteID != "" {
		c.sched.Cancel(titleKey(c.draft.NoteID))
	}
	c.sched.Cancel(contentKey)
}

// resetDraftLocked copies the selected note into the draft.
func (c *Controller) resetDraftLocked() {
	n, ok := c.engine.Selected()
	if !ok {
		c.draft = Draft{}
		return
	}
	c.draft = Draft{NoteID: n.ID, Title: n.Title, Content: n.Content}
}

func (c *Controller) dirtyLocked() bool {
	n, ok := c.engine.Selected()
	if !ok || n.ID != c.draft.NoteID {
		return false
	}
	return notes.NormalizeTitle(c.draft.Title) != n.Title || c.draft.Content != n.Content
}

func (c *Controller) markEditedLocked() {
	if !c.dirtyLocked() {
		return
	}
	if c.policy == PolicyDebounced {
		c.status.MarkPending()
		return
	}
	c.status.MarkUnsaved()
}

// flushLocked issues an asynchronous save of the full snapshot. The returned
// channel receives the save result.
func (c *Controller) flushLocked() <-chan error {
	done := make(chan error, 1)
	if c.closed {
		done <- nil
		return done
	}
	c.revision++
	snap := storage.Snapshot{
		State:       c.engine.Snapshot(),
		LastWriteBy: c.clientID,
		Revision:    c.revision,
	}
	token := c.status.BeginSave()
	// Edits still in the draft are not part of this save.
	c.markEditedLocked()

	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		err := c.store.Save(context.Background(), snap)
		if err != nil {
			c.logger.Error("save notes failed", "revision", snap.Revision, "error", err)
		}
		if c.status.CompleteSave(token, err) {
			c.changed()
		}
		done <- err
	}()
	return done
}

func (c *Controller) changed() {
	if c.notify != nil {
		c.notify()
	}
}

func titleKey(id string) string {
	return "title:" + id
}
