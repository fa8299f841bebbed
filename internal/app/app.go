package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/quill/internal/clipboard"
	"github.com/five82/quill/internal/config"
	"github.com/five82/quill/internal/draft"
	"github.com/five82/quill/internal/logging"
	"github.com/five82/quill/internal/notes"
	"github.com/five82/quill/internal/state"
	"github.com/five82/quill/internal/storage"
	"github.com/five82/quill/internal/ui"
)

// Options configure a Quill session.
type Options struct {
	ConfigPath string
	Ephemeral  bool // keep notes in memory only
	Verbose    bool
	Quiet      bool // log warnings and errors only; Verbose wins

	// LogWriter receives logs instead of the configured log file. Headless
	// commands point it at stderr.
	LogWriter io.Writer

	// Policy overrides the configured sync policy when set.
	Policy *draft.Policy

	// Clipboard overrides the system clipboard.
	Clipboard clipboard.Writer
}

// Session is an opened store plus the controller driving it.
type Session struct {
	Config     config.Config
	Controller *draft.Controller
	Status     *state.Store
	Logger     *slog.Logger

	store  storage.Port
	logOut io.Closer
}

// Open loads configuration, opens storage and starts a controller. notify
// is forwarded to the controller and may be nil.
func Open(ctx context.Context, opts Options, notify func()) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if opts.Quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	var (
		logger *slog.Logger
		logOut io.Closer
	)
	if opts.LogWriter != nil {
		logger = logging.New(opts.LogWriter, level)
	} else {
		logger, logOut, err = logging.OpenFile(cfg.Log.Path, level)
		if err != nil {
			return nil, err
		}
	}

	backend := cfg.Storage.Backend
	if opts.Ephemeral {
		backend = storage.BackendMemory
	}
	store, err := storage.Open(storage.Options{
		Backend: backend,
		Dir:     cfg.Storage.Dir,
		Key:     cfg.Storage.Key,
		Logger:  logger,
	})
	if err != nil {
		closeQuietly(logOut)
		return nil, fmt.Errorf("open storage: %w", err)
	}

	policy, err := draft.ParsePolicy(cfg.Sync.Policy)
	if err != nil {
		closeQuietly(store, logOut)
		return nil, err
	}
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	status := &state.Store{}
	controller := draft.New(draft.Options{
		Engine:         notes.NewEngine(nil, nil),
		Store:          store,
		Clipboard:      opts.Clipboard,
		Status:         status,
		Logger:         logger,
		Policy:         policy,
		Debounce:       cfg.Sync.Debounce,
		ClientID:       cfg.Sync.ClientID,
		WelcomeTitle:   cfg.Welcome.Title,
		WelcomeContent: cfg.Welcome.Content,
		Notify:         notify,
	})

	logger.Info("quill starting",
		"backend", backend,
		"key", cfg.Storage.Key,
		"client_id", cfg.Sync.ClientID,
	)
	if err := controller.Start(ctx); err != nil {
		// The welcome note is still in memory; the next flush retries.
		logger.Warn("initial save failed", "error", err)
	}

	return &Session{
		Config:     cfg,
		Controller: controller,
		Status:     status,
		Logger:     logger,
		store:      store,
		logOut:     logOut,
	}, nil
}

// SaveErr returns the error of the most recent save when it failed. Call it
// after Close to learn whether everything reached storage.
func (s *Session) SaveErr() error {
	snap := s.Status.Snapshot()
	if snap.ConsecutiveFailures > 0 {
		return fmt.Errorf("save notes: %w", snap.LastError)
	}
	return nil
}

// Close drains pending saves and releases storage and the log file.
func (s *Session) Close() error {
	s.Controller.Close()
	s.Logger.Info("quill stopped")
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	if s.logOut != nil {
		if err := s.logOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run boots the Quill TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	notifier := ui.NewNotifier()
	session, err := Open(ctx, opts, notifier.Notify)
	if err != nil {
		return err
	}

	runErr := ui.Run(ui.Options{
		Context:    ctx,
		Controller: session.Controller,
		Notifier:   notifier,
		Logger:     session.Logger,
	})
	return errors.Join(runErr, session.Close())
}

func closeQuietly(closers ...io.Closer) {
	for _, c := range closers {
		if c != nil {
			_ = c.Close()
		}
	}
}
