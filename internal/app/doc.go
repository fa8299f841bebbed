// Package app is the composition root for Quill.
//
// # Overview
//
// This package wires configuration, logging, storage, the draft controller
// and the UI together. Both the TUI and the headless CLI commands open a
// Session through it, so they share one startup sequence.
//
// # Startup
//
//  1. Load config from ~/.config/quill/config.toml (or --config)
//  2. Open the log file, or log to the provided writer
//  3. Open the storage backend (memory when Ephemeral is set)
//  4. Build the draft controller and run its startup: load, hydrate,
//     ensure one note, save the welcome note when it was created
//  5. For Run, start the TUI and block until the user quits
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config + QUILL_* env
//	       ├─────> logging.OpenFile()   slog text handler
//	       ├─────> storage.Open()       file | bolt | memory
//	       ├─────> draft.New().Start()  Hydrate + welcome note
//	       └─────> ui.Run()             Start TUI (blocks)
//
// # Error Handling
//
// Fatal errors (returned from Open and Run):
//   - Configuration file unreadable or invalid
//   - Log file or storage backend cannot be opened
//
// Recoverable errors (logged and shown in the status line):
//   - Load failures, which fall back to an empty collection
//   - Save failures, retried on the next change
//   - Clipboard failures
//
// Session.Close waits for in-flight saves before releasing storage, so
// quitting never cuts a write short.
package app
