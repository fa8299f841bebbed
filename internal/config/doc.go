// Package config loads Quill's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/quill/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. Apply QUILL_* environment overrides
//  5. Validate the result
//
// # TOML Format
//
//	[storage]
//	backend = "file"              # file | bolt | memory
//	dir     = "~/.local/share/quill"
//	key     = "quill.notes.v1"
//
//	[sync]
//	policy    = "manual"          # manual | debounced
//	debounce  = "400ms"
//	client_id = ""                # default: <hostname>-<8 hex>
//
//	[welcome]
//	title   = "Welcome"
//	content = "This is your first note. Start typing!"
//
//	[log]
//	path  = "~/.local/state/quill/quill.log"
//	level = "info"
//
// Every field is optional. Tilde expansion is performed for the storage
// directory and the log path.
//
// # Environment
//
//   - QUILL_STORAGE_BACKEND, QUILL_STORAGE_PATH, QUILL_STORAGE_KEY
//   - QUILL_SYNC_POLICY, QUILL_SYNC_DEBOUNCE, QUILL_CLIENT_ID
//   - QUILL_LOG_LEVEL
//
// Blank environment values are ignored.
//
// # Error Handling
//
// Load returns errors for unreadable or unparsable files, an invalid
// debounce duration and values that fail validation. Missing config files
// are NOT an error.
package config
