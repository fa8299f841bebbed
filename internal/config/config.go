package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved Quill configuration.
type Config struct {
	Storage StorageConfig
	Sync    SyncConfig
	Welcome WelcomeConfig
	Log     LogConfig
}

// StorageConfig selects where the snapshot lives.
type StorageConfig struct {
	Backend string
	Dir     string
	Key     string
}

// SyncConfig controls how drafts are committed and who is stamped on writes.
type SyncConfig struct {
	Policy   string
	Debounce time.Duration
	ClientID string
}

// WelcomeConfig is the note created when the collection is empty.
type WelcomeConfig struct {
	Title   string
	Content string
}

// LogConfig controls the log file.
type LogConfig struct {
	Path  string
	Level string
}

const (
	defaultConfigPath = "~/.config/quill/config.toml"
	defaultDataDir    = "~/.local/share/quill"
	defaultLogPath    = "~/.local/state/quill/quill.log"
	defaultBackend    = "file"
	defaultKey        = "quill.notes.v1"
	defaultPolicy     = "manual"
	defaultDebounce   = 400 * time.Millisecond
	defaultLogLevel   = "info"

	defaultWelcomeTitle   = "Welcome"
	defaultWelcomeContent = "This is your first note. Start typing!"
)

// Environment variables applied on top of the file.
const (
	EnvStorageBackend = "QUILL_STORAGE_BACKEND"
	EnvStoragePath    = "QUILL_STORAGE_PATH"
	EnvStorageKey     = "QUILL_STORAGE_KEY"
	EnvSyncPolicy     = "QUILL_SYNC_POLICY"
	EnvSyncDebounce   = "QUILL_SYNC_DEBOUNCE"
	EnvClientID       = "QUILL_CLIENT_ID"
	EnvLogLevel       = "QUILL_LOG_LEVEL"
)

type rawConfig struct {
	Storage struct {
		Backend string `toml:"backend"`
		Dir     string `toml:"dir"`
		Key     string `toml:"key"`
	} `toml:"storage"`
	Sync struct {
		Policy   string `toml:"policy"`
		Debounce string `toml:"debounce"`
		ClientID string `toml:"client_id"`
	} `toml:"sync"`
	Welcome struct {
		Title   string `toml:"title"`
		Content string `toml:"content"`
	} `toml:"welcome"`
	Log struct {
		Path  string `toml:"path"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load reads the config at path (or the default location), applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&raw)
	cfg, err := fromRaw(raw)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	// An empty raw config has no debounce to parse, so fromRaw cannot fail.
	cfg, _ := fromRaw(rawConfig{})
	return cfg
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Sync.Validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// Validate checks the storage section.
func (c StorageConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In("file", "bolt", "memory")),
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Key, validation.Required),
	)
}

// Validate checks the sync section.
func (c SyncConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Policy, validation.Required, validation.In("manual", "debounced")),
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond), validation.Max(time.Minute)),
		validation.Field(&c.ClientID, validation.Required),
	)
}

// Validate checks the log section.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

func fromRaw(raw rawConfig) (Config, error) {
	var cfg Config

	cfg.Storage.Backend = strings.ToLower(orDefault(raw.Storage.Backend, defaultBackend))
	cfg.Storage.Dir = mustExpand(orDefault(raw.Storage.Dir, defaultDataDir))
	cfg.Storage.Key = orDefault(raw.Storage.Key, defaultKey)

	cfg.Sync.Policy = strings.ToLower(orDefault(raw.Sync.Policy, defaultPolicy))
	cfg.Sync.Debounce = defaultDebounce
	if value := strings.TrimSpace(raw.Sync.Debounce); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse sync.debounce: %w", err)
		}
		cfg.Sync.Debounce = d
	}
	cfg.Sync.ClientID = strings.TrimSpace(raw.Sync.ClientID)
	if cfg.Sync.ClientID == "" {
		cfg.Sync.ClientID = defaultClientID()
	}

	// Welcome text is kept verbatim apart from the fallback.
	cfg.Welcome.Title = orDefault(raw.Welcome.Title, defaultWelcomeTitle)
	cfg.Welcome.Content = raw.Welcome.Content
	if cfg.Welcome.Content == "" {
		cfg.Welcome.Content = defaultWelcomeContent
	}

	cfg.Log.Path = mustExpand(orDefault(raw.Log.Path, defaultLogPath))
	cfg.Log.Level = strings.ToLower(orDefault(raw.Log.Level, defaultLogLevel))
	return cfg, nil
}

func applyEnv(raw *rawConfig) {
	override := func(dst *string, key string) {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			*dst = value
		}
	}
	override(&raw.Storage.Backend, EnvStorageBackend)
	override(&raw.Storage.Dir, EnvStoragePath)
	override(&raw.Storage.Key, EnvStorageKey)
	override(&raw.Sync.Policy, EnvSyncPolicy)
	override(&raw.Sync.Debounce, EnvSyncDebounce)
	override(&raw.Sync.ClientID, EnvClientID)
	override(&raw.Log.Level, EnvLogLevel)
}

func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		host = "quill"
	}
	return host + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
