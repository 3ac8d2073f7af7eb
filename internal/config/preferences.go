package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ohboyftw/ClaudeSynth/internal/logging"
)

// Backend identifiers persisted in preferences and accepted by --backend.
const (
	BackendHosted = "hosted"
	BackendLocal  = "local"
)

// Built-in fallback defaults. Explicit flags win over saved preferences,
// which win over these.
const (
	DefaultMaxTokens  = 4000
	DefaultOutputPath = "claude.md"
	DefaultBackend    = BackendLocal
)

// Preferences is the persisted user-defaults document. Unknown JSON fields
// are ignored on load; missing fields fall back to built-in defaults.
type Preferences struct {
	DefaultModel   string            `json:"default_model"`
	DefaultBackend string            `json:"default_backend"`
	DefaultOutput  string            `json:"default_output"`
	MaxTokens      int               `json:"max_tokens"`
	OllamaHost     string            `json:"ollama_host,omitempty"`
	Templates      map[string]string `json:"templates"`
}

// DefaultPreferences returns the built-in defaults. DefaultModel is left
// empty for the local backend so the best available model is auto-selected.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultModel:   "",
		DefaultBackend: DefaultBackend,
		DefaultOutput:  DefaultOutputPath,
		MaxTokens:      DefaultMaxTokens,
		Templates: map[string]string{
			"general": "General project. Follow existing conventions and keep changes minimal.",
			"api":     "HTTP API service. Validate inputs at the boundary and return typed errors.",
			"cli":     "Command-line tool. Keep commands small, print actionable errors, exit non-zero on failure.",
			"library": "Reusable library. Accept interfaces, return structs, document exported identifiers.",
		},
	}
}

// Template returns the named guideline preset, falling back to "general".
func (p Preferences) Template(name string) string {
	if text, ok := p.Templates[name]; ok {
		return text
	}
	return p.Templates["general"]
}

// ConfigError indicates the preferences file exists but cannot be used.
// User data is never silently discarded: the caller decides how to surface it.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("preferences file %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// Store loads and saves the preferences document at a fixed per-user path
// (~/.claudesynth/config.json by default).
type Store struct {
	path   string
	logger logging.Logger
}

type storeOptions struct {
	path    string
	homeDir func() (string, error)
	logger  logging.Logger
}

// StoreOption customizes a Store, mostly for tests.
type StoreOption func(*storeOptions)

// WithPath pins the preferences file to an explicit location.
func WithPath(path string) StoreOption {
	return func(o *storeOptions) { o.path = path }
}

// WithHomeDir overrides home-directory resolution.
func WithHomeDir(fn func() (string, error)) StoreOption {
	return func(o *storeOptions) { o.homeDir = fn }
}

// WithLogger overrides the store's logger.
func WithLogger(logger logging.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = logger }
}

// NewStore resolves the preferences path and returns a Store. The file is
// not touched until Load or Save is called.
func NewStore(opts ...StoreOption) (*Store, error) {
	options := storeOptions{homeDir: os.UserHomeDir}
	for _, opt := range opts {
		opt(&options)
	}

	path := options.path
	if path == "" {
		home, err := options.homeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".claudesynth", "config.json")
	}

	logger := options.logger
	if logger == nil {
		logger = logging.NewComponentLogger("config")
	}

	return &Store{path: path, logger: logger}, nil
}

// Path returns the resolved preferences file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preferences file. A missing file is created with built-in
// defaults and those defaults are returned; a malformed file fails with a
// ConfigError.
func (s *Store) Load() (Preferences, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		prefs := DefaultPreferences()
		if err := s.Save(prefs); err != nil {
			return Preferences{}, err
		}
		s.logger.Info("Created preferences file with defaults: %s", s.path)
		return prefs, nil
	}
	if err != nil {
		return Preferences{}, &ConfigError{Path: s.path, Err: err}
	}

	// Unmarshal over the defaults so fields absent from the file keep their
	// built-in values while unknown fields are ignored.
	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, &ConfigError{Path: s.path, Err: fmt.Errorf("parse: %w", err)}
	}
	if prefs.Templates == nil {
		prefs.Templates = DefaultPreferences().Templates
	}

	return prefs, nil
}

// Save atomically overwrites the preferences file.
func (s *Store) Save(prefs Preferences) error {
	encoded, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return &ConfigError{Path: s.path, Err: fmt.Errorf("encode: %w", err)}
	}
	encoded = append(encoded, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &ConfigError{Path: s.path, Err: fmt.Errorf("ensure directory: %w", err)}
	}
	if err := AtomicWrite(s.path, encoded, 0o600); err != nil {
		return &ConfigError{Path: s.path, Err: err}
	}

	s.logger.Debug("Saved preferences: %s", s.path)
	return nil
}

// AtomicWrite writes data to path via a temp file plus rename so a crash
// mid-write cannot leave a partially written file behind.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
