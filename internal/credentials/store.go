// Package credentials is the single accessor for locally persisted state: the paired
// server credentials, the stable client identifier, and the dashboard theme.
//
// Nothing else in the module reads or writes these keys directly. Stored values that are
// missing, partial, or unparsable are reported as absent rather than as errors, so callers
// fall back to the unauthenticated state.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
)

// Well-known storage keys.
const (
	KeyCredentials = "plexData"
	KeyClientID    = "plexClientId"
	KeyTheme       = "theme"
)

// Settings is the key-value primitive the store is built on.
type Settings interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store loads, saves, and clears persisted state.
type Store struct {
	settings Settings
	logger   *log.Logger
	newID    func() string
}

// NewStore creates a [Store] over settings. A nil logger uses [shared.NewLogger].
func NewStore(settings Settings, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{settings: settings, logger: logger, newID: shared.GenerateID}
}

// Load returns the stored credentials and whether they are usable.
func (s *Store) Load() (models.Credentials, bool) {
	var creds models.Credentials
	if !s.read(KeyCredentials, &creds) {
		return models.Credentials{}, false
	}
	if !creds.Complete() {
		s.logger.Debug("stored credentials are partial, treating as absent")
		return models.Credentials{}, false
	}
	return creds, true
}

// Save persists creds. Partial credentials are rejected.
func (s *Store) Save(creds models.Credentials) error {
	if !creds.Complete() {
		return fmt.Errorf("%w: client identifier, token, and server address are required", shared.ErrInvalidCredentials)
	}
	return s.write(KeyCredentials, creds)
}

// Clear removes the stored credentials (logout). The client identifier is kept.
func (s *Store) Clear() error {
	if err := s.settings.Delete(KeyCredentials); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// ClientID returns the stable client identifier, generating and persisting one on first use.
func (s *Store) ClientID() (string, error) {
	var id string
	if s.read(KeyClientID, &id) && id != "" {
		return id, nil
	}

	id = s.newID()
	if err := s.write(KeyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}

// ResetClientID issues a new client identifier and drops any stored credentials.
func (s *Store) ResetClientID() (string, error) {
	if err := s.Clear(); err != nil {
		return "", err
	}

	id := s.newID()
	if err := s.write(KeyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}

// Theme returns the stored theme, defaulting to light.
func (s *Store) Theme() models.Theme {
	var name string
	if !s.read(KeyTheme, &name) {
		return models.ThemeLight
	}
	return models.ParseTheme(name)
}

// SetTheme persists theme.
func (s *Store) SetTheme(theme models.Theme) error {
	return s.write(KeyTheme, string(theme))
}

// ToggleTheme flips and persists the theme, returning the new value.
func (s *Store) ToggleTheme() (models.Theme, error) {
	next := s.Theme().Toggle()
	if err := s.SetTheme(next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}

// read decodes the JSON value under key into v, reporting false when it is absent or corrupt.
func (s *Store) read(key string, v any) bool {
	raw, err := s.settings.Get(key)
	if err != nil {
		if !errors.Is(err, shared.ErrSettingNotFound) {
			s.logger.Warn("failed to read setting", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("ignoring unparsable setting", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.settings.Set(key, string(data)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}
