package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// View-mode preference values for list pages.
const (
	ViewModeGrid  = "grid"
	ViewModeTable = "table"
)

// Store is the only state the client persists between runs: the token
// pair and the grid/table view preference, kept in a JSON file under the
// user config dir. Everything else is owned by the backend.
type Store struct {
	mu   sync.Mutex
	path string
	data storeData
}

type storeData struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ViewMode     string `json:"view_mode,omitempty"`
}

// Open loads the store at path, creating an empty one when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential store: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parsing credential store: %w", err)
	}
	return s, nil
}

// DefaultPath returns the conventional store location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gtflow", "credentials.json"), nil
}

func (s *Store) Access() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.AccessToken
}

func (s *Store) Refresh() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.RefreshToken
}

// Update stores a new token pair. An empty refresh keeps the current one
// (the refresh endpoint only rotates the access token).
func (s *Store) Update(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.AccessToken = access
	if refresh != "" {
		s.data.RefreshToken = refresh
	}
	return s.save()
}

// Clear drops the tokens on logout but keeps the view preference.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.AccessToken = ""
	s.data.RefreshToken = ""
	return s.save()
}

func (s *Store) ViewMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.ViewMode == "" {
		return ViewModeGrid
	}
	return s.data.ViewMode
}

func (s *Store) SetViewMode(mode string) error {
	if mode != ViewModeGrid && mode != ViewModeTable {
		return fmt.Errorf("unknown view mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ViewMode = mode
	return s.save()
}

// save must be called with s.mu held.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing credential store: %w", err)
	}
	return nil
}
