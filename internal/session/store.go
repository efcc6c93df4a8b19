// ABOUTME: Durable storage for the session token
// ABOUTME: Keeps a single opaque credential in the XDG config directory

package session

import (
	"os"
	"path/filepath"
	"strings"
)

// Store persists one opaque session token across process restarts.
// The token is present or absent; no shape validation happens here.
type Store struct {
	configDir string
}

// NewStore creates a token store rooted at the given config directory.
func NewStore(configDir string) *Store {
	return &Store{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mbank")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mbank")
}

// tokenFile returns the path of the token slot
func (s *Store) tokenFile() string {
	return filepath.Join(s.configDir, "token")
}

// Save persists the token durably. Last write wins. The write goes through
// a temp file and rename so a failure leaves the previous token readable.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.configDir, "token-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.tokenFile())
}

// Load reads the stored token. A missing file means logged out, not an error.
func (s *Store) Load() (string, bool, error) {
	data, err := os.ReadFile(s.tokenFile())
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Clear removes any stored token. Clearing an empty slot is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.tokenFile())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
