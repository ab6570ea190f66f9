package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSessionPath is where the access token is kept between commands.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".draftdeck-session"
	}
	return filepath.Join(dir, "draftdeck", "session")
}

// LoadToken reads the saved token; a missing file means logged out.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken writes the token readable by the current user only.
func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// ClearToken removes the session file.
func ClearToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
