package session

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// TokenStorage persists the bearer token across process restarts, the
// client-side equivalent of the browser's localStorage slot.
type TokenStorage interface {
	// Load returns the stored token, or "" when none is stored.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStorage stores the token in a single file, created with 0600.
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultTokenPath returns the conventional token location under the user
// config directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve user config dir")
	}
	return filepath.Join(dir, "tavola", "token"), nil
}

func (s *FileStorage) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "read token file")
	}
	return string(data), nil
}

func (s *FileStorage) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create token dir")
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return errors.Wrap(err, "write token file")
	}
	return nil
}

func (s *FileStorage) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove token file")
	}
	return nil
}

// MemoryStorage is an in-memory TokenStorage for tests.
type MemoryStorage struct {
	token string
}

func (s *MemoryStorage) Load() (string, error)   { return s.token, nil }
func (s *MemoryStorage) Save(token string) error { s.token = token; return nil }
func (s *MemoryStorage) Clear() error            { s.token = ""; return nil }
