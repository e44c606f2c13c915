package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the credential in a single JSON file, durable
// across runs within the same user profile
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
// An empty path uses ~/.claimctl/credentials.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		path = filepath.Join(home, ".claimctl", "credentials.json")
	}
	return &FileStore{path: path}, nil
}

type credentialFile struct {
	Token string `json:"token"`
}

// Get reads the token from disk. Any read or decode failure is treated
// as an absent credential.
func (s *FileStore) Get() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	var entry credentialFile
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}

	if entry.Token == "" {
		return "", false
	}
	return entry.Token, true
}

// Set writes the token to disk, creating the parent directory if needed
func (s *FileStore) Set(token string) error {
	data, err := json.Marshal(credentialFile{Token: token})
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	// 0600: the token authorizes the user's account
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}

	return nil
}

// Clear removes the credential file
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
