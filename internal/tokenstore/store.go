// Package tokenstore is the single source of truth for the access and
// refresh credential strings. The file-backed store survives process
// restarts so a fresh start can silently restore a session.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store holds the credential pair. SetTokens replaces both values
// atomically from a reader's perspective; a concurrent Token/RefreshToken
// call never observes one updated and the other stale.
type Store interface {
	// Token returns the access token, or "" when absent.
	Token() string
	// RefreshToken returns the refresh token, or "" when absent.
	RefreshToken() string
	// SetTokens overwrites both credentials.
	SetTokens(access, refresh string) error
	// Clear removes both credentials. Idempotent.
	Clear() error
}

// tokenFile is the on-disk representation.
type tokenFile struct {
	Version      int       `json:"version"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// FileStore persists tokens to a JSON file under the user's config
// directory. Reads are served from memory; writes go through an atomic
// temp-file rename.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	access  string
	refresh string
}

// NewFileStore loads (or initializes) the token file at path.
// If path is empty, uses ~/.classtide/tokens.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".classtide", "tokens.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run, nothing stored yet.
	case err != nil:
		return nil, fmt.Errorf("failed to read token file: %w", err)
	default:
		var tf tokenFile
		if err := json.Unmarshal(data, &tf); err != nil {
			// A corrupt token file is equivalent to being logged out.
			log.Warn().Str("path", path).Err(err).Msg("token file unreadable, starting empty")
		} else {
			s.access = tf.AccessToken
			s.refresh = tf.RefreshToken
		}
	}

	log.Debug().Str("path", path).Msg("token store initialized")

	return s, nil
}

func (s *FileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *FileStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *FileStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	s.refresh = refresh
	return s.save()
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.access == "" && s.refresh == "" {
		return nil
	}
	s.access = ""
	s.refresh = ""
	return s.save()
}

// save writes the token file atomically. Caller holds the write lock.
func (s *FileStore) save() error {
	tf := tokenFile{
		Version:      1,
		AccessToken:  s.access,
		RefreshToken: s.refresh,
		UpdatedAt:    time.Now().UTC(),
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write tokens: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	return nil
}

// MemoryStore is an in-process Store for tests and embedded use.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	return nil
}
