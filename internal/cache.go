package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheManager persists session listings and full sessions on disk so that
// `sessions list --cached` and `export` keep working without the backend.
// The index is YAML; each full session is one JSON file.
type CacheManager struct {
	cacheDir string
}

// SessionIndexEntry is one session's metadata in the cached index.
type SessionIndexEntry struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title,omitempty"`
	CreatedAt    string `yaml:"created_at,omitempty"`
	UpdatedAt    string `yaml:"updated_at,omitempty"`
	MessageCount int    `yaml:"message_count"`
}

// SessionIndex is the cached session listing plus bookkeeping.
type SessionIndex struct {
	Sessions  []SessionIndexEntry `yaml:"sessions"`
	BaseURL   string              `yaml:"base_url,omitempty"`
	UpdatedAt time.Time           `yaml:"updated_at"`
}

// NewCacheManager creates a cache manager rooted at cacheDir.
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{cacheDir: cacheDir}
}

func (cm *CacheManager) indexPath() string {
	return filepath.Join(cm.cacheDir, "sessions.yaml")
}

func (cm *CacheManager) sessionPath(id string) string {
	return filepath.Join(cm.cacheDir, "sessions", fmt.Sprintf("%s.json", id))
}

// SaveIndex replaces the cached session listing.
func (cm *CacheManager) SaveIndex(sessions []Session, baseURL string) error {
	if err := os.MkdirAll(cm.cacheDir, 0755); err != nil {
		return &StorageError{Path: cm.cacheDir, Op: "write", Err: err}
	}

	index := SessionIndex{
		BaseURL:   baseURL,
		UpdatedAt: time.Now().UTC(),
	}
	for _, session := range sessions {
		index.Sessions = append(index.Sessions, SessionIndexEntry{
			ID:           session.ID,
			Title:        session.Title,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
			MessageCount: session.MessageCount,
		})
	}

	data, err := yaml.Marshal(&index)
	if err != nil {
		return &StorageError{Path: cm.indexPath(), Op: "write", Err: err}
	}
	if err := os.WriteFile(cm.indexPath(), data, 0644); err != nil {
		return &StorageError{Path: cm.indexPath(), Op: "write", Err: err}
	}
	return nil
}

// LoadIndex reads the cached session listing. Returns nil when no cache
// exists yet.
func (cm *CacheManager) LoadIndex() (*SessionIndex, error) {
	data, err := os.ReadFile(cm.indexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Path: cm.indexPath(), Op: "read", Err: err}
	}

	var index SessionIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &StorageError{Path: cm.indexPath(), Op: "read", Err: err}
	}
	return &index, nil
}

// SaveSession caches one fully loaded session.
func (cm *CacheManager) SaveSession(session *Session) error {
	dir := filepath.Dir(cm.sessionPath(session.ID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageError{Path: dir, Op: "write", Err: err}
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return &StorageError{Path: cm.sessionPath(session.ID), Op: "write", Err: err}
	}
	if err := os.WriteFile(cm.sessionPath(session.ID), data, 0644); err != nil {
		return &StorageError{Path: cm.sessionPath(session.ID), Op: "write", Err: err}
	}
	return nil
}

// LoadSession reads one cached session. Returns nil when the session is not
// cached.
func (cm *CacheManager) LoadSession(id string) (*Session, error) {
	data, err := os.ReadFile(cm.sessionPath(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Path: cm.sessionPath(id), Op: "read", Err: err}
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, &StorageError{Path: cm.sessionPath(id), Op: "read", Err: err}
	}
	return &session, nil
}

// RemoveSession drops one session from the cache. Removing an uncached
// session is not an error.
func (cm *CacheManager) RemoveSession(id string) error {
	err := os.Remove(cm.sessionPath(id))
	if err != nil && !os.IsNotExist(err) {
		return &StorageError{Path: cm.sessionPath(id), Op: "delete", Err: err}
	}
	return nil
}

// Clear removes the entire cache directory.
func (cm *CacheManager) Clear() error {
	if err := os.RemoveAll(cm.cacheDir); err != nil {
		return &StorageError{Path: cm.cacheDir, Op: "delete", Err: err}
	}
	return nil
}
