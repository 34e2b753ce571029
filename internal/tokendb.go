package internal

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// KVStore is a SQLite-backed scoped key-value store. It persists the
// credential pair and the anonymous client id across CLI invocations, the
// same role browser localStorage plays for the web client.
type KVStore struct {
	db   *sql.DB
	path string
}

// OpenKV opens (creating if needed) the key-value database at path.
func OpenKV(path string) (*KVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS clientKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	return &KVStore{db: db, path: path}, nil
}

// Close closes the underlying database.
func (kv *KVStore) Close() error {
	return kv.db.Close()
}

// Get returns the value for key, or "" when absent.
func (kv *KVStore) Get(key string) (string, error) {
	var value string
	err := kv.db.QueryRow("SELECT value FROM clientKV WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &StorageError{Path: kv.path, Op: "read", Err: err}
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (kv *KVStore) Set(key, value string) error {
	_, err := kv.db.Exec(
		"INSERT INTO clientKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return &StorageError{Path: kv.path, Op: "write", Err: err}
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (kv *KVStore) Delete(key string) error {
	if _, err := kv.db.Exec("DELETE FROM clientKV WHERE key = ?", key); err != nil {
		return &StorageError{Path: kv.path, Op: "delete", Err: err}
	}
	return nil
}

// ClientID returns the stable anonymous client id, generating and persisting
// one on first use.
func (kv *KVStore) ClientID() (string, error) {
	id, err := kv.Get(keyClientID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := kv.Set(keyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}

// KVTokenStore implements TokenStore on top of a KVStore. Read errors are
// logged and treated as "no credential"; the caller then behaves as an
// anonymous client rather than failing outright.
type KVTokenStore struct {
	kv *KVStore
}

// NewKVTokenStore wraps a KVStore as a TokenStore.
func NewKVTokenStore(kv *KVStore) *KVTokenStore {
	return &KVTokenStore{kv: kv}
}

func (s *KVTokenStore) Access() string {
	token, err := s.kv.Get(keyAccessToken)
	if err != nil {
		LogWarn("failed to read access token: %v", err)
		return ""
	}
	return token
}

func (s *KVTokenStore) Refresh() string {
	token, err := s.kv.Get(keyRefreshToken)
	if err != nil {
		LogWarn("failed to read refresh token: %v", err)
		return ""
	}
	return token
}

func (s *KVTokenStore) SetAccess(token string) error {
	return s.kv.Set(keyAccessToken, token)
}

func (s *KVTokenStore) SetPair(access, refresh string) error {
	if err := s.kv.Set(keyAccessToken, access); err != nil {
		return err
	}
	return s.kv.Set(keyRefreshToken, refresh)
}

func (s *KVTokenStore) Clear() error {
	if err := s.kv.Delete(keyAccessToken); err != nil {
		return err
	}
	return s.kv.Delete(keyRefreshToken)
}
