package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// KVStore is the persistence contract for the overlay cache: a namespaced
// key/value string store. Implementations may fail; the overlay layer
// swallows every error and degrades to an empty cache or a no-op write.
type KVStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

const overlayKVSchema = `
CREATE TABLE IF NOT EXISTS overlay_kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteKV is a KVStore backed by a local SQLite database file
type SQLiteKV struct {
	db *sql.DB
}

// OpenSQLiteKV opens (creating if needed) the overlay database under dir
func OpenSQLiteKV(dir string) (*SQLiteKV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	path := filepath.Join(dir, "overlay.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open overlay database: %w", err)
	}

	if _, err := db.Exec(overlayKVSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create overlay table: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

// Get returns the value stored under key; empty string when absent
func (s *SQLiteKV) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM overlay_kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &StorageError{Key: key, Op: "get", Err: err}
	}
	return value, nil
}

// Set stores value under key, replacing any prior value
func (s *SQLiteKV) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO overlay_kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete removes key
func (s *SQLiteKV) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM overlay_kv WHERE key = ?", key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// MemoryKV is an in-memory KVStore, used in tests and as a fallback when
// the on-disk store cannot be opened.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

// Get returns the value stored under key; empty string when absent
func (s *MemoryKV) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

// Set stores value under key
func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// Delete removes key
func (s *MemoryKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Close is a no-op
func (s *MemoryKV) Close() error {
	return nil
}
