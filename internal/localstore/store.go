// Package localstore provides origin-scoped string storage that survives
// between runs, the terminal counterpart of a browser's localStorage.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Store holds string entries by key.
type Store interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// SQLStore keeps entries in the local_storage table, scoped to one origin
// (the API base URL) so sessions for different servers don't collide.
type SQLStore struct {
	db     *sql.DB
	origin string
}

// NewSQLStore creates a store for origin backed by db.
func NewSQLStore(db *sql.DB, origin string) *SQLStore {
	return &SQLStore{db: db, origin: origin}
}

// GetItem returns the value for key and whether it exists.
func (s *SQLStore) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM local_storage WHERE origin = ? AND key = ?`,
		s.origin, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *SQLStore) SetItem(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO local_storage (origin, key, value, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(origin, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.origin, key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *SQLStore) RemoveItem(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE origin = ? AND key = ?`, s.origin, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem implements Store.
func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Store.
func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// RemoveItem implements Store.
func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
