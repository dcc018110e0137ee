// Package nvs implements paramstore.Nvs (and, structurally, hal.Nvs)
// against a SQLite file, giving host-run responders the same
// persisted-across-restarts NON_VOLATILE parameters a real fixture's
// flash-backed NVS partition would. Grounded on the teacher's use of a
// small embedded store for configuration in host/mcu/mcu.go, but with
// modernc.org/sqlite substituted for a real key/value table since this
// driver has no equivalent to gopper's own persistence layer.
package nvs

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed key/value table. The zero value is not
// usable; construct with Open.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures the parameters table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("nvs: open %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS parameters (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("nvs: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Load implements paramstore.Nvs / hal.Nvs.
func (s *Store) Load(key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM parameters WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Save implements paramstore.Nvs / hal.Nvs.
func (s *Store) Save(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO parameters (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("nvs: save %s: %w", key, err)
	}
	return nil
}

// Delete removes key, used by tests to reset a parameter back to its
// registration default across process restarts.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM parameters WHERE key = ?`, key)
	return err
}
