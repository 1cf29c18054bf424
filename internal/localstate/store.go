// Package localstate is the client-side persisted state: the user
// profile, session token, upload tracking lists, per-field drafts and
// one-shot navigation records the browser build kept in local/session
// storage. It is a single-writer SQLite key/value store.
package localstate

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Well-known keys. Field drafts use fieldmeta.DraftKey.
const (
	KeyUser             = "user"
	KeySessionToken     = "next_app_session_token"
	KeyPendingDocuments = "pendingDocuments"
	KeyCompletedDocs    = "completedDocs"
	KeySelectedData     = "selectedData"
	KeyNavState         = "navState"
)

type Store struct {
	conn *sql.DB
}

// Open creates or opens the state database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer keeps concurrent CLI invocations from clobbering
	// each other mid-transaction.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Put stores v under key as JSON, replacing any previous value.
func (s *Store) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(
		`INSERT INTO state(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP`,
		key, string(b))
	return err
}

// Get loads the value for key into dst. The second return is false
// when the key is absent.
func (s *Store) Get(key string, dst any) (bool, error) {
	var raw string
	err := s.conn.QueryRow(`SELECT value FROM state WHERE key=?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Delete(key string) error {
	_, err := s.conn.Exec(`DELETE FROM state WHERE key=?`, key)
	return err
}

// Take is the one-shot read: it loads the value and deletes it in the
// same transaction. navState hand-offs between navigations use this.
func (s *Store) Take(key string, dst any) (bool, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRow(`SELECT value FROM state WHERE key=?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, tx.Commit()
	}
	if err != nil {
		return false, err
	}
	if _, err := tx.Exec(`DELETE FROM state WHERE key=?`, key); err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// AppendToList adds an entry to a JSON-array key (pendingDocuments,
// completedDocs).
func (s *Store) AppendToList(key string, entry any) error {
	var list []json.RawMessage
	if _, err := s.Get(key, &list); err != nil {
		return err
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	list = append(list, b)
	return s.Put(key, list)
}

// RemoveFromList drops every array entry for which match returns true.
func (s *Store) RemoveFromList(key string, match func(raw json.RawMessage) bool) error {
	var list []json.RawMessage
	ok, err := s.Get(key, &list)
	if err != nil || !ok {
		return err
	}
	kept := list[:0]
	for _, e := range list {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	return s.Put(key, kept)
}
