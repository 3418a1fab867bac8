package credstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ljosc/discuss/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	kind  TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLite keeps credentials in a file inside the profile directory so they
// survive restarts until ClearAll.
type SQLite struct {
	db *sql.DB
}

// FileName is the storage file inside a profile directory.
const FileName = "credentials.db"

func OpenProfile(profileDir string) (*SQLite, error) {
	return Open(filepath.Join(profileDir, FileName))
}

func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	// single writer; the poll and login/logout never need parallel connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Set(kind domain.CredentialKind, value string) error {
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM credentials WHERE kind = ?`, string(kind))
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO credentials (kind, value) VALUES (?, ?)
		ON CONFLICT(kind) DO UPDATE SET value = excluded.value`,
		string(kind), value)
	if err != nil {
		return fmt.Errorf("set %s: %w", kind, err)
	}
	return nil
}

func (s *SQLite) Get(kind domain.CredentialKind) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE kind = ?`, string(kind)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", kind, err)
	}
	return value, value != "", nil
}

func (s *SQLite) ClearAll() error {
	if _, err := s.db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
