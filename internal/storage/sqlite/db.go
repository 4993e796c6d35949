// ABOUTME: SQLite store connection and lifecycle management
// ABOUTME: Uses modernc.org/sqlite for a pure-Go local backend
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the local corpus backend
type Store struct {
	conn *sql.DB
	path string
}

// DefaultDataDir returns the data directory following the XDG spec
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/podcast-wisdom"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "podcast-wisdom")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "wisdom.db")
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newStore(conn, path)
}

// OpenInMemory creates an in-memory store (for testing)
func OpenInMemory() (*Store, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every pooled connection would otherwise get its own empty database
	conn.SetMaxOpenConns(1)

	return newStore(conn, ":memory:")
}

func newStore(conn *sql.DB, path string) (*Store, error) {
	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies the schema and stamps user_version. Databases written by a
// newer schema are refused.
func (s *Store) migrate() error {
	version, err := s.UserVersion()
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("%w: database has version %d, this build supports %d", ErrSchemaTooNew, version, SchemaVersion)
	}
	if _, err := s.conn.Exec(Schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := s.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// UserVersion returns the schema version stamped in the database file
func (s *Store) UserVersion() (int, error) {
	var version int
	if err := s.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Conn returns the underlying sql.DB connection for advanced usage
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}
