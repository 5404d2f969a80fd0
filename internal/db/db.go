package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "fulfillment.db"

// DB wraps a sql.DB with the fulfillment schema applied.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenInDir opens the database file inside dir.
func OpenInDir(dir string) (*DB, error) {
	return Open(filepath.Join(dir, FileName))
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the database location.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    protocol_version INTEGER NOT NULL DEFAULT 0,
    session TEXT NOT NULL DEFAULT '',
    action TEXT NOT NULL DEFAULT '',
    intent TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    query TEXT NOT NULL DEFAULT '',
    status INTEGER NOT NULL DEFAULT 200,
    outcome TEXT NOT NULL CHECK(outcome IN ('answered','no_handler','failed','rejected')),
    error TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    request TEXT NOT NULL DEFAULT '',
    response TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transcripts_timestamp ON transcripts(timestamp);
CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts(session);
CREATE INDEX IF NOT EXISTS idx_transcripts_action ON transcripts(action);
CREATE INDEX IF NOT EXISTS idx_transcripts_outcome ON transcripts(outcome);
`
