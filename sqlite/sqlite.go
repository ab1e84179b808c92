// Package sqlite stores doxindex projects and their search tables in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// schemaVersion is stored in PRAGMA user_version once the schema is created.
const schemaVersion = 1

// DB is a catalog database.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns a DB for the file at path, or an in-memory database
// for ":memory:". Nothing is opened until Open.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects to the database, creating the file and its parent
// directory when missing, and brings the schema up to date.
func (db *DB) Open() error {
	if db.path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serializes writers, and an in-memory database
	// exists only on the connection that created it.
	conn.SetMaxOpenConns(1)

	if err := configure(conn, db.path != memoryPath); err != nil {
		conn.Close()
		return err
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	db.db = conn
	return nil
}

// configure applies connection pragmas. WAL is only available on files.
func configure(conn *sql.DB, file bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if file {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}

	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("failed to connect to database: %s: %w", p, err)
		}
	}
	return nil
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the connection. It is safe to call on a DB that was never opened.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a read-write transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// Entries and occurrences are keyed by their table position so a stored
// table reads back in table order.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	source_url TEXT NOT NULL,
	section TEXT NOT NULL DEFAULT 'all',
	content_hash TEXT NOT NULL DEFAULT '',
	entry_count INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	key TEXT NOT NULL,
	label TEXT NOT NULL,
	PRIMARY KEY (project_id, position)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_project_key ON entries(project_id, key);

CREATE TABLE IF NOT EXISTS occurrences (
	project_id TEXT NOT NULL,
	entry_position INTEGER NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL,
	anchor TEXT NOT NULL DEFAULT '',
	context TEXT NOT NULL DEFAULT '',
	parent INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (project_id, entry_position, position),
	FOREIGN KEY (project_id, entry_position) REFERENCES entries(project_id, position) ON DELETE CASCADE
);
`
