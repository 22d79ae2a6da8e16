// Package sqlite implements the repository interfaces on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver. A single *DB value
// backs every repository interface; tests open ":memory:".
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. Each relation gets its own repository
// view over the shared pool, retrieved via the accessor methods below.
type DB struct {
	conn *sql.DB
}

// Users returns the user repository view.
func (db *DB) Users() *UserRepo { return &UserRepo{conn: db.conn} }

// Executions returns the execution-log repository view.
func (db *DB) Executions() *ExecutionRepo { return &ExecutionRepo{conn: db.conn} }

// Snippets returns the snippet repository view.
func (db *DB) Snippets() *SnippetRepo { return &SnippetRepo{conn: db.conn} }

// Stars returns the star-relation repository view.
func (db *DB) Stars() *StarRepo { return &StarRepo{conn: db.conn} }

// Comments returns the snippet-comment repository view.
func (db *DB) Comments() *CommentRepo { return &CommentRepo{conn: db.conn} }

// New opens the database at dbPath (":memory:" for tests), enables WAL and
// foreign keys, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — the server
	// handles many requests against one file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the five relations and their indexes. CREATE ... IF NOT
// EXISTS keeps this idempotent, so it runs unconditionally at startup.
//
// Note the stars table: (user_id, snippet_id) is indexed but NOT unique — the
// model allows duplicate stars and the aggregator tolerates them. users.user_id
// IS unique: one row per external identity.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL UNIQUE,
			email          TEXT NOT NULL DEFAULT '',
			name           TEXT NOT NULL DEFAULT '',
			is_pro         INTEGER NOT NULL DEFAULT 0,
			pro_since      DATETIME,
			ls_customer_id TEXT NOT NULL DEFAULT '',
			ls_order_id    TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_user_id ON users(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// created_at is stored as unix milliseconds so keyset cursors round-trip
	// exactly (DATETIME text loses sub-second precision through a cursor).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS executions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			language   TEXT NOT NULL,
			code       TEXT NOT NULL DEFAULT '',
			output     TEXT,
			error      TEXT,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_executions_user_created
			ON executions(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating executions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			title      TEXT NOT NULL,
			code       TEXT NOT NULL DEFAULT '',
			language   TEXT NOT NULL,
			user_name  TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_user_id ON snippets(user_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_created_at ON snippets(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippet_comments (
			id         TEXT PRIMARY KEY,
			snippet_id TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			user_name  TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_snippet_id
			ON snippet_comments(snippet_id);
	`)
	if err != nil {
		return fmt.Errorf("creating snippet_comments table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS stars (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			snippet_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_stars_user_id ON stars(user_id);
		CREATE INDEX IF NOT EXISTS idx_stars_snippet_id ON stars(snippet_id);
		CREATE INDEX IF NOT EXISTS idx_stars_user_snippet
			ON stars(user_id, snippet_id);
	`)
	if err != nil {
		return fmt.Errorf("creating stars table: %w", err)
	}

	return nil
}
