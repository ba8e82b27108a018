// Package db provides the SQLite connection and schema shared by the state
// store and the change ledger.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// Open opens the database and initializes the schema.
// The parent directory is created if needed.
func Open(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates all required tables
func initSchema(db *sql.DB) error {
	// Last known brightness per device, used by save/restore
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS brightness_state (
			class TEXT NOT NULL,
			id TEXT NOT NULL,
			value INTEGER NOT NULL,
			max INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (class, id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create brightness_state table: %w", err)
	}

	// Change ledger - append-only history of brightness changes
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS change_ledger (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			change_id TEXT NOT NULL UNIQUE,
			timestamp INTEGER NOT NULL,
			class TEXT NOT NULL,
			device_id TEXT NOT NULL,
			source TEXT NOT NULL,
			update_expr TEXT NOT NULL,
			previous INTEGER NOT NULL,
			target INTEGER NOT NULL,
			minimum INTEGER NOT NULL,
			value INTEGER NOT NULL,
			max INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_change_ledger_ts ON change_ledger(timestamp);
		CREATE INDEX IF NOT EXISTS idx_change_ledger_device ON change_ledger(class, device_id, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("failed to create change_ledger table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
