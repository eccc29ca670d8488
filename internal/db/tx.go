// Package db holds the database/sql helpers shared by SQLite-backed stores.
package db

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// memoryPath is the DSN for a private in-memory database.
const memoryPath = ":memory:"

// Open opens the SQLite database at path, creating its directory if needed.
// A single connection is used so that ":memory:" databases keep their
// contents for the lifetime of the handle.
func Open(path string) (*sql.DB, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil && path != memoryPath {
		db.Close()
		return nil, err
	}
	// Every byte write is durable before SetByte returns.
	if _, err := db.Exec(`PRAGMA synchronous = FULL`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WithTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the version recorded in the schema_version table,
// or 0 when the table is empty.
func SchemaVersion(tx *sql.Tx) (int, error) {
	var version int
	err := tx.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

// SetSchemaVersion replaces the recorded schema version.
func SetSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, version)
	return err
}
