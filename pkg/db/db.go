// Package db stores the tutorial catalog in SQLite. A DB satisfies
// catalog.Catalog, so the server can read tutorials seeded by
// `tutodiy catalog import` without knowing where they live.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is a SQLite-backed tutorial catalog.
type DB struct {
	*sql.DB
	path string
}

func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// Steps cascade with their tutorial.
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return sqlDB, nil
}

// Open opens the catalog at dbPath, creating the file, its directory and
// the tutorial tables on first use.
func Open(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("catalog database path is empty")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	sqlDB, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	db := &DB{DB: sqlDB, path: dbPath}
	if err := db.ensureCatalogTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare catalog tables: %w", err)
	}
	return db, nil
}

func (db *DB) ensureCatalogTables() error {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='tutorials'").Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return db.InitSchema()
	case err != nil:
		return fmt.Errorf("failed to look up catalog tables: %w", err)
	default:
		return nil
	}
}

// Path returns the catalog file the DB was opened from.
func (db *DB) Path() string {
	return db.path
}

// InitSchema creates the tutorial and step tables.
func (db *DB) InitSchema() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create catalog tables: %w", err)
	}
	return nil
}
