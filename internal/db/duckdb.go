// Package db manages the file-backed DuckDB database holding the local
// project/document store.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

// schemaVersion is bumped whenever the table layout changes. Databases
// written by a newer build are refused rather than guessed at.
const schemaVersion = 1

var (
	dbInstance *sql.DB
	dbOnce     sync.Once
	dbErr      error
)

// Get returns a singleton connection to the state database at path,
// creating the schema on first use.
func Get(path string) (*sql.DB, error) {
	dbOnce.Do(func() {
		dbInstance, dbErr = Open(path)
	})
	return dbInstance, dbErr
}

// Open opens the state database at path without going through the
// singleton. Tests use this to get isolated databases.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	database, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	// DuckDB works best with a single connection
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	if err := bootstrap(database); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// bootstrap creates the schema on an empty database and verifies the
// version on an existing one.
func bootstrap(database *sql.DB) error {
	if _, err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := database.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case version == schemaVersion:
		return nil
	case version > schemaVersion:
		return fmt.Errorf("state database schema v%d is newer than this build supports (v%d)", version, schemaVersion)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id         VARCHAR PRIMARY KEY,
			name       VARCHAR NOT NULL,
			code       VARCHAR NOT NULL,
			owner      VARCHAR NOT NULL,
			summary    VARCHAR NOT NULL DEFAULT '',
			file_id    BIGINT  NOT NULL DEFAULT 0,
			created_at VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS project_documents (
			project_id    VARCHAR PRIMARY KEY,
			file_id       BIGINT  NOT NULL,
			name          VARCHAR NOT NULL,
			mime_type     VARCHAR NOT NULL,
			data          VARCHAR NOT NULL,
			last_modified BIGINT  NOT NULL DEFAULT 0,
			uploaded_at   VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			project_id VARCHAR PRIMARY KEY,
			session_id VARCHAR NOT NULL,
			created_at VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key   VARCHAR PRIMARY KEY,
			value VARCHAR NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := database.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if _, err := database.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}
