package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
        seq        INTEGER PRIMARY KEY AUTOINCREMENT,
        id         TEXT NOT NULL UNIQUE,
        tenant_id  TEXT NOT NULL,
        status     TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL,
        body       TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS runs_tenant_seq ON runs (tenant_id, seq)`,
	`CREATE TABLE IF NOT EXISTS solver_configs (
        tenant_id TEXT PRIMARY KEY,
        body      TEXT NOT NULL
    )`,
}

// SQLite is a single-file run store for local deployments.
type SQLite struct {
	*sqlStore
}

func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("open sqlite: create directory: %w", err)
		}
	}
	log.Printf("[STORE] opening SQLite database at %s", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One writer keeps "database is locked" out of concurrent async runs.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open sqlite: %s: %w", pragma, err)
		}
	}
	return &SQLite{sqlStore: &sqlStore{db: db, schema: sqliteSchema}}, nil
}
