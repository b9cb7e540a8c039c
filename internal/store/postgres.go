package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
        seq        BIGSERIAL PRIMARY KEY,
        id         TEXT NOT NULL UNIQUE,
        tenant_id  TEXT NOT NULL,
        status     TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL,
        body       JSONB NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS runs_tenant_seq ON runs (tenant_id, seq)`,
	`CREATE TABLE IF NOT EXISTS solver_configs (
        tenant_id TEXT PRIMARY KEY,
        body      JSONB NOT NULL
    )`,
}

// Postgres stores runs through the pgx database/sql driver.
type Postgres struct {
	*sqlStore
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open postgres: verify connection: %w", err)
	}
	return &Postgres{sqlStore: &sqlStore{db: db, numbered: true, schema: postgresSchema}}, nil
}
