package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tabuvrp/internal/model"
)

// sqlStore persists runs as JSON documents. Queries are written with '?'
// placeholders and rebound for dialects that number them.
type sqlStore struct {
	db       *sql.DB
	numbered bool
	schema   []string
}

func (s *sqlStore) q(query string) string {
	if !s.numbered {
		return query
	}
	return rebind(query)
}

// rebind rewrites '?' placeholders as $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the tables if they do not exist.
func (s *sqlStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqlStore) Close() error { return s.db.Close() }

func (s *sqlStore) SaveRun(ctx context.Context, run model.Run) error {
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("save run %s: encode: %w", run.ID, err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO runs (id, tenant_id, status, created_at, body) VALUES (?,?,?,?,?)
        ON CONFLICT (id) DO UPDATE SET status = excluded.status, body = excluded.body`),
		run.ID, run.TenantID, run.Status, run.CreatedAt.UTC(), string(body))
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *sqlStore) GetRun(ctx context.Context, tenantID, runID string) (model.Run, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT body FROM runs WHERE tenant_id = ? AND id = ?`), tenantID, runID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return decodeRun(body)
}

// ListRuns pages by insertion sequence; the cursor is the last sequence seen.
func (s *sqlStore) ListRuns(ctx context.Context, tenantID, cursor string, limit int) ([]model.Run, string, error) {
	limit = clampLimit(limit)
	after := int64(0)
	if cursor != "" {
		v, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("list runs: bad cursor %q", cursor)
		}
		after = v
	}
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT seq, body FROM runs WHERE tenant_id = ? AND seq > ? ORDER BY seq LIMIT ?`), tenantID, after, limit+1)
	if err != nil {
		return nil, "", fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	out := []model.Run{}
	var last int64
	more := false
	for rows.Next() {
		if len(out) == limit {
			more = true
			break
		}
		var seq int64
		var body string
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, "", fmt.Errorf("list runs: scan: %w", err)
		}
		r, err := decodeRun(body)
		if err != nil {
			return nil, "", err
		}
		out = append(out, r)
		last = seq
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("list runs: %w", err)
	}
	next := ""
	if more {
		next = strconv.FormatInt(last, 10)
	}
	return out, next, nil
}

func (s *sqlStore) GetSolverConfig(ctx context.Context, tenantID string) (*model.SolverConfig, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT body FROM solver_configs WHERE tenant_id = ?`), tenantID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get solver config: %w", err)
	}
	var cfg model.SolverConfig
	if err := json.Unmarshal([]byte(body), &cfg); err != nil {
		return nil, fmt.Errorf("get solver config: decode: %w", err)
	}
	return &cfg, nil
}

func (s *sqlStore) SaveSolverConfig(ctx context.Context, tenantID string, cfg model.SolverConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("save solver config: encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO solver_configs (tenant_id, body) VALUES (?,?)
        ON CONFLICT (tenant_id) DO UPDATE SET body = excluded.body`), tenantID, string(body))
	if err != nil {
		return fmt.Errorf("save solver config: %w", err)
	}
	return nil
}

func decodeRun(body string) (model.Run, error) {
	var r model.Run
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return model.Run{}, fmt.Errorf("decode run: %w", err)
	}
	return r, nil
}
