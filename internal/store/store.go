package store

import (
	"context"
	"errors"

	"tabuvrp/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Runs
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, tenantID, runID string) (model.Run, error)
	ListRuns(ctx context.Context, tenantID, cursor string, limit int) (items []model.Run, nextCursor string, err error)

	// Solver defaults per tenant; nil when the tenant has none.
	GetSolverConfig(ctx context.Context, tenantID string) (*model.SolverConfig, error)
	SaveSolverConfig(ctx context.Context, tenantID string, cfg model.SolverConfig) error
}

var ErrNotFound = errors.New("not found")

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
