package store

import (
	"context"
	"sync"

	"tabuvrp/internal/model"
)

// Memory is a simple in-memory store used when no database is configured.
type Memory struct {
	mu     sync.Mutex
	runs   map[string]model.Run          // id -> run
	byTen  map[string][]string           // tenant -> run ids, insertion order
	optCfg map[string]model.SolverConfig // tenant -> config
}

func NewMemory() *Memory {
	return &Memory{
		runs:   map[string]model.Run{},
		byTen:  map[string][]string{},
		optCfg: map[string]model.SolverConfig{},
	}
}

func (m *Memory) SaveRun(ctx context.Context, run model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		m.byTen[run.TenantID] = append(m.byTen[run.TenantID], run.ID)
	}
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *Memory) GetRun(ctx context.Context, tenantID, runID string) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok || r.TenantID != tenantID {
		return model.Run{}, ErrNotFound
	}
	return cloneRun(r), nil
}

func (m *Memory) ListRuns(ctx context.Context, tenantID, cursor string, limit int) ([]model.Run, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.byTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	limit = clampLimit(limit)
	out := []model.Run{}
	next := ""
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, cloneRun(m.runs[ids[i]]))
		if len(out) == limit && i+1 < len(ids) {
			next = ids[i]
		}
	}
	return out, next, nil
}

func (m *Memory) GetSolverConfig(ctx context.Context, tenantID string) (*model.SolverConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.optCfg[tenantID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *Memory) SaveSolverConfig(ctx context.Context, tenantID string, cfg model.SolverConfig) error {
	m.mu.Lock()
	m.optCfg[tenantID] = cfg
	m.mu.Unlock()
	return nil
}

// cloneRun copies the slices and maps of r so callers cannot mutate stored state.
func cloneRun(r model.Run) model.Run {
	if r.Routes != nil {
		routes := make(map[int][]string, len(r.Routes))
		for k, v := range r.Routes {
			routes[k] = append([]string(nil), v...)
		}
		r.Routes = routes
	}
	r.RouteCosts = append([]float64(nil), r.RouteCosts...)
	r.Unassigned = append([]model.UnassignedClient(nil), r.Unassigned...)
	if r.Metrics != nil {
		mx := make(map[string]any, len(r.Metrics))
		for k, v := range r.Metrics {
			mx[k] = v
		}
		r.Metrics = mx
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		r.FinishedAt = &t
	}
	return r
}
