package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabuvrp/internal/model"
)

func sampleRun(tenant, id string) model.Run {
	return model.Run{
		ID:         id,
		TenantID:   tenant,
		Status:     model.RunCompleted,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Routes:     map[int][]string{0: {"c1", "c2"}, 1: {}},
		RouteCosts: []float64{4, 0},
		Cost:       4,
		Iterations: 7,
		StopReason: "iteration budget reached",
		Unassigned: []model.UnassignedClient{{ClientID: "big", Demand: 9, Reason: "demand exceeds vehicle capacity"}},
	}
}

// exerciseStore runs the behavior every Store must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	tenant := fmt.Sprintf("t_%d", time.Now().UnixNano())

	_, err := s.GetRun(ctx, tenant, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveRun(ctx, sampleRun(tenant, fmt.Sprintf("%s_run_%d", tenant, i))))
	}

	got, err := s.GetRun(ctx, tenant, tenant+"_run_0")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, got.Routes[0])
	assert.Equal(t, 4.0, got.Cost)
	assert.Len(t, got.Unassigned, 1)

	// Other tenants cannot see the run.
	_, err = s.GetRun(ctx, tenant+"_other", tenant+"_run_0")
	require.ErrorIs(t, err, ErrNotFound)

	// Update in place keeps the run's position.
	upd := sampleRun(tenant, tenant+"_run_0")
	upd.Status = model.RunFailed
	upd.Error = "boom"
	require.NoError(t, s.SaveRun(ctx, upd))
	got, err = s.GetRun(ctx, tenant, tenant+"_run_0")
	require.NoError(t, err)
	assert.Equal(t, model.RunFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	page1, next, err := s.ListRuns(ctx, tenant, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, next)
	assert.Equal(t, tenant+"_run_0", page1[0].ID)
	assert.Equal(t, tenant+"_run_1", page1[1].ID)

	page2, next, err := s.ListRuns(ctx, tenant, next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, tenant+"_run_2", page2[0].ID)

	page3, next, err := s.ListRuns(ctx, tenant, next, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, tenant+"_run_4", page3[0].ID)
	assert.Empty(t, next)

	cfg, err := s.GetSolverConfig(ctx, tenant)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	want := model.SolverConfig{Vehicles: 3, Capacity: 12, TabuTenure: 4, Iterations: 50, Seed: 9, Builder: "random-fit", Strict: true}
	require.NoError(t, s.SaveSolverConfig(ctx, tenant, want))
	want.Iterations = 75
	require.NoError(t, s.SaveSolverConfig(ctx, tenant, want))
	cfg, err = s.GetSolverConfig(ctx, tenant)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, want, *cfg)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveRun(ctx, sampleRun("t1", "r1")))

	got, err := m.GetRun(ctx, "t1", "r1")
	require.NoError(t, err)
	got.Routes[0][0] = "mutated"
	got.RouteCosts[0] = -1

	again, err := m.GetRun(ctx, "t1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "c1", again.Routes[0][0])
	assert.Equal(t, 4.0, again.RouteCosts[0])
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "data", "runs.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(context.Background()))
	// Migrate twice to check the schema is idempotent.
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)
}

func TestSQLiteBadCursor(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(context.Background()))
	_, _, err = s.ListRuns(context.Background(), "t1", "not-a-number", 10)
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT a FROM b WHERE x = $1 AND y = $2", rebind("SELECT a FROM b WHERE x = ? AND y = ?"))
	assert.Equal(t, "SELECT 1", rebind("SELECT 1"))
	pg := &sqlStore{numbered: true}
	lite := &sqlStore{}
	assert.Equal(t, "VALUES ($1,$2)", pg.q("VALUES (?,?)"))
	assert.Equal(t, "VALUES (?,?)", lite.q("VALUES (?,?)"))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, clampLimit(0))
	assert.Equal(t, 100, clampLimit(-3))
	assert.Equal(t, 100, clampLimit(501))
	assert.Equal(t, 25, clampLimit(25))
}
