package api

import (
    "context"
    "errors"
    "net/http"
    "sort"
    "strconv"
    "strings"
    "time"

    "tabuvrp/internal/model"
    "tabuvrp/internal/opt"
    "tabuvrp/internal/store"
)

// RunsIndexHandler handles GET /v1/runs
func (s *Server) RunsIndexHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/runs" { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    p := s.getPrincipal(r)
    cursor := r.URL.Query().Get("cursor")
    limit := 100
    if v := r.URL.Query().Get("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil { writeProblem(w, 400, "Invalid limit", err.Error(), r.URL.Path); return }
        limit = n
    }
    items, next, err := s.Store.ListRuns(r.Context(), p.Tenant, cursor, limit)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// RunByIDHandler handles GET /v1/runs/{id} and GET /v1/runs/{id}/stream
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
    path := r.URL.Path
    rest := strings.TrimPrefix(path, "/v1/runs/")
    if rest == path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
        return
    }
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    parts := strings.Split(rest, "/")
    id := parts[0]
    p := s.getPrincipal(r)
    run, err := s.Store.GetRun(r.Context(), p.Tenant, id)
    if errors.Is(err, store.ErrNotFound) { writeProblem(w, 404, "Run not found", id, path); return }
    if err != nil { writeProblem(w, 500, "Get run failed", err.Error(), path); return }
    switch {
    case len(parts) == 1:
        writeJSON(w, http.StatusOK, run)
    case len(parts) == 2 && parts[1] == "stream":
        s.streamRun(w, r, run)
    default:
        writeProblem(w, http.StatusNotFound, "Not Found", "", path)
    }
}

// SolverConfigHandler returns the solver defaults in effect for the caller's tenant
func (s *Server) SolverConfigHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/solver/config" || r.Method != http.MethodGet { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    p := s.getPrincipal(r)
    defaults := s.resolveConfig(r.Context(), p.Tenant, &model.SolveRequest{})
    writeJSON(w, 200, map[string]any{"defaults": defaults, "builders": []string{opt.BuilderFirstFit, opt.BuilderRandomFit}})
}

// Admin get/set solver tenant config
func (s *Server) AdminSolverConfigHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/admin/solver/config" { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    p := s.getPrincipal(r)
    if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
    switch r.Method {
    case http.MethodGet:
        cfg, err := s.Store.GetSolverConfig(r.Context(), p.Tenant)
        if err != nil { writeProblem(w, 500, "Get config failed", err.Error(), r.URL.Path); return }
        writeJSON(w, 200, map[string]any{"config": cfg})
    case http.MethodPut:
        var body struct{ Config *model.SolverConfig `json:"config"` }
        if err := decodeJSON(w, r, &body); err != nil { writeProblem(w, 400, "Invalid JSON", err.Error(), r.URL.Path); return }
        if body.Config == nil { writeProblem(w, 400, "Missing config", "", r.URL.Path); return }
        if body.Config.Builder == "" { body.Config.Builder = opt.BuilderFirstFit }
        if err := validateSolverConfig(*body.Config); err != nil { writeProblem(w, 400, "Invalid config", err.Error(), r.URL.Path); return }
        if err := s.Store.SaveSolverConfig(r.Context(), p.Tenant, *body.Config); err != nil { writeProblem(w, 500, "Save failed", err.Error(), r.URL.Path); return }
        writeJSON(w, 200, map[string]bool{"ok": true})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// RunMetricsHandler returns search metrics of runs finished by this process
func (s *Server) RunMetricsHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/admin/run-metrics" || r.Method != http.MethodGet { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    p := s.getPrincipal(r)
    if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
    runID := r.URL.Query().Get("runId")
    ms := opt.GetMetrics(p.Tenant)
    items := []map[string]any{}
    for id, m := range ms {
        if runID != "" && id != runID { continue }
        items = append(items, map[string]any{
            "runId":         id,
            "iterations":    m.Iterations,
            "improvements":  m.Improvements,
            "worsening":     m.Worsening,
            "sideways":      m.Sideways,
            "evaluated":     m.Evaluated,
            "tabuSkipped":   m.TabuSkipped,
            "initialCost":   m.InitialCost,
            "bestCost":      m.BestCost,
            "finalCost":     m.FinalCost,
            "bestIteration": m.BestIteration,
            "elapsed":       m.Elapsed,
        })
    }
    sort.Slice(items, func(i, j int) bool { return items[i]["runId"].(string) < items[j]["runId"].(string) })
    writeJSON(w, 200, map[string]any{"items": items})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    // Check DB connectivity when using a SQL store
    type pinger interface{ Ping(ctx context.Context) error }
    if pg, ok := s.Store.(pinger); ok {
        ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
        defer cancel()
        if err := pg.Ping(ctx); err != nil { writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path); return }
    }
    writeJSON(w, 200, map[string]string{"status": "ready"})
}
