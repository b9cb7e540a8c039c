package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tabuvrp/internal/metrics"
	"tabuvrp/internal/model"
	"tabuvrp/internal/opt"
	"tabuvrp/internal/webhooks"
)

// streamEvery thins iteration events; improvements are always published.
const streamEvery = 10

// SolveHandler handles POST /v1/solve
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.CanSolve() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "planner or admin required", r.URL.Path)
		return
	}
	if !s.Limiter.Allow(p.Tenant) {
		w.Header().Set("Retry-After", "1")
		writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "too many solve requests for tenant "+p.Tenant, r.URL.Path)
		return
	}
	var req model.SolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	tenant := p.Tenant
	if req.TenantID != "" && p.IsAdmin() {
		tenant = req.TenantID
	}

	cfg := s.resolveConfig(r.Context(), tenant, &req)
	prob, opts, err := newSolve(req.Sites, cfg)
	if err != nil {
		status, title := solveErrorStatus(err)
		writeProblem(w, status, title, err.Error(), r.URL.Path)
		return
	}

	now := time.Now().UTC()
	run := model.Run{
		ID:          "run_" + uuid.NewString(),
		TenantID:    tenant,
		Status:      model.RunQueued,
		CreatedAt:   now,
		Config:      cfg,
		ClientCount: prob.Len(),
		CallbackURL: req.CallbackURL,
	}
	if d, ok := depotSite(req.Sites); ok {
		run.Depot = &d
	}

	if req.Async {
		if err := s.Store.SaveRun(r.Context(), run); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save run failed", err.Error(), r.URL.Path)
			return
		}
		go func() {
			_, _ = s.execute(context.Background(), prob, opts, run, req.CallbackSecret)
		}()
		writeJSON(w, http.StatusAccepted, map[string]any{"id": run.ID, "status": run.Status, "streamUrl": "/v1/runs/" + run.ID + "/stream"})
		return
	}

	done, err := s.execute(r.Context(), prob, opts, run, req.CallbackSecret)
	if err != nil {
		status, title := solveErrorStatus(err)
		writeProblem(w, status, title, err.Error(), "/v1/runs/"+done.ID)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

// resolveConfig layers the request over the tenant's saved defaults, or the
// service defaults when the tenant has none.
func (s *Server) resolveConfig(ctx context.Context, tenant string, req *model.SolveRequest) model.SolverConfig {
	cfg := s.Defaults
	if tc, err := s.Store.GetSolverConfig(ctx, tenant); err != nil {
		log.Printf("[API] tenant %s solver config: %v", tenant, err)
	} else if tc != nil {
		cfg = *tc
	}
	if req.Vehicles != nil {
		cfg.Vehicles = *req.Vehicles
	}
	if req.Capacity != nil {
		cfg.Capacity = *req.Capacity
	}
	if req.TabuTenure != nil {
		cfg.TabuTenure = *req.TabuTenure
	}
	if req.Iterations != nil {
		cfg.Iterations = *req.Iterations
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.Builder != "" {
		cfg.Builder = req.Builder
	}
	cfg.Strict = cfg.Strict || req.Strict
	cfg.Polish = cfg.Polish || req.Polish
	return cfg
}

func newSolve(sites []model.SiteIn, cfg model.SolverConfig) (*opt.Problem, opt.Options, error) {
	in := make([]opt.Site, len(sites))
	for i, st := range sites {
		in[i] = opt.Site{Name: st.Name, Demand: st.Demand, Y: st.Y, X: st.X}
	}
	prob, err := opt.NewProblem(in, cfg.Vehicles, cfg.Capacity)
	if err != nil {
		return nil, opt.Options{}, err
	}
	b, err := opt.BuilderByName(cfg.Builder)
	if err != nil {
		return nil, opt.Options{}, err
	}
	opts := opt.Options{
		TabuTenure: cfg.TabuTenure,
		Iterations: cfg.Iterations,
		Seed:       cfg.Seed,
		Builder:    b,
		Strict:     cfg.Strict,
		Polish:     cfg.Polish,
		Logger:     log.Default(),
	}
	if err := opts.Validate(); err != nil {
		return nil, opt.Options{}, err
	}
	return prob, opts, nil
}

func depotSite(sites []model.SiteIn) (model.SiteIn, bool) {
	for _, st := range sites {
		if st.Demand == 0 {
			return st, true
		}
	}
	return model.SiteIn{}, false
}

// execute runs the engine for run, persisting state transitions and
// publishing progress. The returned run is the final persisted state.
func (s *Server) execute(ctx context.Context, prob *opt.Problem, opts opt.Options, run model.Run, secret string) (model.Run, error) {
	run.Status = model.RunRunning
	if err := s.Store.SaveRun(ctx, run); err != nil {
		log.Printf("[API] save run %s: %v", run.ID, err)
	}
	opts.Observer = func(ev opt.IterationEvent) {
		if !ev.Improved && ev.Iteration%streamEvery != 0 {
			return
		}
		s.Broker.Publish(run.ID, model.RunEvent{Type: model.EventIteration, Data: map[string]any{
			"runId":     run.ID,
			"iteration": ev.Iteration,
			"move":      ev.Move.String(),
			"cost":      ev.Cost,
			"bestCost":  ev.BestCost,
			"improved":  ev.Improved,
		}})
	}

	start := time.Now()
	res, err := opt.Solve(prob, opts)
	finished := time.Now().UTC()
	run.FinishedAt = &finished

	if err != nil {
		run.Status = model.RunFailed
		run.Error = err.Error()
		var inf *opt.InfeasibleError
		if errors.As(err, &inf) {
			run.Unassigned = unassignedOut(inf.Clients)
			metrics.ObserveSolve(opts.Builder.Name(), "infeasible", 0, time.Since(start).Seconds(), countReasons(inf.Clients))
		}
		s.finish(ctx, run, model.EventFailed, secret)
		return run, err
	}

	metrics.ObserveSolve(res.Builder, string(res.Reason), res.Iterations, time.Since(start).Seconds(), countReasons(res.Unassigned))
	opt.RecordMetrics(run.TenantID, run.ID, res.Metrics)

	run.Status = model.RunCompleted
	run.Routes = res.Solution.IDs(prob)
	run.RouteCosts = prob.RouteCosts(res.Solution)
	run.Cost = res.Cost
	run.Iterations = res.Iterations
	run.StopReason = string(res.Reason)
	run.Unassigned = unassignedOut(res.Unassigned)
	run.Metrics = metricsMap(res.Metrics)
	for _, r := range res.Solution.Routes {
		if len(r) > 0 {
			run.VehiclesUsed++
		}
	}
	s.finish(ctx, run, model.EventCompleted, secret)
	return run, nil
}

func (s *Server) finish(ctx context.Context, run model.Run, eventType, secret string) {
	if err := s.Store.SaveRun(ctx, run); err != nil {
		log.Printf("[API] save run %s: %v", run.ID, err)
	}
	data := map[string]any{"runId": run.ID, "status": run.Status, "cost": run.Cost, "iterations": run.Iterations, "stopReason": run.StopReason}
	if run.Error != "" {
		data["error"] = run.Error
	}
	s.Broker.Publish(run.ID, model.RunEvent{Type: eventType, Data: data})
	if s.Pub != nil {
		// Callbacks always use run.completed; the payload status tells success from failure.
		s.Pub.Emit(ctx, run.TenantID, webhooks.EventRunCompleted, run.CallbackURL, secret, run)
	}
}

func solveErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, opt.ErrInfeasibleClient):
		return http.StatusUnprocessableEntity, "Infeasible instance"
	case errors.Is(err, opt.ErrInvalidConfig):
		return http.StatusBadRequest, "Invalid configuration"
	case errors.Is(err, opt.ErrMalformedInstance):
		return http.StatusBadRequest, "Malformed instance"
	default:
		return http.StatusInternalServerError, "Solve failed"
	}
}

func unassignedOut(in []opt.Unassigned) []model.UnassignedClient {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.UnassignedClient, len(in))
	for i, u := range in {
		out[i] = model.UnassignedClient{ClientID: u.ClientID, Demand: u.Demand, Reason: u.Reason}
	}
	return out
}

func countReasons(in []opt.Unassigned) map[string]int {
	out := map[string]int{}
	for _, u := range in {
		out[u.Reason]++
	}
	return out
}

func metricsMap(m opt.Metrics) map[string]any {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	return out
}
