package model

import "time"

// Wire types shared by the API, the store and the CLI.

type SiteIn struct {
	Name   string  `json:"name" yaml:"name"`
	Demand float64 `json:"demand" yaml:"demand"`
	Y      float64 `json:"y" yaml:"y"`
	X      float64 `json:"x" yaml:"x"`
}

// SolveRequest is the body of POST /v1/solve. Nil pointer fields fall back to
// tenant or service defaults.
type SolveRequest struct {
	TenantID       string   `json:"tenantId,omitempty"`
	Sites          []SiteIn `json:"sites"`
	Vehicles       *int     `json:"vehicles,omitempty"`
	Capacity       *float64 `json:"capacity,omitempty"`
	TabuTenure     *int     `json:"tabuTenure,omitempty"`
	Iterations     *int     `json:"iterations,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
	Builder        string   `json:"builder,omitempty"`
	Strict         bool     `json:"strict,omitempty"`
	Polish         bool     `json:"polish,omitempty"`
	Async          bool     `json:"async,omitempty"`
	CallbackURL    string   `json:"callbackUrl,omitempty"`
	CallbackSecret string   `json:"callbackSecret,omitempty"`
}

// SolverConfig holds the resolved search settings of a run, or a tenant's
// defaults when stored on its own.
type SolverConfig struct {
	Vehicles   int     `json:"vehicles" yaml:"vehicles"`
	Capacity   float64 `json:"capacity" yaml:"capacity"`
	TabuTenure int     `json:"tabuTenure" yaml:"tabuTenure"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	Seed       int64   `json:"seed" yaml:"seed"`
	Builder    string  `json:"builder" yaml:"builder"`
	Strict     bool    `json:"strict,omitempty" yaml:"strict"`
	Polish     bool    `json:"polish,omitempty" yaml:"polish"`
}

const (
	RunQueued    = "queued"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

type UnassignedClient struct {
	ClientID string  `json:"clientId"`
	Demand   float64 `json:"demand"`
	Reason   string  `json:"reason"`
}

// Run is a persisted solve. Routes maps vehicle index to ordered client ids.
type Run struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenantId"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
	FinishedAt   *time.Time         `json:"finishedAt,omitempty"`
	Config       SolverConfig       `json:"config"`
	Depot        *SiteIn            `json:"depot,omitempty"`
	Routes       map[int][]string   `json:"routes,omitempty"`
	RouteCosts   []float64          `json:"routeCosts,omitempty"`
	Cost         float64            `json:"cost"`
	Iterations   int                `json:"iterations"`
	StopReason   string             `json:"stopReason,omitempty"`
	Unassigned   []UnassignedClient `json:"unassigned,omitempty"`
	Metrics      map[string]any     `json:"metrics,omitempty"`
	Error        string             `json:"error,omitempty"`
	CallbackURL  string             `json:"-"`
	ClientCount  int                `json:"clientCount"`
	VehiclesUsed int                `json:"vehiclesUsed"`
}

// RunEvent is published on the broker while a run progresses.
type RunEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

const (
	EventIteration = "run.iteration"
	EventCompleted = "run.completed"
	EventFailed    = "run.failed"
)
