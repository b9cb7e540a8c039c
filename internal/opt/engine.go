package opt

import (
	"log"
	"math/rand"
	"time"
)

// State is the engine lifecycle phase.
type State int

const (
	StateInitializing State = iota
	StateIterating
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIterating:
		return "iterating"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// StopReason explains why the iteration loop ended.
type StopReason string

const (
	StopIterationBudget       StopReason = "iteration budget reached"
	StopNeighborhoodExhausted StopReason = "neighborhood exhausted"
)

// IterationEvent is passed to Options.Observer after every committed move.
type IterationEvent struct {
	Iteration int     `json:"iteration"`
	Move      Move    `json:"move"`
	Cost      float64 `json:"cost"`
	BestCost  float64 `json:"bestCost"`
	Improved  bool    `json:"improved"`
	TabuSize  int     `json:"tabuSize"`
	Neighbors int     `json:"neighbors"`
}

// Options configures a search. The zero value runs no iterations with the
// first-fit builder.
type Options struct {
	TabuTenure int
	Iterations int
	// Seed feeds the builder's rng. First-fit ignores it.
	Seed    int64
	Builder Builder
	// Strict turns unplaceable clients into an *InfeasibleError.
	Strict bool
	// Polish runs intra-route 2-opt on the incumbent after the search.
	Polish bool
	// Observer is invoked synchronously on the solving goroutine.
	Observer func(IterationEvent)
	Logger   *log.Logger
}

// Validate checks tenure and iteration budget.
func (o Options) Validate() error {
	if o.TabuTenure < 0 {
		return configError("tabuTenure must be >= 0, got %d", o.TabuTenure)
	}
	if o.Iterations < 0 {
		return configError("iterations must be >= 0, got %d", o.Iterations)
	}
	return nil
}

type Snapshot struct {
	Iteration   int     `json:"iteration"`
	CurrentCost float64 `json:"currentCost"`
	BestCost    float64 `json:"bestCost"`
	TabuSize    int     `json:"tabuSize"`
}

type Metrics struct {
	Iterations    int        `json:"iterations"`
	Improvements  int        `json:"improvements"`
	Worsening     int        `json:"worsening"`
	Sideways      int        `json:"sideways"`
	Evaluated     int        `json:"evaluated"`
	TabuSkipped   int        `json:"tabuSkipped"`
	InitialCost   float64    `json:"initialCost"`
	BestCost      float64    `json:"bestCost"`
	FinalCost     float64    `json:"finalCost"`
	BestIteration int        `json:"bestIteration"`
	PolishGain    float64    `json:"polishGain,omitempty"`
	Elapsed       string     `json:"elapsed"`
	Snapshots     []Snapshot `json:"snapshots,omitempty"`
}

// Result is the incumbent at termination.
type Result struct {
	Solution   Solution
	Cost       float64
	Iterations int
	Reason     StopReason
	Unassigned []Unassigned
	Builder    string
	Metrics    Metrics
}

const snapshotEvery = 25

// Engine runs one tabu search over a fixed problem. It is not safe for
// concurrent use; create one per run.
type Engine struct {
	p    *Problem
	opts Options

	state   State
	current Solution
	tabu    *TabuList

	best     Solution
	bestCost float64
}

// NewEngine validates options against the problem.
func NewEngine(p *Problem, opts Options) (*Engine, error) {
	if p == nil {
		return nil, configError("problem must be non-nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Builder == nil {
		opts.Builder = FirstFit{}
	}
	return &Engine{p: p, opts: opts, state: StateInitializing}, nil
}

func (e *Engine) State() State { return e.state }

// Solve is shorthand for NewEngine followed by Run.
func Solve(p *Problem, opts Options) (Result, error) {
	e, err := NewEngine(p, opts)
	if err != nil {
		return Result{}, err
	}
	return e.Run()
}

// Run executes the search to completion. The live solution always moves to
// the best non-tabu neighbor, even when that is worse; only the incumbent is
// guaranteed to never get worse.
func (e *Engine) Run() (Result, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(e.opts.Seed))
	sol, dropped := e.opts.Builder.Build(e.p, rng)
	if len(dropped) > 0 {
		e.logf("[SOLVER] %d client(s) left unassigned by %s: %v", len(dropped), e.opts.Builder.Name(), dropped)
		if e.opts.Strict {
			e.state = StateTerminated
			return Result{}, &InfeasibleError{Clients: dropped}
		}
	}
	e.current = sol
	e.tabu = NewTabuList()
	e.best = sol.Clone()
	e.bestCost = e.p.TotalCost(sol)
	currentCost := e.bestCost

	m := Metrics{InitialCost: e.bestCost, BestCost: e.bestCost}
	reason := StopIterationBudget
	e.state = StateIterating
	e.logf("[SOLVER] start clients=%d vehicles=%d capacity=%v tenure=%d iterations=%d builder=%s initial_cost=%.3f",
		e.p.Len(), e.p.vehicles, e.p.capacity, e.opts.TabuTenure, e.opts.Iterations, e.opts.Builder.Name(), e.bestCost)

	for it := 1; it <= e.opts.Iterations; it++ {
		cands, stats := Neighborhood(e.p, e.current, e.tabu)
		m.Evaluated += stats.Generated
		m.TabuSkipped += stats.TabuSkipped
		k := Best(cands)
		if k < 0 {
			reason = StopNeighborhoodExhausted
			break
		}
		chosen := cands[k]

		switch {
		case chosen.Cost < currentCost:
		case chosen.Cost > currentCost:
			m.Worsening++
		default:
			m.Sideways++
		}
		e.current = chosen.Solution
		currentCost = chosen.Cost
		e.tabu.Register(chosen.Move, e.opts.TabuTenure)
		e.tabu.Decay()
		m.Iterations = it

		improved := chosen.Cost < e.bestCost
		if improved {
			e.best = chosen.Solution.Clone()
			e.bestCost = chosen.Cost
			m.Improvements++
			m.BestIteration = it
		}
		if it%snapshotEvery == 0 {
			m.Snapshots = append(m.Snapshots, Snapshot{Iteration: it, CurrentCost: currentCost, BestCost: e.bestCost, TabuSize: e.tabu.Len()})
		}
		if e.opts.Observer != nil {
			e.opts.Observer(IterationEvent{
				Iteration: it,
				Move:      chosen.Move,
				Cost:      chosen.Cost,
				BestCost:  e.bestCost,
				Improved:  improved,
				TabuSize:  e.tabu.Len(),
				Neighbors: len(cands),
			})
		}
	}

	if e.opts.Polish {
		polished := Polish(e.p, e.best, 0)
		if c := e.p.TotalCost(polished); c < e.bestCost {
			m.PolishGain = e.bestCost - c
			e.best = polished
			e.bestCost = c
		}
	}

	e.state = StateTerminated
	m.BestCost = e.bestCost
	m.FinalCost = currentCost
	m.Elapsed = time.Since(start).String()
	e.logf("[SOLVER] done reason=%q iterations=%d best_cost=%.3f improvements=%d elapsed=%s",
		reason, m.Iterations, e.bestCost, m.Improvements, m.Elapsed)

	return Result{
		Solution:   e.best.Clone(),
		Cost:       e.bestCost,
		Iterations: m.Iterations,
		Reason:     reason,
		Unassigned: dropped,
		Builder:    e.opts.Builder.Name(),
		Metrics:    m,
	}, nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.opts.Logger != nil {
		e.opts.Logger.Printf(format, args...)
	}
}
