package opt

import (
	"fmt"
	"math/rand"
	"strings"
)

// Builder produces the starting solution for a search. Implementations must
// never exceed vehicle capacity; clients that fit nowhere are returned as
// Unassigned instead of placed.
type Builder interface {
	Name() string
	Build(p *Problem, rng *rand.Rand) (Solution, []Unassigned)
}

const (
	BuilderFirstFit  = "first-fit"
	BuilderRandomFit = "random-fit"
)

// BuilderByName resolves a builder name. Empty selects first-fit.
func BuilderByName(name string) (Builder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BuilderFirstFit:
		return FirstFit{}, nil
	case BuilderRandomFit:
		return RandomFit{}, nil
	default:
		return nil, configError("unknown builder %q (allowed: %s, %s)", name, BuilderFirstFit, BuilderRandomFit)
	}
}

// FirstFit assigns clients in input order to the lowest-index vehicle with
// room. It is deterministic and ignores rng.
type FirstFit struct{}

func (FirstFit) Name() string { return BuilderFirstFit }

func (FirstFit) Build(p *Problem, _ *rand.Rand) (Solution, []Unassigned) {
	sol := NewSolution(p.vehicles)
	loads := make([]float64, p.vehicles)
	var dropped []Unassigned
	for i, c := range p.clients {
		placed := false
		for v := range loads {
			if loads[v]+c.Demand <= p.capacity {
				sol.Routes[v] = append(sol.Routes[v], i)
				loads[v] += c.Demand
				placed = true
				break
			}
		}
		if !placed {
			dropped = append(dropped, unassigned(p, c))
		}
	}
	return sol, dropped
}

// RandomFit assigns clients in input order to a vehicle drawn uniformly from
// those with room left.
type RandomFit struct{}

func (RandomFit) Name() string { return BuilderRandomFit }

func (RandomFit) Build(p *Problem, rng *rand.Rand) (Solution, []Unassigned) {
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	sol := NewSolution(p.vehicles)
	loads := make([]float64, p.vehicles)
	var dropped []Unassigned
	open := make([]int, 0, p.vehicles)
	for i, c := range p.clients {
		open = open[:0]
		for v := range loads {
			if loads[v]+c.Demand <= p.capacity {
				open = append(open, v)
			}
		}
		if len(open) == 0 {
			dropped = append(dropped, unassigned(p, c))
			continue
		}
		v := open[rng.Intn(len(open))]
		sol.Routes[v] = append(sol.Routes[v], i)
		loads[v] += c.Demand
	}
	return sol, dropped
}

func unassigned(p *Problem, c Client) Unassigned {
	reason := ReasonFleetExhausted
	if c.Demand > p.capacity {
		reason = ReasonDemandExceedsCapacity
	}
	return Unassigned{ClientID: c.ID, Demand: c.Demand, Reason: reason}
}

// String is used in log lines.
func (u Unassigned) String() string {
	return fmt.Sprintf("%s(demand=%v: %s)", u.ClientID, u.Demand, u.Reason)
}
