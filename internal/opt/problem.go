// Package opt implements a tabu search solver for the capacitated vehicle
// routing problem: one depot, clients with demand, identical vehicles.
package opt

import (
	"math"
	"strings"
)

// Point is a planar coordinate. Y comes first to match the (y, x) input order.
type Point struct {
	Y float64 `json:"y"`
	X float64 `json:"x"`
}

// Site is one raw input row. The single zero-demand site is the depot.
type Site struct {
	Name   string  `json:"name" yaml:"name"`
	Demand float64 `json:"demand" yaml:"demand"`
	Y      float64 `json:"y" yaml:"y"`
	X      float64 `json:"x" yaml:"x"`
}

type Client struct {
	ID     string
	Demand float64
	Point  Point
}

// Problem is an immutable CVRP instance. Clients keep input order.
type Problem struct {
	depotName string
	depot     Point
	clients   []Client
	index     map[string]int
	vehicles  int
	capacity  float64
}

// NewProblem validates sites and fleet settings and builds a Problem.
func NewProblem(sites []Site, vehicles int, capacity float64) (*Problem, error) {
	if vehicles <= 0 {
		return nil, configError("vehicles must be > 0, got %d", vehicles)
	}
	if capacity <= 0 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return nil, configError("capacity must be a finite number > 0, got %v", capacity)
	}

	p := &Problem{
		index:    make(map[string]int, len(sites)),
		vehicles: vehicles,
		capacity: capacity,
	}
	seen := make(map[string]struct{}, len(sites))
	depots := 0
	for i, s := range sites {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, instanceError("site %d has an empty name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, instanceError("duplicate site name %q", name)
		}
		seen[name] = struct{}{}
		if !finite(s.Demand) || !finite(s.Y) || !finite(s.X) {
			return nil, instanceError("site %q has a non-finite demand or coordinate", name)
		}
		switch {
		case s.Demand < 0:
			return nil, instanceError("site %q has negative demand %v", name, s.Demand)
		case s.Demand == 0:
			depots++
			p.depotName = name
			p.depot = Point{Y: s.Y, X: s.X}
		default:
			p.index[name] = len(p.clients)
			p.clients = append(p.clients, Client{ID: name, Demand: s.Demand, Point: Point{Y: s.Y, X: s.X}})
		}
	}
	if depots != 1 {
		return nil, instanceError("expected exactly one zero-demand depot, found %d", depots)
	}
	return p, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (p *Problem) Depot() Point      { return p.depot }
func (p *Problem) DepotName() string { return p.depotName }
func (p *Problem) Vehicles() int     { return p.vehicles }
func (p *Problem) Capacity() float64 { return p.capacity }

// Len returns the number of clients, excluding the depot.
func (p *Problem) Len() int { return len(p.clients) }

// Client returns the i-th client in input order.
func (p *Problem) Client(i int) Client { return p.clients[i] }

// Clients returns a copy of the client list.
func (p *Problem) Clients() []Client {
	return append([]Client(nil), p.clients...)
}

// Index maps a client id to its position in input order.
func (p *Problem) Index(id string) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

// TotalDemand sums the demand of every client.
func (p *Problem) TotalDemand() float64 {
	total := 0.0
	for _, c := range p.clients {
		total += c.Demand
	}
	return total
}
