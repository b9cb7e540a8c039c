package opt

import "fmt"

// Route is a visiting order of client indices into Problem.Clients.
// The depot is implicit at both ends.
type Route []int

// Solution holds exactly one route per vehicle. Routes may be empty.
type Solution struct {
	Routes []Route
}

// NewSolution returns n empty routes.
func NewSolution(n int) Solution {
	routes := make([]Route, n)
	for i := range routes {
		routes[i] = Route{}
	}
	return Solution{Routes: routes}
}

// Clone deep copies every route so the copy shares no storage with s.
func (s Solution) Clone() Solution {
	out := Solution{Routes: make([]Route, len(s.Routes))}
	for i, r := range s.Routes {
		out.Routes[i] = append(Route{}, r...)
	}
	return out
}

// Relocate returns a copy of s with route from's pos-th client appended to
// route to. The remaining order of route from is preserved.
func (s Solution) Relocate(from, pos, to int) Solution {
	out := s.Clone()
	idx := out.Routes[from][pos]
	out.Routes[from] = append(out.Routes[from][:pos], out.Routes[from][pos+1:]...)
	out.Routes[to] = append(out.Routes[to], idx)
	return out
}

// Equal reports whether both solutions visit the same clients in the same order.
func (s Solution) Equal(o Solution) bool {
	if len(s.Routes) != len(o.Routes) {
		return false
	}
	for i := range s.Routes {
		if len(s.Routes[i]) != len(o.Routes[i]) {
			return false
		}
		for k := range s.Routes[i] {
			if s.Routes[i][k] != o.Routes[i][k] {
				return false
			}
		}
	}
	return true
}

// Assigned counts clients placed on any route.
func (s Solution) Assigned() int {
	n := 0
	for _, r := range s.Routes {
		n += len(r)
	}
	return n
}

// Assignments maps client index to route index.
func (s Solution) Assignments() map[int]int {
	out := make(map[int]int, s.Assigned())
	for ri, r := range s.Routes {
		for _, idx := range r {
			out[idx] = ri
		}
	}
	return out
}

// IDs renders the solution as vehicle index -> ordered client IDs.
func (s Solution) IDs(p *Problem) map[int][]string {
	out := make(map[int][]string, len(s.Routes))
	for ri, r := range s.Routes {
		ids := make([]string, len(r))
		for k, idx := range r {
			ids[k] = p.clients[idx].ID
		}
		out[ri] = ids
	}
	return out
}

// Validate checks route count, index range, the partition invariant and
// per-route capacity.
func (s Solution) Validate(p *Problem) error {
	if len(s.Routes) != p.vehicles {
		return fmt.Errorf("solution has %d routes, want %d", len(s.Routes), p.vehicles)
	}
	seen := make(map[int]int, p.Len())
	for ri, r := range s.Routes {
		for _, idx := range r {
			if idx < 0 || idx >= p.Len() {
				return fmt.Errorf("route %d references unknown client index %d", ri, idx)
			}
			if prev, dup := seen[idx]; dup {
				return fmt.Errorf("client %q appears in routes %d and %d", p.clients[idx].ID, prev, ri)
			}
			seen[idx] = ri
		}
		if load := p.RouteDemand(r); load > p.capacity {
			return fmt.Errorf("route %d carries %v, capacity %v", ri, load, p.capacity)
		}
	}
	return nil
}
