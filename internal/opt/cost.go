package opt

import "math"

// Distance is the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.Y-b.Y, a.X-b.X)
}

// RouteCost is depot -> r[0] -> ... -> r[last] -> depot. Empty routes cost 0.
func (p *Problem) RouteCost(r Route) float64 {
	if len(r) == 0 {
		return 0
	}
	total := Distance(p.depot, p.clients[r[0]].Point)
	for k := 0; k < len(r)-1; k++ {
		total += Distance(p.clients[r[k]].Point, p.clients[r[k+1]].Point)
	}
	total += Distance(p.clients[r[len(r)-1]].Point, p.depot)
	return total
}

// TotalCost sums route costs in route index order.
func (p *Problem) TotalCost(s Solution) float64 {
	total := 0.0
	for _, r := range s.Routes {
		total += p.RouteCost(r)
	}
	return total
}

// RouteDemand sums the demand carried by a route.
func (p *Problem) RouteDemand(r Route) float64 {
	load := 0.0
	for _, idx := range r {
		load += p.clients[idx].Demand
	}
	return load
}

// RouteCosts returns the cost of every route, indexed like s.Routes.
func (p *Problem) RouteCosts(s Solution) []float64 {
	out := make([]float64, len(s.Routes))
	for i, r := range s.Routes {
		out[i] = p.RouteCost(r)
	}
	return out
}
