package opt

// Candidate is one relocation of the current solution. Solution never shares
// route storage with the solution it was derived from.
type Candidate struct {
	Move     Move
	Solution Solution
	Cost     float64
}

// NeighborhoodStats counts what enumeration produced and rejected.
type NeighborhoodStats struct {
	Generated   int
	TabuSkipped int
	OverCap     int
}

// Neighborhood enumerates every capacity-feasible, non-tabu single-client
// relocation of sol. Order is source route ascending, destination route
// ascending, then clients in source route order; callers rely on it for
// tie-breaking.
func Neighborhood(p *Problem, sol Solution, tabu *TabuList) ([]Candidate, NeighborhoodStats) {
	var stats NeighborhoodStats
	n := len(sol.Routes)
	loads := make([]float64, n)
	costs := make([]float64, n)
	for i, r := range sol.Routes {
		loads[i] = p.RouteDemand(r)
		costs[i] = p.RouteCost(r)
	}

	var out []Candidate
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			for pos, idx := range sol.Routes[i] {
				c := p.clients[idx]
				if loads[j]+c.Demand > p.capacity {
					stats.OverCap++
					continue
				}
				mv := Move{Client: c.ID, From: i, To: j}
				if tabu != nil && tabu.IsTabu(mv) {
					stats.TabuSkipped++
					continue
				}
				next := sol.Relocate(i, pos, j)
				out = append(out, Candidate{
					Move:     mv,
					Solution: next,
					Cost:     costWith(costs, i, p.RouteCost(next.Routes[i]), j, p.RouteCost(next.Routes[j])),
				})
				stats.Generated++
			}
		}
	}
	return out, stats
}

// costWith sums route costs in index order with routes i and j replaced, so the
// result matches TotalCost on the modified solution exactly.
func costWith(costs []float64, i int, ci float64, j int, cj float64) float64 {
	total := 0.0
	for k, c := range costs {
		switch k {
		case i:
			total += ci
		case j:
			total += cj
		default:
			total += c
		}
	}
	return total
}

// Best returns the index of the strictly cheapest candidate, keeping the first
// one on ties. It returns -1 for an empty slice.
func Best(cands []Candidate) int {
	best := -1
	for k := range cands {
		if best < 0 || cands[k].Cost < cands[best].Cost {
			best = k
		}
	}
	return best
}
