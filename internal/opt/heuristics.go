package opt

// ImproveRoute2Opt reverses segments of r while doing so shortens the
// depot-to-depot tour. The set of visited clients never changes, so load and
// assignment are preserved. passes <= 0 means a single pass.
func ImproveRoute2Opt(p *Problem, r Route, passes int) Route {
	if passes <= 0 {
		passes = 1
	}
	best := append(Route{}, r...)
	bestDist := p.RouteCost(best)
	n := len(best)
	for it := 0; it < passes; it++ {
		improved := false
		for i := 0; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				cand := twoOptSwap(best, i, k)
				d := p.RouteCost(cand)
				if d+1e-9 < bestDist {
					best = cand
					bestDist = d
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return best
}

// Polish applies ImproveRoute2Opt to every route of a copy of s.
func Polish(p *Problem, s Solution, passes int) Solution {
	out := s.Clone()
	for i, r := range out.Routes {
		if len(r) > 1 {
			out.Routes[i] = ImproveRoute2Opt(p, r, passes)
		}
	}
	return out
}

func twoOptSwap(ord Route, i, k int) Route {
	out := make(Route, len(ord))
	copy(out, ord[:i])
	// reverse i..k
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = ord[j]
		pos++
	}
	copy(out[pos:], ord[k+1:])
	return out
}
