package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeCarProblem(t *testing.T) *Problem {
	t.Helper()
	sites := []Site{
		{Name: "d", Demand: 0, Y: 0, X: 0},
		{Name: "a", Demand: 2, Y: 1, X: 0},
		{Name: "b", Demand: 2, Y: 2, X: 0},
		{Name: "c", Demand: 3, Y: 0, X: 3},
		{Name: "e", Demand: 1, Y: -1, X: -1},
	}
	p, err := NewProblem(sites, 3, 5)
	require.NoError(t, err)
	return p
}

func TestNeighborhoodOrderAndCapacity(t *testing.T) {
	p := threeCarProblem(t)
	// loads: route0 = a+b = 4, route1 = c = 3, route2 = e = 1
	sol := Solution{Routes: []Route{{0, 1}, {2}, {3}}}

	cands, stats := Neighborhood(p, sol, NewTabuList())
	got := make([]Move, len(cands))
	for i, c := range cands {
		got[i] = c.Move
	}
	want := []Move{
		{Client: "a", From: 0, To: 1},
		{Client: "b", From: 0, To: 1},
		{Client: "a", From: 0, To: 2},
		{Client: "b", From: 0, To: 2},
		{Client: "c", From: 1, To: 2},
		{Client: "e", From: 2, To: 0},
		{Client: "e", From: 2, To: 1},
	}
	assert.Equal(t, want, got)
	// c (3) does not fit on route 0 (4 of 5).
	assert.Equal(t, 1, stats.OverCap)
	assert.Equal(t, 0, stats.TabuSkipped)
	assert.Equal(t, len(want), stats.Generated)
}

func TestNeighborhoodSkipsTabuAndOverCapacity(t *testing.T) {
	p := threeCarProblem(t)
	sol := Solution{Routes: []Route{{0, 1}, {2}, {3}}}
	tabu := NewTabuList()
	tabu.Register(Move{Client: "e", From: 2, To: 0}, 3)

	cands, stats := Neighborhood(p, sol, tabu)
	for _, c := range cands {
		assert.NotEqual(t, Move{Client: "e", From: 2, To: 0}, c.Move)
		for ri, r := range c.Solution.Routes {
			assert.LessOrEqual(t, p.RouteDemand(r), p.Capacity(), "route %d over capacity after %v", ri, c.Move)
		}
	}
	assert.Equal(t, 1, stats.TabuSkipped)
	assert.Equal(t, len(cands), stats.Generated)
	assert.Positive(t, stats.OverCap)
}

func TestNeighborhoodCandidatesDoNotAlias(t *testing.T) {
	p := threeCarProblem(t)
	sol := Solution{Routes: []Route{{0, 1}, {}, {3, 2}}}
	before := sol.Clone()

	cands, _ := Neighborhood(p, sol, nil)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		for ri := range c.Solution.Routes {
			if len(c.Solution.Routes[ri]) > 0 {
				c.Solution.Routes[ri][0] = 99
			}
		}
	}
	assert.True(t, sol.Equal(before), "mutating candidates changed the live solution: %v", sol.Routes)
}

func TestNeighborhoodCostMatchesTotalCost(t *testing.T) {
	p := threeCarProblem(t)
	sol := Solution{Routes: []Route{{0, 3}, {2}, {1}}}
	cands, _ := Neighborhood(p, sol, nil)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.Equal(t, p.TotalCost(c.Solution), c.Cost, "move %v", c.Move)
	}
}

func TestNeighborhoodRelocationKeepsOrder(t *testing.T) {
	p := threeCarProblem(t)
	sol := Solution{Routes: []Route{{0, 1, 3}, {}, {2}}}
	cands, _ := Neighborhood(p, sol, nil)
	require.NotEmpty(t, cands)
	first := cands[0]
	assert.Equal(t, Move{Client: "a", From: 0, To: 1}, first.Move)
	assert.Equal(t, Route{1, 3}, first.Solution.Routes[0])
	assert.Equal(t, Route{0}, first.Solution.Routes[1])
	assert.Equal(t, Route{2}, first.Solution.Routes[2])
}

func TestBestStableArgmin(t *testing.T) {
	assert.Equal(t, -1, Best(nil))
	cands := []Candidate{{Cost: 5}, {Cost: 3}, {Cost: 3}, {Cost: 4}}
	assert.Equal(t, 1, Best(cands))
}
