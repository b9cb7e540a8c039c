package opt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstFitInputOrder(t *testing.T) {
	sites := []Site{
		{Name: "d", Demand: 0},
		{Name: "a", Demand: 4, X: 1},
		{Name: "b", Demand: 4, X: 2},
		{Name: "c", Demand: 3, X: 3},
		{Name: "e", Demand: 2, X: 4},
	}
	p, err := NewProblem(sites, 2, 10)
	require.NoError(t, err)

	sol, dropped := FirstFit{}.Build(p, nil)
	assert.Empty(t, dropped)
	// a+b=8 fits car 0, c would make 11 so it goes to car 1, e fits back on car 0.
	assert.Equal(t, map[int][]string{0: {"a", "b", "e"}, 1: {"c"}}, sol.IDs(p))
	require.NoError(t, sol.Validate(p))
}

func TestFirstFitDropsUnplaceable(t *testing.T) {
	sites := []Site{
		{Name: "d", Demand: 0},
		{Name: "big", Demand: 50, X: 1},
	}
	p, err := NewProblem(sites, 1, 10)
	require.NoError(t, err)

	sol, dropped := FirstFit{}.Build(p, nil)
	require.Len(t, dropped, 1)
	assert.Equal(t, "big", dropped[0].ClientID)
	assert.Equal(t, ReasonDemandExceedsCapacity, dropped[0].Reason)
	require.Len(t, sol.Routes, 1)
	assert.Empty(t, sol.Routes[0])
}

func TestFirstFitFleetExhausted(t *testing.T) {
	sites := []Site{
		{Name: "d", Demand: 0},
		{Name: "a", Demand: 6},
		{Name: "b", Demand: 6},
		{Name: "c", Demand: 6},
	}
	p, err := NewProblem(sites, 2, 10)
	require.NoError(t, err)

	sol, dropped := FirstFit{}.Build(p, nil)
	require.Len(t, dropped, 1)
	assert.Equal(t, Unassigned{ClientID: "c", Demand: 6, Reason: ReasonFleetExhausted}, dropped[0])
	assert.Equal(t, 2, sol.Assigned())
}

func TestRandomFitSeeded(t *testing.T) {
	sites := []Site{{Name: "d", Demand: 0}}
	for i := 0; i < 30; i++ {
		sites = append(sites, Site{Name: string(rune('A' + i)), Demand: float64(1 + i%4), Y: float64(i % 7), X: float64(i % 5)})
	}
	p, err := NewProblem(sites, 4, 25)
	require.NoError(t, err)

	a, da := RandomFit{}.Build(p, rand.New(rand.NewSource(123)))
	b, db := RandomFit{}.Build(p, rand.New(rand.NewSource(123)))
	assert.True(t, a.Equal(b), "same seed must give the same assignment")
	assert.Equal(t, da, db)
	require.NoError(t, a.Validate(p))
	assert.Equal(t, p.Len(), a.Assigned()+len(da))
}

func TestBuilderByName(t *testing.T) {
	b, err := BuilderByName("")
	require.NoError(t, err)
	assert.Equal(t, BuilderFirstFit, b.Name())

	b, err = BuilderByName("Random-Fit")
	require.NoError(t, err)
	assert.Equal(t, BuilderRandomFit, b.Name())

	_, err = BuilderByName("savings")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
