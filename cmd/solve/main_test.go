package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabuvrp/internal/opt"
)

const lineInstance = `name: line
sites:
  - {name: depot, demand: 0, y: 0, x: 0}
  - {name: c1, demand: 1, y: 0, x: 1}
  - {name: c2, demand: 1, y: 0, x: 2}
  - {name: c3, demand: 1, y: 0, x: 3}
solver:
  vehicles: 1
  capacity: 3
  tabuTenure: 2
  iterations: 10
`

func TestPrintResult(t *testing.T) {
	p, err := opt.NewProblem([]opt.Site{
		{Name: "depot"},
		{Name: "c1", Demand: 1, X: 1},
		{Name: "c2", Demand: 1, X: 2},
	}, 2, 5)
	require.NoError(t, err)
	res, err := opt.Solve(p, opt.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	printResult(&buf, p, res)
	want := "Car 1: depot -> c1 -> c2 -> depot\n" +
		"  distance: 4.000 load: 2/5\n" +
		"Car 2: depot -> depot\n" +
		"  distance: 0.000 load: 0/5\n" +
		"Total distance: 4.000 (0 iterations, iteration budget reached)\n"
	assert.Equal(t, want, buf.String())
}

func TestRunWritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "line.yaml")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte(lineInstance), 0o644))
	*inputF, *outputF = in, out
	t.Cleanup(func() { *inputF, *outputF = "instance.yaml", "" })

	var buf bytes.Buffer
	require.NoError(t, run(&buf))
	assert.Contains(t, buf.String(), "Total distance: 6.000")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got Output
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "line", got.Instance)
	assert.Equal(t, 6.0, got.Cost)
	assert.Equal(t, []string{"c1", "c2", "c3"}, got.Routes[0])
	assert.Equal(t, "neighborhood exhausted", got.StopReason)
	assert.Equal(t, 1, got.Config.Vehicles)
}

func TestRunMissingInstance(t *testing.T) {
	*inputF = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { *inputF = "instance.yaml" })
	assert.Error(t, run(&bytes.Buffer{}))
}
