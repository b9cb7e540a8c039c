// Command solve runs the tabu search on an instance file and prints the routes.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"tabuvrp/internal/config"
	"tabuvrp/internal/model"
	"tabuvrp/internal/opt"
)

type SysInfo struct {
	Platform string `json:"platform"`
	CPU      string `json:"cpu"`
	RAM      string `json:"ram"`
}

// Output is what -output writes.
type Output struct {
	Instance   string             `json:"instance"`
	Config     model.SolverConfig `json:"config"`
	Routes     map[int][]string   `json:"routes"`
	RouteCosts []float64          `json:"routeCosts"`
	Cost       float64            `json:"cost"`
	Iterations int                `json:"iterations"`
	StopReason string             `json:"stopReason"`
	Unassigned []opt.Unassigned   `json:"unassigned,omitempty"`
	Metrics    opt.Metrics        `json:"metrics"`
	System     SysInfo            `json:"system"`
	SolvedAt   string             `json:"solvedAt"`
}

var (
	inputF     = flag.String("input", "instance.yaml", "Path to the instance file (YAML or JSON)")
	outputF    = flag.String("output", "", "Path to write the JSON result. Nothing is written by default")
	vehicles   = flag.Int("vehicles", 0, "Number of vehicles")
	capacity   = flag.Float64("capacity", 0, "Capacity of each vehicle")
	tenure     = flag.Int("tenure", 0, "Tabu tenure in iterations")
	iterations = flag.Int("iterations", 0, "Iteration budget")
	seed       = flag.Int64("seed", 0, "Seed for the random-fit builder")
	builder    = flag.String("builder", "", "Construction builder: first-fit or random-fit")
	strict     = flag.Bool("strict", false, "Fail when a client cannot be placed")
	polish     = flag.Bool("polish", false, "Run 2-opt on each route after the search")
	verbose    = flag.Bool("v", false, "Log search progress")
)

func main() {
	flag.Parse()
	if err := run(os.Stdout); err != nil {
		var inf *opt.InfeasibleError
		if errors.As(err, &inf) {
			log.Printf("%v", err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(stdout io.Writer) error {
	inst, err := config.LoadInstance(*inputF, config.Default().Solver)
	if err != nil {
		return err
	}
	cfg := applyFlags(inst.Solver)

	sites := make([]opt.Site, len(inst.Sites))
	for i, s := range inst.Sites {
		sites[i] = opt.Site{Name: s.Name, Demand: s.Demand, Y: s.Y, X: s.X}
	}
	p, err := opt.NewProblem(sites, cfg.Vehicles, cfg.Capacity)
	if err != nil {
		return err
	}
	b, err := opt.BuilderByName(cfg.Builder)
	if err != nil {
		return err
	}
	opts := opt.Options{TabuTenure: cfg.TabuTenure, Iterations: cfg.Iterations, Seed: cfg.Seed, Builder: b, Strict: cfg.Strict, Polish: cfg.Polish}
	if *verbose {
		opts.Logger = log.Default()
	}
	res, err := opt.Solve(p, opts)
	if err != nil {
		return err
	}
	printResult(stdout, p, res)

	if *outputF == "" {
		return nil
	}
	out := Output{
		Instance:   inst.Name,
		Config:     cfg,
		Routes:     res.Solution.IDs(p),
		RouteCosts: p.RouteCosts(res.Solution),
		Cost:       res.Cost,
		Iterations: res.Iterations,
		StopReason: string(res.Reason),
		Unassigned: res.Unassigned,
		Metrics:    res.Metrics,
		System:     sysInfo(),
		SolvedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outputF, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// applyFlags overrides instance settings with the flags given on the command line.
func applyFlags(cfg model.SolverConfig) model.SolverConfig {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "vehicles":
			cfg.Vehicles = *vehicles
		case "capacity":
			cfg.Capacity = *capacity
		case "tenure":
			cfg.TabuTenure = *tenure
		case "iterations":
			cfg.Iterations = *iterations
		case "seed":
			cfg.Seed = *seed
		case "builder":
			cfg.Builder = *builder
		case "strict":
			cfg.Strict = *strict
		case "polish":
			cfg.Polish = *polish
		}
	})
	return cfg
}

func printResult(w io.Writer, p *opt.Problem, res opt.Result) {
	depot := p.DepotName()
	costs := p.RouteCosts(res.Solution)
	for k, r := range res.Solution.Routes {
		stops := []string{depot}
		for _, c := range r {
			stops = append(stops, p.Client(c).ID)
		}
		stops = append(stops, depot)
		fmt.Fprintf(w, "Car %d: %s\n", k+1, strings.Join(stops, " -> "))
		fmt.Fprintf(w, "  distance: %.3f load: %g/%g\n", costs[k], p.RouteDemand(r), p.Capacity())
	}
	for _, u := range res.Unassigned {
		fmt.Fprintf(w, "Unassigned: %s\n", u)
	}
	fmt.Fprintf(w, "Total distance: %.3f (%d iterations, %s)\n", res.Cost, res.Iterations, res.Reason)
}

func sysInfo() SysInfo {
	info := SysInfo{}
	if h, err := host.Info(); err == nil {
		info.Platform = h.Platform
	}
	if c, err := cpu.Info(); err == nil && len(c) > 0 {
		info.CPU = c[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.RAM = fmt.Sprintf("%d GB", vm.Total/1024/1024/1024)
	}
	return info
}
