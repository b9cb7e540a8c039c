// Package config loads service and instance configuration from YAML files
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"tabuvrp/internal/model"
)

type Config struct {
	Server   Server             `yaml:"server"`
	Rate     Rate               `yaml:"rate"`
	Store    Store              `yaml:"store"`
	Redis    Redis              `yaml:"redis"`
	Webhooks Webhooks           `yaml:"webhooks"`
	Solver   model.SolverConfig `yaml:"solver"`
}

type Server struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
}

// Rate limits POST /v1/solve per tenant. RPS <= 0 disables limiting.
type Rate struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Store selects the run store: memory, postgres or sqlite.
type Store struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

type Redis struct {
	URL string `yaml:"url"`
}

type Webhooks struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Default mirrors the reference fleet: 5 cars of capacity 1000, tenure 10,
// 200 iterations, seed 42.
func Default() Config {
	return Config{
		Server:   Server{Addr: ":8080", ReadHeaderTimeout: 5 * time.Second, WriteTimeout: 120 * time.Second},
		Rate:     Rate{RPS: 5, Burst: 10},
		Store:    Store{Driver: DriverMemory, Migrate: true},
		Webhooks: Webhooks{MaxAttempts: 5, Timeout: 5 * time.Second},
		Solver: model.SolverConfig{
			Vehicles:   5,
			Capacity:   1000,
			TabuTenure: 10,
			Iterations: 200,
			Seed:       42,
			Builder:    "first-fit",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error; an empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Store.Driver = DriverPostgres
		c.Store.DSN = v
	} else if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Store.Driver = DriverSQLite
		c.Store.DSN = v
	}
	if os.Getenv("DB_MIGRATE") == "false" {
		c.Store.Migrate = false
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("SOLVER_BUILDER"); v != "" {
		c.Solver.Builder = v
	}

	var err error
	set := func(key string, fn func(string) error) {
		if err != nil {
			return
		}
		if v := os.Getenv(key); v != "" {
			if e := fn(v); e != nil {
				err = fmt.Errorf("env %s=%q: %w", key, v, e)
			}
		}
	}
	set("RATE_RPS", func(v string) (e error) { c.Rate.RPS, e = strconv.ParseFloat(v, 64); return })
	set("RATE_BURST", func(v string) (e error) { c.Rate.Burst, e = strconv.Atoi(v); return })
	set("WEBHOOK_MAX_ATTEMPTS", func(v string) (e error) { c.Webhooks.MaxAttempts, e = strconv.Atoi(v); return })
	set("SOLVER_VEHICLES", func(v string) (e error) { c.Solver.Vehicles, e = strconv.Atoi(v); return })
	set("SOLVER_CAPACITY", func(v string) (e error) { c.Solver.Capacity, e = strconv.ParseFloat(v, 64); return })
	set("SOLVER_TABU_TENURE", func(v string) (e error) { c.Solver.TabuTenure, e = strconv.Atoi(v); return })
	set("SOLVER_ITERATIONS", func(v string) (e error) { c.Solver.Iterations, e = strconv.Atoi(v); return })
	set("SOLVER_SEED", func(v string) (e error) { c.Solver.Seed, e = strconv.ParseInt(v, 10, 64); return })
	return err
}

// Validate checks that the service can start with c.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store.driver %q (allowed: memory, postgres, sqlite)", c.Store.Driver)
	}
	if c.Rate.RPS > 0 && c.Rate.Burst <= 0 {
		return fmt.Errorf("rate.burst must be > 0 when rate.rps is set")
	}
	if c.Webhooks.MaxAttempts <= 0 {
		return fmt.Errorf("webhooks.maxAttempts must be > 0")
	}
	return ValidateSolver(c.Solver)
}

// ValidateSolver checks solver defaults. The engine repeats these checks; this
// catches bad files before the service accepts traffic.
func ValidateSolver(s model.SolverConfig) error {
	if s.Vehicles <= 0 {
		return fmt.Errorf("solver.vehicles must be > 0")
	}
	if s.Capacity <= 0 {
		return fmt.Errorf("solver.capacity must be > 0")
	}
	if s.TabuTenure < 0 {
		return fmt.Errorf("solver.tabuTenure must be >= 0")
	}
	if s.Iterations < 0 {
		return fmt.Errorf("solver.iterations must be >= 0")
	}
	return nil
}
