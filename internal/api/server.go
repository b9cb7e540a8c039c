package api

import (
	"context"
	"fmt"
	"io"
	"log"

	"tabuvrp/internal/auth"
	"tabuvrp/internal/config"
	"tabuvrp/internal/model"
	"tabuvrp/internal/store"
	"tabuvrp/internal/webhooks"
)

type Server struct {
	Store    store.Store
	Pub      *webhooks.Publisher
	Queue    *webhooks.Queue
	Auth     *auth.Verifier
	Broker   EventBroker
	Limiter  *tenantLimiter
	Defaults model.SolverConfig
	cfg      config.Config
}

// NewServer wires the store, broker and webhook queue chosen by cfg.
func NewServer(cfg config.Config) (*Server, error) {
	s, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	// Broker selection
	var broker EventBroker
	if cfg.Redis.URL != "" {
		rb, err := NewRedisBroker(cfg.Redis.URL)
		if err != nil {
			log.Printf("[API] redis broker unavailable, using in-memory: %v", err)
			broker = NewBroker()
		} else {
			broker = rb
		}
	} else {
		broker = NewBroker()
	}
	q := webhooks.NewQueue()
	return &Server{
		Store:    s,
		Pub:      webhooks.NewPublisher(q),
		Queue:    q,
		Auth:     auth.NewVerifierFromEnv(),
		Broker:   broker,
		Limiter:  newTenantLimiter(cfg.Rate.RPS, cfg.Rate.Burst),
		Defaults: cfg.Solver,
		cfg:      cfg,
	}, nil
}

func openStore(c config.Store) (store.Store, error) {
	type migrator interface {
		Migrate(ctx context.Context) error
	}
	var s store.Store
	switch c.Driver {
	case config.DriverPostgres:
		pg, err := store.NewPostgres(c.DSN)
		if err != nil {
			return nil, err
		}
		s = pg
	case config.DriverSQLite:
		sl, err := store.NewSQLite(c.DSN)
		if err != nil {
			return nil, err
		}
		s = sl
	case config.DriverMemory, "":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
	if m, ok := s.(migrator); ok && c.Migrate {
		if err := m.Migrate(context.Background()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Queue, s.cfg.Webhooks.MaxAttempts, s.cfg.Webhooks.Timeout)
}

// Close releases the store and broker connections.
func (s *Server) Close() error {
	if c, ok := s.Broker.(io.Closer); ok {
		_ = c.Close()
	}
	if c, ok := s.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
