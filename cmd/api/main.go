package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "tabuvrp/internal/api"
    "tabuvrp/internal/config"
    "tabuvrp/internal/metrics"
)

func main() {
    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        log.Printf("[API] .env: %v", err)
    }
    cfgPath := os.Getenv("CONFIG_FILE")
    if cfgPath == "" {
        cfgPath = "config.yaml"
    }
    cfg, err := config.Load(cfgPath)
    if err != nil {
        log.Fatalf("failed to load config: %v", err)
    }

    srvDeps, err := api.NewServer(cfg)
    if err != nil {
        log.Fatalf("failed to init server: %v", err)
    }
    defer srvDeps.Close()
    metrics.RegisterDefault()

    mux := http.NewServeMux()

    // Solving
    mux.HandleFunc("/v1/solve", srvDeps.SolveHandler)
    mux.HandleFunc("/v1/solver/config", srvDeps.SolverConfigHandler)

    // Runs
    mux.HandleFunc("/v1/runs", srvDeps.RunsIndexHandler)
    mux.HandleFunc("/v1/runs/", srvDeps.RunByIDHandler) // includes /stream

    // Admin
    mux.HandleFunc("/v1/admin/solver/config", srvDeps.AdminSolverConfigHandler)
    mux.HandleFunc("/v1/admin/run-metrics", srvDeps.RunMetricsHandler)

    // Health
    mux.HandleFunc("/healthz", srvDeps.HealthHandler)
    mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
    mux.HandleFunc("/debug/info", srvDeps.DebugJSON)

    srv := &http.Server{
        Addr:              cfg.Server.Addr,
        Handler:           logMiddleware(api.MetricsMiddleware(mux)),
        ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
        WriteTimeout:      cfg.Server.WriteTimeout,
    }

    // Start webhook worker
    worker := srvDeps.NewWebhookWorker()
    worker.Start()
    defer close(worker.Stop)

    go func() {
        log.Printf("API listening on %s", cfg.Server.Addr)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server error: %v", err)
        }
    }()

    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := srv.Shutdown(ctx); err != nil {
        log.Printf("shutdown: %v", err)
    }
}

func logMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        next.ServeHTTP(w, r)
        dur := time.Since(start)
        log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
    })
}
