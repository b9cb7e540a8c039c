package metrics

import (
    "sync"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // SolveRuns counts finished solves by construction builder and stop reason
    SolveRuns = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "tabuvrp_solve_runs_total", Help: "Finished solver runs by builder and stop reason."},
        []string{"builder", "reason"},
    )
    SolveIterations = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "tabuvrp_solve_iterations", Help: "Tabu iterations executed per run.", Buckets: []float64{0, 1, 10, 50, 100, 200, 500, 1000, 5000}},
    )
    SolveDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "tabuvrp_solve_duration_seconds", Help: "Wall time of a solve in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 4, 10)},
        []string{"builder"},
    )
    // UnassignedClients counts clients the builder could not place
    UnassignedClients = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "tabuvrp_unassigned_clients_total", Help: "Clients left unassigned by construction."},
        []string{"reason"},
    )

    // WebhookDeliveries counts webhook delivery outcomes by event type and status
    WebhookDeliveries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
        []string{"event_type", "status"},
    )
    // WebhookLatency tracks webhook delivery latencies in milliseconds
    WebhookLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
        []string{"event_type", "status"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(SolveRuns)
        Registry.MustRegister(SolveIterations)
        Registry.MustRegister(SolveDuration)
        Registry.MustRegister(UnassignedClients)
        Registry.MustRegister(WebhookDeliveries)
        Registry.MustRegister(WebhookLatency)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once

// ObserveSolve records one finished solve.
func ObserveSolve(builder, reason string, iterations int, seconds float64, unassigned map[string]int) {
    SolveRuns.WithLabelValues(builder, reason).Inc()
    SolveIterations.Observe(float64(iterations))
    SolveDuration.WithLabelValues(builder).Observe(seconds)
    for r, n := range unassigned {
        UnassignedClients.WithLabelValues(r).Add(float64(n))
    }
}
