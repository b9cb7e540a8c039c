package opt

import "sync"

type key struct {
	Tenant string
	RunID  string
}

var (
	mu    sync.Mutex
	store = map[key]Metrics{}
)

// RecordMetrics keeps the metrics of a finished run in process memory.
func RecordMetrics(tenant, runID string, m Metrics) {
	mu.Lock()
	store[key{Tenant: tenant, RunID: runID}] = m
	mu.Unlock()
}

// GetMetrics returns recorded metrics for a tenant keyed by run id.
func GetMetrics(tenant string) map[string]Metrics {
	mu.Lock()
	defer mu.Unlock()
	out := map[string]Metrics{}
	for k, v := range store {
		if k.Tenant == tenant {
			out[k.RunID] = v
		}
	}
	return out
}
