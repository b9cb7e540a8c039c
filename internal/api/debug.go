package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"tabuvrp/internal/buildinfo"
)

func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"ADDR":                 s.cfg.Server.Addr,
			"AUTH_MODE":            os.Getenv("AUTH_MODE"),
			"STORE_DRIVER":         s.cfg.Store.Driver,
			"RATE_RPS":             s.cfg.Rate.RPS,
			"RATE_BURST":           s.cfg.Rate.Burst,
			"WEBHOOK_MAX_ATTEMPTS": s.cfg.Webhooks.MaxAttempts,
			"HAS_REDIS_URL":        s.cfg.Redis.URL != "",
			"SOLVER":               s.Defaults,
		},
		"pendingWebhooks": s.Queue.Len(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
