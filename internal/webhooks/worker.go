package webhooks

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"tabuvrp/internal/metrics"
)

type Worker struct {
	Queue       *Queue
	HTTP        *http.Client
	Stop        chan struct{}
	MaxAttempts int
}

func NewWorker(q *Queue, maxAttempts int, timeout time.Duration) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Worker{Queue: q, HTTP: &http.Client{Timeout: timeout}, Stop: make(chan struct{}), MaxAttempts: maxAttempts}
}

func (w *Worker) Start() {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-w.Stop:
				return
			case <-ticker.C:
				w.processOnce()
			}
		}
	}()
}

func (w *Worker) processOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	items := w.Queue.Due(time.Now(), 50)
	for _, it := range items {
		success := false
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
		if err != nil {
			log.Printf("[WEBHOOK] drop %s: %v", it.ID, err)
			metrics.WebhookDeliveries.WithLabelValues(it.EventType, "invalid").Inc()
			w.Queue.Done(it.ID)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Event-Type", it.EventType)
		if it.Secret != "" {
			req.Header.Set("X-Signature", SignHMAC(it.Secret, it.Payload))
		}
		start := time.Now()
		resp, err := w.HTTP.Do(req)
		latency := time.Since(start).Milliseconds()
		code := 0
		if err == nil && resp != nil {
			code = resp.StatusCode
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
			if code >= 200 && code < 300 {
				success = true
			}
		}
		status := "success"
		if !success {
			status = "error"
			if code != 0 {
				status = strconv.Itoa(code)
			}
		}
		metrics.WebhookDeliveries.WithLabelValues(it.EventType, status).Inc()
		metrics.WebhookLatency.WithLabelValues(it.EventType, status).Observe(float64(latency))
		if success {
			w.Queue.Done(it.ID)
			continue
		}
		lastErr := "http " + strconv.Itoa(code)
		if err != nil {
			lastErr = err.Error()
		}
		if it.Attempts+1 >= w.MaxAttempts {
			log.Printf("[WEBHOOK] giving up on %s to %s after %d attempts: %s", it.ID, it.URL, it.Attempts+1, lastErr)
			metrics.WebhookDeliveries.WithLabelValues(it.EventType, "failed").Inc()
			w.Queue.Done(it.ID)
			continue
		}
		w.Queue.Retry(it.ID, time.Now().Add(nextBackoff(it.Attempts)), lastErr)
	}
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
