package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const EventRunCompleted = "run.completed"

type Publisher struct {
	Queue *Queue
}

func NewPublisher(q *Queue) *Publisher {
	return &Publisher{Queue: q}
}

// Emit enqueues an event for the callback URL. Nothing is sent when url is empty.
func (p *Publisher) Emit(ctx context.Context, tenantID, eventType, url, secret string, data any) {
	if url == "" {
		return
	}
	payload := map[string]any{
		"id":       fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type":     eventType,
		"tenantId": tenantID,
		"ts":       time.Now().UTC().Format(time.RFC3339),
		"data":     data,
	}
	body, _ := json.Marshal(payload)
	p.Queue.Enqueue(tenantID, eventType, url, secret, body)
}
