package webhooks

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Delivery is one pending callback POST.
type Delivery struct {
	ID        string
	TenantID  string
	EventType string
	URL       string
	Secret    string
	Payload   []byte
	Attempts  int
	NextAt    time.Time
	LastError string
}

// Queue holds deliveries in memory until they succeed or run out of attempts.
type Queue struct {
	mu    sync.Mutex
	items map[string]*Delivery
	order []string
}

func NewQueue() *Queue {
	return &Queue{items: map[string]*Delivery{}}
}

func (q *Queue) Enqueue(tenantID, eventType, url, secret string, payload []byte) string {
	d := &Delivery{
		ID:        "whd_" + uuid.NewString(),
		TenantID:  tenantID,
		EventType: eventType,
		URL:       url,
		Secret:    secret,
		Payload:   payload,
		NextAt:    time.Now(),
	}
	q.mu.Lock()
	q.items[d.ID] = d
	q.order = append(q.order, d.ID)
	q.mu.Unlock()
	return d.ID
}

// Due returns copies of up to limit deliveries whose next attempt is at or before now.
func (q *Queue) Due(now time.Time, limit int) []Delivery {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := []Delivery{}
	for _, id := range q.order {
		if len(out) >= limit {
			break
		}
		d := q.items[id]
		if !d.NextAt.After(now) {
			out = append(out, *d)
		}
	}
	return out
}

// Retry records a failed attempt and schedules the next one.
func (q *Queue) Retry(id string, next time.Time, lastErr string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if d, ok := q.items[id]; ok {
		d.Attempts++
		d.NextAt = next
		d.LastError = lastErr
	}
}

// Done removes a delivery, either delivered or given up on.
func (q *Queue) Done(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.items[id]; !ok {
		return
	}
	delete(q.items, id)
	for i, v := range q.order {
		if v == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
