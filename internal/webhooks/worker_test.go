package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWorkerProcessOnce_SuccessAndSignature(t *testing.T) {
	var gotSig, gotType string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotType = r.Header.Get("X-Event-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	q := NewQueue()
	w := &Worker{Queue: q, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 3}
	NewPublisher(q).Emit(context.Background(), "t1", EventRunCompleted, srv.URL, "secret", map[string]any{"runId": "r1"})
	if q.Len() != 1 {
		t.Fatalf("expected one queued delivery, got %d", q.Len())
	}

	w.processOnce()

	if gotType != EventRunCompleted {
		t.Fatalf("event type header = %q", gotType)
	}
	if !VerifyHMAC("secret", body, gotSig) {
		t.Fatalf("signature %q does not verify", gotSig)
	}
	var evt map[string]any
	if err := json.Unmarshal(body, &evt); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if evt["tenantId"] != "t1" || evt["type"] != EventRunCompleted {
		t.Fatalf("unexpected payload: %v", evt)
	}
	if q.Len() != 0 {
		t.Fatalf("delivered item should leave the queue")
	}
}

func TestWorkerProcessOnce_RetryThenFail(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(500)
	}))
	defer srv.Close()
	q := NewQueue()
	w := &Worker{Queue: q, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 2}
	id := q.Enqueue("t1", EventRunCompleted, srv.URL, "", []byte(`{}`))

	w.processOnce()
	if q.Len() != 1 {
		t.Fatalf("first failure should be retried")
	}
	due := q.Due(time.Now().Add(time.Hour), 10)
	if len(due) != 1 || due[0].ID != id || due[0].Attempts != 1 || due[0].LastError == "" {
		t.Fatalf("unexpected retry state: %+v", due)
	}
	if len(q.Due(time.Now(), 10)) != 0 {
		t.Fatalf("retry should be scheduled in the future")
	}

	// Force the retry due now.
	q.items[id].NextAt = time.Now().Add(-time.Second)
	w.processOnce()
	if q.Len() != 0 {
		t.Fatalf("expected delivery dropped after max attempts")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestPublisherSkipsEmptyURL(t *testing.T) {
	q := NewQueue()
	NewPublisher(q).Emit(context.Background(), "t1", EventRunCompleted, "", "", nil)
	if q.Len() != 0 {
		t.Fatalf("no delivery expected without a url")
	}
}

func TestNextBackoff(t *testing.T) {
	cases := map[int]time.Duration{-1: time.Second, 0: time.Second, 3: 8 * time.Second, 10: 1024 * time.Second, 40: 1024 * time.Second}
	for in, want := range cases {
		if got := nextBackoff(in); got != want {
			t.Errorf("nextBackoff(%d) = %v, want %v", in, got, want)
		}
	}
}

func TestSignAndVerify(t *testing.T) {
	sig := SignHMAC("k", []byte("body"))
	if !VerifyHMAC("k", []byte("body"), sig) {
		t.Fatal("valid signature rejected")
	}
	if VerifyHMAC("k", []byte("other"), sig) || VerifyHMAC("k", []byte("body"), "zz") {
		t.Fatal("invalid signature accepted")
	}
}
