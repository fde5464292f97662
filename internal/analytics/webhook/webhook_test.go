package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/beacon/internal/model"
)

func testEvent(behavior string) model.InferenceEvent {
	return model.InferenceEvent{
		Kind:             "beacon.inference_model_set",
		BehaviorName:     behavior,
		ModelDigest:      "42",
		ModelWeightBytes: 1024,
		InferenceDevice:  "cpu",
		Timestamp:        time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestBatchFlushAtBatchSize(t *testing.T) {
	var mu sync.Mutex
	var received [][]model.InferenceEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var batch []model.InferenceEvent
		json.Unmarshal(body, &batch)
		mu.Lock()
		received = append(received, batch)
		mu.Unlock()
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := New(srv.URL, WithBatchSize(3), WithFlushInterval(10*time.Second))

	for i := 0; i < 3; i++ {
		s.Write(context.Background(), testEvent("Walker"))
	}

	// Give the POST a moment to complete.
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(received))
	}
	if len(received[0]) != 3 {
		t.Errorf("batch size = %d, want 3", len(received[0]))
	}
}

func TestTimerFlushBeforeBatchSize(t *testing.T) {
	var mu sync.Mutex
	var received [][]model.InferenceEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var batch []model.InferenceEvent
		json.Unmarshal(body, &batch)
		mu.Lock()
		received = append(received, batch)
		mu.Unlock()
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := New(srv.URL, WithBatchSize(100), WithFlushInterval(100*time.Millisecond))

	s.Write(context.Background(), testEvent("Crawler"))

	// Wait for the timer to fire.
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 timer-triggered batch, got %d", len(received))
	}
	if len(received[0]) != 1 {
		t.Errorf("batch size = %d, want 1", len(received[0]))
	}
}

func TestVendorHeadersSent(t *testing.T) {
	var gotVendor atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVendor.Store(r.Header.Get("X-Vendor-Key"))
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := New(srv.URL,
		WithBatchSize(1),
		WithHeaders(map[string]string{"X-Vendor-Key": "crimson-sun.beacon"}))
	s.Write(context.Background(), testEvent("Walker"))

	time.Sleep(100 * time.Millisecond)

	if got, _ := gotVendor.Load().(string); got != "crimson-sun.beacon" {
		t.Fatalf("X-Vendor-Key = %q", got)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := New(srv.URL, WithBatchSize(1))
	s.Write(context.Background(), testEvent("Walker"))

	// Wait for retries to complete.
	time.Sleep(5 * time.Second)

	if attempts.Load() < 3 {
		t.Errorf("expected at least 3 attempts, got %d", attempts.Load())
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(400)
	}))
	defer srv.Close()

	s := New(srv.URL, WithBatchSize(1))
	s.Write(context.Background(), testEvent("Walker"))

	time.Sleep(2 * time.Second)

	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt for 4xx, got %d", attempts.Load())
	}
}

func TestWriteNotBlockedByInFlightFlush(t *testing.T) {
	var entered sync.Once
	inFlight := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered.Do(func() { close(inFlight) })
		<-release
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := New(srv.URL, WithBatchSize(100), WithFlushInterval(20*time.Millisecond))

	s.Write(context.Background(), testEvent("Walker"))

	// Wait until the timer flush is stalled inside the handler.
	select {
	case <-inFlight:
	case <-time.After(2 * time.Second):
		t.Fatal("timer flush never reached the server")
	}

	// A concurrent Write must only buffer, not wait on the stalled POST.
	start := time.Now()
	if err := s.Write(context.Background(), testEvent("Crawler")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("Write blocked %v behind an in-flight flush", elapsed)
	}

	close(release)
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}

func TestCloseFlushesPending(t *testing.T) {
	var mu sync.Mutex
	var count int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var batch []model.InferenceEvent
		json.Unmarshal(body, &batch)
		mu.Lock()
		count += len(batch)
		mu.Unlock()
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := New(srv.URL, WithBatchSize(100), WithFlushInterval(time.Hour))
	s.Write(context.Background(), testEvent("Walker"))
	s.Write(context.Background(), testEvent("Crawler"))

	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Fatalf("expected 2 events flushed on Close, got %d", count)
	}
}
