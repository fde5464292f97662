package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/crimson-sun/beacon/internal/analytics"
	"github.com/crimson-sun/beacon/internal/logging"
	"github.com/crimson-sun/beacon/internal/model"
)

func init() {
	analytics.RegisterSink("webhook", func(cfg analytics.SinkConfig) (analytics.Sink, error) {
		if cfg.Target == "" {
			return nil, fmt.Errorf("webhook: sink requires a target URL")
		}
		return New(cfg.Target, WithHeaders(cfg.Headers)), nil
	})
}

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
	maxRetries           = 3
)

// Option configures a webhook Sink.
type Option func(*Sink)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(s *Sink) { s.headers = h }
}

// WithBatchSize sets the number of events accumulated before a flush. Default: 50.
func WithBatchSize(n int) Option {
	return func(s *Sink) { s.batchSize = n }
}

// WithFlushInterval sets the maximum time between flushes. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Sink) { s.flushInterval = d }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) { s.client.Timeout = d }
}

// WithOnError sets a callback invoked when a timer-triggered flush fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(s *Sink) { s.errFunc = f }
}

// Sink POSTs batched telemetry events to an HTTP endpoint as a JSON array.
// Events accumulate in an internal buffer and are flushed when batchSize is
// reached or flushInterval elapses. Retries on 5xx with exponential backoff.
type Sink struct {
	client        *http.Client
	url           string
	headers       map[string]string
	batchSize     int
	flushInterval time.Duration
	errFunc       func(error)
	mu            sync.Mutex
	pending       []model.InferenceEvent
	timer         *time.Timer
}

// New creates a webhook sink targeting the given URL.
func New(url string, opts ...Option) *Sink {
	s := &Sink{
		client:        &http.Client{Timeout: defaultTimeout},
		url:           url,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		errFunc:       func(err error) { logging.Component("webhook").Warn("flush error", "error", err) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write appends an event to the batch. When batchSize is reached, the batch
// is flushed immediately. A timer is started on the first event to ensure
// the batch flushes even if batchSize is never reached. The mutex guards
// only the buffer: HTTP posting and retry backoff run outside it, so a
// slow or failing endpoint never blocks concurrent Write calls.
func (s *Sink) Write(_ context.Context, event model.InferenceEvent) error {
	s.mu.Lock()
	s.pending = append(s.pending, event)

	var batch []model.InferenceEvent
	if len(s.pending) >= s.batchSize {
		batch = s.takeLocked()
	} else if len(s.pending) == 1 {
		// Start timer on first event in a new batch.
		s.timer = time.AfterFunc(s.flushInterval, func() {
			s.mu.Lock()
			batch := s.takeLocked()
			s.mu.Unlock()
			if err := s.post(batch); err != nil {
				s.errFunc(err)
			}
		})
	}
	s.mu.Unlock()

	return s.post(batch)
}

// Close flushes any remaining events and stops the timer.
func (s *Sink) Close() error {
	s.mu.Lock()
	batch := s.takeLocked()
	s.mu.Unlock()
	return s.post(batch)
}

// takeLocked removes and returns the pending batch and stops the flush
// timer. Caller must hold s.mu.
func (s *Sink) takeLocked() []model.InferenceEvent {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := s.pending
	s.pending = nil
	return batch
}

// post sends a batch via HTTP POST. A nil or empty batch is a no-op.
func (s *Sink) post(batch []model.InferenceEvent) error {
	if len(batch) == 0 {
		return nil
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	return s.postWithRetry(body)
}

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (s *Sink) postWithRetry(body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range s.headers {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("webhook: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
