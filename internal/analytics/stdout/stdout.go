package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/crimson-sun/beacon/internal/analytics"
	"github.com/crimson-sun/beacon/internal/model"
)

func init() {
	analytics.RegisterSink("stdout", func(analytics.SinkConfig) (analytics.Sink, error) {
		return New(false), nil
	})
}

// Sink writes JSON-encoded telemetry events to stdout, one per line.
type Sink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// New creates a stdout Sink, optionally pretty-printing the JSON.
func New(pretty bool) *Sink {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Sink{enc: enc}
}

func (s *Sink) Write(_ context.Context, event model.InferenceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(event); err != nil {
		return fmt.Errorf("stdout sink: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
