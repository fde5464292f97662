package jsonl

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/beacon/internal/model"
)

func testEvent(behavior string) model.InferenceEvent {
	return model.InferenceEvent{
		Kind:             "beacon.inference_model_set",
		BehaviorName:     behavior,
		ModelDigest:      "987654321",
		ModelWeightBytes: 4096,
		InferenceDevice:  "gpu",
		PackageVersion:   "0.1.0",
		Timestamp:        time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.Write(context.Background(), testEvent("Walker")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	s.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var ev model.InferenceEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if ev.BehaviorName != "Walker" {
			t.Errorf("line %d: behavior = %q, want Walker", i, ev.BehaviorName)
		}
	}
}

func TestAppendAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for run := 0; run < 2; run++ {
		s, err := New(path)
		if err != nil {
			t.Fatalf("run %d: New error: %v", run, err)
		}
		if err := s.Write(context.Background(), testEvent("Crawler")); err != nil {
			t.Fatalf("run %d: Write error: %v", run, err)
		}
		s.Close()
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines after reopen, want 2", len(lines))
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")

	// MaxSize of 200 bytes — each JSON line is well over 100 bytes, so
	// rotation kicks in after the first couple of writes.
	s, err := New(path, WithMaxSize(200))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.Write(context.Background(), testEvent("Walker")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	s.Close()

	if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
		t.Error("expected rotated file .1 to exist")
	}
}
