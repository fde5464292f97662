package analytics

import "fmt"

// SinkConfig carries the target a sink delivers to and any transport
// headers (vendor keys, auth) it should attach.
type SinkConfig struct {
	Target  string
	Headers map[string]string
}

// Constructor is a function that creates a new Sink instance.
type Constructor func(cfg SinkConfig) (Sink, error)

var registry = map[string]Constructor{}

// RegisterSink adds a sink constructor under the given name.
func RegisterSink(name string, ctor Constructor) {
	registry[name] = ctor
}

// GetSink returns the sink constructor for the given name.
func GetSink(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("analytics: unknown sink %q", name)
	}
	return ctor, nil
}

// Sinks returns the names of all registered sinks.
func Sinks() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
