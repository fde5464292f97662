package model

import "time"

// InferenceEvent is the telemetry record produced the first time a model
// instance is attached to a behavior. Sinks marshal it as-is, so the JSON
// tags are the wire contract.
type InferenceEvent struct {
	Kind             string            `json:"event"`
	BehaviorName     string            `json:"behavior_name"`
	ModelDigest      string            `json:"model_digest"`
	ModelWeightBytes int64             `json:"model_weight_bytes"`
	Producer         string            `json:"producer,omitempty"`
	ProducerVersion  string            `json:"producer_version,omitempty"`
	InferenceDevice  string            `json:"inference_device"`
	ActionSpec       ActionSpec        `json:"action_spec"`
	ObservationSpecs []ObservationSpec `json:"observation_specs,omitempty"`
	PackageVersion   string            `json:"package_version"`
	SessionID        string            `json:"session_id"`
	Timestamp        time.Time         `json:"timestamp"`
}

// Registration describes an event kind to the analytics service: a name,
// rate-limit budget, payload element cap, and the vendor key the backend
// files it under. Registration is idempotent per kind name.
type Registration struct {
	Name        string
	MaxPerHour  int
	MaxElements int
	VendorKey   string
}
