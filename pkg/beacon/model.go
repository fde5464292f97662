package beacon

// Model is the host's view of a loaded inference model: an ordered sequence
// of named weight layers. Reporting is keyed on the *Model pointer, so the
// host should pass the same instance it attached to the behavior —
// structurally identical models loaded separately are reported separately.
type Model struct {
	Name            string
	Producer        string // tool that produced the model file (optional)
	ProducerVersion string // producer version string (optional)
	Layers          []Layer
}

// Layer is one named weight tensor. A nil weight buffer is valid and is
// treated as zero-length. DatasetBytes is the declared byte length of the
// layer's backing dataset; it feeds the reported model size in full even
// though only a bounded weight prefix feeds the fingerprint.
type Layer struct {
	Name         string
	Weights      []float32
	DatasetBytes int64
}

// ActionSpec describes the action surface of the behavior using the model.
type ActionSpec struct {
	ContinuousActions int
	DiscreteBranches  []int
}

// ObservationSpec describes one sensor feeding the model.
type ObservationSpec struct {
	SensorName      string
	Shape           []int
	ObservationType string
}

// ReportContext carries the caller-supplied metadata attached to a report.
type ReportContext struct {
	BehaviorName     string
	InferenceDevice  string // e.g. "cpu", "gpu", "burst"
	ActionSpec       ActionSpec
	ObservationSpecs []ObservationSpec
}
