package model

// Model is the internal representation of a loaded inference model:
// an ordered sequence of named layers plus the metadata loaders can
// recover without executing the model.
type Model struct {
	Name             string
	Producer         string // tool that produced the model file (optional)
	ProducerVersion  string // producer version string (optional)
	ActionSpec       ActionSpec
	ObservationSpecs []ObservationSpec
	Layers           []Layer
}

// Layer is one named weight tensor. Weights may be nil when a loader can
// only see the layer table, not the values; DatasetBytes always carries the
// declared byte length of the layer's backing dataset.
type Layer struct {
	Name         string
	Weights      []float32
	DatasetBytes int64
}

// ActionSpec describes the action surface of the behavior the model drives.
type ActionSpec struct {
	ContinuousActions int   `json:"continuous_actions"`
	DiscreteBranches  []int `json:"discrete_branches,omitempty"`
}

// ObservationSpec describes one sensor feeding the model.
type ObservationSpec struct {
	SensorName      string `json:"sensor_name"`
	Shape           []int  `json:"shape"`
	ObservationType string `json:"observation_type,omitempty"`
}
