// Package manifest loads beacon's native model interchange format: a JSON
// header describing the model (specs plus an ordered layer table) and an
// optional sidecar file holding the raw little-endian float32 weights.
package manifest

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/crimson-sun/beacon/internal/loader"
	"github.com/crimson-sun/beacon/internal/model"
)

func init() {
	loader.Register(".json", func() loader.Loader { return &Loader{} })
}

// Version is the manifest format identifier.
const Version = "beacon.v1"

type header struct {
	Version          string                  `json:"version"`
	Name             string                  `json:"name"`
	Producer         string                  `json:"producer,omitempty"`
	ProducerVersion  string                  `json:"producer_version,omitempty"`
	WeightsFile      string                  `json:"weights_file,omitempty"`
	ActionSpec       model.ActionSpec        `json:"action_spec"`
	ObservationSpecs []model.ObservationSpec `json:"observation_specs,omitempty"`
	Layers           []layerEntry            `json:"layers"`
}

// layerEntry locates one layer's weights inside the sidecar file.
// Offset and Length are in bytes; Length must be a multiple of 4.
type layerEntry struct {
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
	Length int64  `json:"length"`
}

// Loader reads manifest files.
type Loader struct{}

// Load parses the manifest at path and, when a weights file is declared,
// slices each layer's float32 values out of it. Without a weights file the
// layers carry declared sizes only.
func (l *Loader) Load(_ context.Context, path string) (model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Model{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}

	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return model.Model{}, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	if h.Version != Version {
		return model.Model{}, fmt.Errorf("manifest: unsupported version %q (want %q)", h.Version, Version)
	}

	var payload []byte
	if h.WeightsFile != "" {
		// Weights file is relative to the manifest's directory.
		wpath := filepath.Join(filepath.Dir(path), h.WeightsFile)
		payload, err = os.ReadFile(wpath)
		if err != nil {
			return model.Model{}, fmt.Errorf("manifest: read weights %s: %w", wpath, err)
		}
	}

	m := model.Model{
		Name:             h.Name,
		Producer:         h.Producer,
		ProducerVersion:  h.ProducerVersion,
		ActionSpec:       h.ActionSpec,
		ObservationSpecs: h.ObservationSpecs,
		Layers:           make([]model.Layer, 0, len(h.Layers)),
	}

	for _, entry := range h.Layers {
		layer, err := decodeLayer(entry, payload)
		if err != nil {
			return model.Model{}, fmt.Errorf("manifest: layer %q: %w", entry.Name, err)
		}
		m.Layers = append(m.Layers, layer)
	}
	return m, nil
}

// decodeLayer builds a layer from its table entry, decoding weights from
// the payload when one is present.
func decodeLayer(entry layerEntry, payload []byte) (model.Layer, error) {
	if entry.Offset < 0 || entry.Length < 0 {
		return model.Layer{}, fmt.Errorf("negative offset or length")
	}
	if entry.Length%4 != 0 {
		return model.Layer{}, fmt.Errorf("length %d is not a multiple of 4", entry.Length)
	}

	layer := model.Layer{
		Name:         entry.Name,
		DatasetBytes: entry.Length,
	}
	if payload == nil || entry.Length == 0 {
		return layer, nil
	}
	// Subtraction form: the sum Offset+Length can wrap around MaxInt64.
	if entry.Offset > int64(len(payload)) || entry.Length > int64(len(payload))-entry.Offset {
		return model.Layer{}, fmt.Errorf("range [offset %d, length %d) exceeds weights file size %d",
			entry.Offset, entry.Length, len(payload))
	}

	raw := payload[entry.Offset : entry.Offset+entry.Length]
	weights := make([]float32, len(raw)/4)
	for i := range weights {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		weights[i] = math.Float32frombits(bits)
	}
	layer.Weights = weights
	return layer, nil
}
