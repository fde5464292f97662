// Package onnx probes .onnx files for telemetry metadata through the ONNX
// Runtime's model inspection API. The model is never executed: tensor
// names and shapes are enough to derive observation/action specs and a
// layer table, so the resulting layers carry declared sizes only.
package onnx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/beacon/internal/loader"
	"github.com/crimson-sun/beacon/internal/model"
)

func init() {
	loader.Register(".onnx", func() loader.Loader { return &Loader{} })
}

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// Loader reads ONNX model metadata.
type Loader struct{}

// Load inspects the model at path. The ONNX Runtime shared library is
// resolved from BEACON_ORT_LIB, falling back to libonnxruntime.so next to
// the model file.
func (l *Loader) Load(_ context.Context, path string) (model.Model, error) {
	libPath := os.Getenv("BEACON_ORT_LIB")
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(path), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return model.Model{}, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return model.Model{}, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(outputs) == 0 {
		return model.Model{}, fmt.Errorf("onnx: model has no outputs")
	}

	m := model.Model{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Producer: "onnxruntime",
	}

	for _, inp := range inputs {
		m.ObservationSpecs = append(m.ObservationSpecs, model.ObservationSpec{
			SensorName: inp.Name,
			Shape:      toIntShape(inp.Dimensions),
		})
		m.Layers = append(m.Layers, tensorLayer(inp))
	}
	for _, out := range outputs {
		m.Layers = append(m.Layers, tensorLayer(out))
	}

	// The first output tensor's trailing dimension is the action width.
	dims := outputs[0].Dimensions
	if n := len(dims); n > 0 && dims[n-1] > 0 {
		m.ActionSpec.ContinuousActions = int(dims[n-1])
	}
	return m, nil
}

// tensorLayer maps a tensor to a weightless layer entry whose declared size
// is the tensor's element count times 4 bytes. Dynamic dimensions (-1)
// contribute nothing.
func tensorLayer(info ort.InputOutputInfo) model.Layer {
	elements := int64(1)
	known := false
	for _, d := range info.Dimensions {
		if d > 0 {
			elements *= d
			known = true
		}
	}
	if !known {
		elements = 0
	}
	return model.Layer{
		Name:         info.Name,
		DatasetBytes: elements * 4,
	}
}

func toIntShape(dims ort.Shape) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	return shape
}
