package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/crimson-sun/beacon/internal/config"
	"github.com/crimson-sun/beacon/internal/loader"
	"github.com/crimson-sun/beacon/internal/logging"
	"github.com/crimson-sun/beacon/internal/model"
	"github.com/crimson-sun/beacon/pkg/beacon"

	// Register loader implementations.
	_ "github.com/crimson-sun/beacon/internal/loader/manifest"
	_ "github.com/crimson-sun/beacon/internal/loader/onnx"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file (env vars override)")
		behavior   = flag.String("behavior", "", "behavior name attached to the model (default: model name)")
		device     = flag.String("device", "cpu", "inference device label")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: beacon [flags] <model-file>\n\nsupported model extensions: %s\n\nflags:\n",
			strings.Join(loader.Extensions(), ", "))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	modelPath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logging.Init(cfg.Sink.Name == "stdout", logging.ParseLevel(cfg.Log.Level))

	// Set up graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Resolve loader by file extension.
	ld, err := loader.ForPath(modelPath)
	if err != nil {
		log.Fatalf("failed to resolve loader: %v", err)
	}
	loaded, err := ld.Load(ctx, modelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	slog.Info("model loaded",
		"path", modelPath,
		"name", loaded.Name,
		"layers", len(loaded.Layers),
	)

	opts := []beacon.Option{
		beacon.WithSink(cfg.Sink.Name, cfg.Sink.Target),
		beacon.WithSinkHeaders(cfg.Sink.Headers),
		beacon.WithEnabled(func() bool { return cfg.Enabled }),
		beacon.WithEventKind(cfg.Event.Name),
		beacon.WithEventBudget(cfg.Event.MaxPerHour, cfg.Event.MaxElements),
		beacon.WithVendorKey(cfg.Event.VendorKey),
	}
	if cfg.Sink.Async {
		opts = append(opts, beacon.WithAsyncDelivery())
	}
	r, err := beacon.New(opts...)
	if err != nil {
		log.Fatalf("failed to create reporter: %v", err)
	}
	defer r.Close()

	name := *behavior
	if name == "" {
		name = loaded.Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))
	}

	result := r.Report(ctx, publicModel(loaded), beacon.ReportContext{
		BehaviorName:     name,
		InferenceDevice:  *device,
		ActionSpec:       publicActionSpec(loaded.ActionSpec),
		ObservationSpecs: publicObservationSpecs(loaded.ObservationSpecs),
	})

	slog.Info("report complete", "behavior", name, "result", result.String())
	fmt.Println(result)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load(), nil
	}
	return config.LoadFile(path)
}

func publicModel(m model.Model) *beacon.Model {
	out := &beacon.Model{
		Name:            m.Name,
		Producer:        m.Producer,
		ProducerVersion: m.ProducerVersion,
		Layers:          make([]beacon.Layer, len(m.Layers)),
	}
	for i, l := range m.Layers {
		out.Layers[i] = beacon.Layer{
			Name:         l.Name,
			Weights:      l.Weights,
			DatasetBytes: l.DatasetBytes,
		}
	}
	return out
}

func publicActionSpec(s model.ActionSpec) beacon.ActionSpec {
	return beacon.ActionSpec{
		ContinuousActions: s.ContinuousActions,
		DiscreteBranches:  s.DiscreteBranches,
	}
}

func publicObservationSpecs(specs []model.ObservationSpec) []beacon.ObservationSpec {
	out := make([]beacon.ObservationSpec, len(specs))
	for i, s := range specs {
		out[i] = beacon.ObservationSpec{
			SensorName:      s.SensorName,
			Shape:           s.Shape,
			ObservationType: s.ObservationType,
		}
	}
	return out
}
