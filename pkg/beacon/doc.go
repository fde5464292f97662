// Package beacon reports anonymous telemetry the first time an inference
// model is attached to an agent behavior: a deterministic model fingerprint,
// the declared weight size, and the behavior's action/observation specs.
//
// Quick start:
//
//	r, err := beacon.New(beacon.WithSink("jsonl", "events.jsonl"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	r.Report(ctx, model, beacon.ReportContext{
//	    BehaviorName:    "Walker",
//	    InferenceDevice: "cpu",
//	})
//
// Each Reporter owns its own seen set: a given model instance is reported
// at most once per Reporter, keyed by pointer identity. When telemetry is
// disabled no work is done at all, and no failure in the analytics path
// ever reaches the caller — reporting must never affect inference.
package beacon
