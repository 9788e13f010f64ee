// Package pocketflow is a minimal directed-graph workflow engine.
//
// Units (package flow) run a prepare, execute and postprocess lifecycle and
// route to a successor picked by the action their postprocess step returns.
// A flow is itself a unit, so flows nest. Flows running concurrently can take
// turns through a handoff queue (package service/messaging).
//
// The root package wraps the engine with the ambient services: a zap logger,
// the diagnostics policy, OpenTelemetry spans, Prometheus metrics and a run
// history:
//
//	srv := pocketflow.New()
//	load := srv.NewNode(&loader{}, flow.WithRetry(3, time.Second))
//	load.AddSuccessor(srv.NewNode(&summarizer{}))
//	action, err := srv.Run(ctx, srv.NewFlow(load), shared)
//
// For more details see the individual sub-packages.
package pocketflow
