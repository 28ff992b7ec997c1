// Package pipeline coordinates background-removal requests against a single
// segmentation engine instance. It is structured into small files by concern:
//
//   - pipeline.go: core Pipeline type, constructors, Ready.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: request/result types and lifecycle states.
//   - errors.go: error taxonomy and predicates (IsValidation, IsTooBusy, ...).
//   - validate.go: upload validation gate (metadata checks only).
//   - admission.go: bounded FIFO admission into the worker pool.
//   - process.go: unit of work (engine invoke, decode, alpha, re-encode).
//   - drain.go: graceful drain and engine release on shutdown.
//   - engine.go: Adapter/Session interfaces for the model runtime.
//   - events.go: lifecycle event publishing.
//   - status.go: status reporting.
//
// Concurrency discipline: the pool admits at most Workers units at once and
// queues the rest FIFO. The engine itself is treated as non-reentrant; every
// invocation is additionally serialized through a capacity-1 channel, so at
// most one unit is inside the engine at any instant while decode/encode work
// proceeds in parallel on the remaining slots.
//
// Engine runtimes:
//
//   - ONNX Runtime (u2net): enabled with `-tags=onnx`, file engine_onnx.go.
//     A stub compiles when the tag is not set: engine_onnx_stub.go.
package pipeline
