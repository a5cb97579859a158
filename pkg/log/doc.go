// Package log records a machine-readable trace of controller interactions.
//
// It is separate from operational logging (slog): the trace captures every
// status fetch and every setter invocation a controller performs, so a
// session can be replayed or inspected later.
//
// # Basic Usage
//
//	// For development: trace to console via slog
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// For later analysis: write to a CBOR file
//	cfg.Trace, _ = log.NewFileLogger("/tmp/vacuum.trace")
//
//	// Both
//	cfg.Trace = log.NewMultiLogger(console, file)
//
// # Event Types
//
//   - Fetch: a status snapshot was obtained (FetchEvent)
//   - Setter: an actuator was invoked through a descriptor (SetterEvent)
//   - Error: a fetch or setter failed (ErrorEventData)
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with integer keys.
// Reader iterates them with optional filtering.
package log
