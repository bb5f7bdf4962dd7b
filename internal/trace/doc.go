// Package trace provides the tracing subsystem of the lumen compiler.
//
// Tracing follows the build pipeline: driver operations, passes of the class
// lowering core (sort, emit, initializer, exports) and per-unit work.
//
// # Usage
//
//	lumen build --trace=- --trace-level=detail lumen.toml
//
// # Implementations
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when the command exits
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: unit-level events
//   - LevelDebug: everything including per-class events
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "sort", parentID)
//	defer span.End("")
package trace
