// Package diag defines the diagnostic model shared by the loading, ordering and
// lowering phases.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced while
//     loading unit manifests, ordering namespaces and lowering class declarations.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with stable string form.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary span: the canonical source.Span pointing to the issue.
//   - Notes: optional secondary spans/messages, e.g. every class on a cycle.
//
// Lowering faults (class cycles, alias lifecycle violations, premature export
// requests) are internal-consistency failures: they are reported with SevError
// and the affected unit produces no output.
package diag
