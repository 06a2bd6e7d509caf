// Package errors provides structured error types for the SPIR-V type layer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the opcode and result id of the offending entry, an optional
// field path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindInvalidField).
//		Op("OpTypeVector").
//		ID(7).
//		Path("count").
//		Detail("component count %d not in {2,3,4,8,16}", 5).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MalformedStream(errors.PhaseDecode, "stream ends inside instruction")
//	err := errors.UnresolvedReference(errors.PhaseValidate, "OpTypePointer", 4, "element", 9)
//
// All errors implement the standard error interface and support errors.Is/As.
// KindOf and IsKind look through wrapped and joined errors.
package errors
