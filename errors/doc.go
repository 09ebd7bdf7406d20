// Package errors provides structured error types for the ITF decoder.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: value path, Go type name, expected and
// actual wire shapes, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidType).
//		Path("who_is_on_bank", "[E]").
//		GoType("map[string]struct {}").
//		Shape("set", "record").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.FieldNotFound(errors.PhaseDecode, path, "bank_of_boat")
//	err := errors.Range(errors.PhaseDecode, path, "9223372036854775808", "int64")
//
// Parse errors (PhaseParse, KindMalformed) describe wire text that is not a
// well-formed ITF document and are never produced by decoding.
//
// StepError attributes an error to one state of a trace, both while decoding
// a trace and while replaying it.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
