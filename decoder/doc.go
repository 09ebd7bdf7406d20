// Package decoder turns ITF values into typed Go values.
//
// Two strategies share this package. The reflection engine compiles a
// plan per Go type on first use and caches it:
//
//	d := decoder.New(decoder.Options{
//		Sums:  []decoder.SumSpec{decoder.Sum[Shape](decoder.DefaultLayout(), decoder.Case[Circle]("Circle"))},
//		Enums: []decoder.EnumSpec{decoder.Enum[Dir]("N", "W", "E", "S")},
//	})
//	st, err := decoder.As[State](d, v)
//
// Generated code (see cmd/itfgen) implements Unmarshaler with the same
// leaf decoders (Bool, Int, Str, BigInt, ...), shape helpers (Fields,
// Lookup, Elems, TupleElems, Entries, Select) and combinators (SliceOf,
// MapOf, PtrOf, Via, Reflect) the engine runs on, so both accept and
// reject exactly the same inputs. The Rules table lists which Go shapes
// accept which wire kinds.
//
// # Sum types
//
// Go has no sum types. A sum is an interface plus one Go type per
// variant, registered with Sum. Variants appear on the wire as a bare
// string (unit variants only) or as a tagged record; the Layout of each
// sum fixes the tag key, the content key and whether the payload sits
// under the content key or inline in the record.
//
// # Errors
//
// Failures are *errors.Error values in PhaseDecode, or PhaseCompile when
// a Go type has no decode rule. Paths name the failing position, as in
// states[2].bank_of_boat.
package decoder
