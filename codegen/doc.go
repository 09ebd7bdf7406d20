// Package codegen generates static ITF decoders for the types of a Go
// package.
//
// Types opt in through directives in their doc comments:
//
//	//itf:decode                       struct or tuple struct
//	//itf:enum                         named integer or string type
//	//itf:sum tag=<key> content=<key>  interface type
//	//itf:sum tag=<key> inline         interface type, payload inline
//	//itf:name <Name>                  wire name of a sum variant type
//
// Enum cases are the package constants of the enum type in declaration
// order. Integer enums use the constant name on the wire, string enums the
// constant value. Sum variants are the package types that implement the
// interface, directly or through a pointer, in declaration order; a
// variant with no fields is a unit variant.
//
// For each struct the generator emits a DecodeITF method that uses the
// shape helpers and combinators of package decoder, so generated code
// accepts and rejects exactly what the reflection engine does. Arrays,
// named containers and the Option, Result and TupleN helpers of package
// decoder are composed statically from their element decoders.
//
// A sum interface declared in another package is decoded through the
// Decode<Name> function generated there. Structs and tuples without a
// directive fall back to decoder.Reflect, which only knows the sums
// registered with the Decoder; a fallback that would reach a sum is
// reported at generation time instead.
package codegen
