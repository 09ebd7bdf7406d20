// Package value holds the decoded-but-untyped form of ITF data.
//
// A Value is an immutable tagged tree mirroring the ITF wire encoding:
//
//	true / false               Bool
//	42                         Number (int64)
//	{"#bigint": "-99"}         BigInt
//	"text"                     String
//	[1, 2]                     List
//	{"#tup": [1, "a"]}         Tuple
//	{"#set": [1, 2]}           Set
//	{"#map": [[k, v], ...]}    Map
//	{"#unserializable": "…"}   Unserializable
//	{"field": ...}             Record
//
// A single-key object whose key is one of the markers above is always the
// wrapper; a payload of the wrong shape is a parse error, never a Record.
// Integer literals outside int64 are lifted to BigInt.
//
// Parse and FromTree build Values, MarshalJSON and ToTree produce the wire
// tree again. MarshalCBOR encodes the same tree with Core Deterministic
// Encoding, which Canonical and Fingerprint build on.
package value
