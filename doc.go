// Package itf decodes Informal Trace Format (ITF) traces into typed Go
// values.
//
// ITF is the JSON trace format of the Apalache and Quint model checkers. A
// trace is a list of states; each state binds the model's variables
// to values. JSON covers booleans, strings, arrays and records; ITF adds
// wrappers for the rest:
//
//	{"#bigint": "-123"}            arbitrary-precision integer
//	{"#tup": [a, b]}               tuple
//	{"#set": [a, b]}               set
//	{"#map": [[k, v], ...]}        map with keys of any kind
//	{"#unserializable": "..."}     value the checker could not encode
//
// # Architecture Overview
//
//	itf/                 Root package with the one-call entry points
//	├── value/           Immutable ITF values, JSON and CBOR codecs, fingerprints
//	├── bigint/          Text and sign/limb forms of big integers
//	├── decoder/         Reflection decode engine, shape helpers, sums and enums
//	├── codegen/         Static decoder generator behind cmd/itfgen
//	├── trace/           Trace and state assembly, metadata
//	├── runner/          Replays a trace against an implementation
//	└── errors/          Structured error types with value paths
//
// # Quick Start
//
// Decode a trace into a state struct:
//
//	type State struct {
//	    BankOfBoat  string                         `itf:"bank_of_boat"`
//	    WhoIsOnBank map[string]map[string]struct{} `itf:"who_is_on_bank"`
//	}
//
//	tr, err := itf.TraceFromText[State](data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, st := range tr.States {
//	    fmt.Println(st.Value.BankOfBoat)
//	}
//
// # Decoding Rules
//
// Go types map onto ITF shapes:
//
//   - bool, integers of every width, string, []byte, decoder.Char
//   - *big.Int, big.Int and bigint.Limbs from Numbers, #bigint and [sign, [limbs]]
//   - slices and arrays from lists, tuples and sets alike
//   - map[K]struct{} as sets, map[K]V from #map or records
//   - structs from records, matched by itf tag, Go name or snake_case name
//   - decoder.Tuple2..4 and structs starting with decoder.TupleLayout from tuples
//   - decoder.Option and decoder.Result and registered sums and enums from
//     tagged records
//   - value.Value and any keep the raw value
//
// Out-of-range integers, missing fields, unknown variants and shape
// mismatches are reported as *errors.Error with the path of the offending
// value, such as states[2].bank_of_boat.
//
// # Generated Decoders
//
// cmd/itfgen emits static decoders for types marked with //itf: directives.
// Generated code uses the same helpers as the reflection engine and accepts
// exactly the same inputs. See package codegen.
package itf
