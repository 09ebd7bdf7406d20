package decoder

import (
	"github.com/wippyai/itf/value"
)

// Rule is one row of the dispatch table. The reflection compiler and the
// code generator both classify Go types into these rules, and the leaf
// and combinator functions named by Helper implement them for both.
type Rule uint8

const (
	RuleUnsupported Rule = iota
	RuleBool
	RuleInt
	RuleUint
	RuleBigInt
	RuleLimbs
	RuleString
	RuleChar
	RuleBytes
	RuleOption
	RuleSeq
	RuleArray
	RuleSet
	RuleMap
	RuleStruct
	RuleTuple
	RuleSum
	RuleEnum
	RuleUnmarshaler
	RuleIgnore
	RuleValue
	RuleAny
)

// RuleInfo describes one rule.
type RuleInfo struct {
	Name    string
	Helper  string
	Accepts []value.Kind
}

var (
	integers  = []value.Kind{value.KindNumber, value.KindBigInt}
	sequences = []value.Kind{value.KindList, value.KindTuple, value.KindSet}
	anything  = []value.Kind{
		value.KindBool, value.KindNumber, value.KindBigInt, value.KindString,
		value.KindList, value.KindTuple, value.KindSet, value.KindMap,
		value.KindRecord, value.KindUnserializable,
	}
)

// Rules is the dispatch table. Accepts lists the Value kinds a rule can
// decode from; for Sum, Enum and Unmarshaler it is the union of what the
// target may accept.
var Rules = [...]RuleInfo{
	RuleUnsupported: {Name: "unsupported"},
	RuleBool:        {Name: "bool", Helper: "Bool", Accepts: []value.Kind{value.KindBool}},
	RuleInt:         {Name: "int", Helper: "Int", Accepts: integers},
	RuleUint:        {Name: "uint", Helper: "Uint", Accepts: integers},
	RuleBigInt:      {Name: "bigint", Helper: "BigInt", Accepts: []value.Kind{value.KindNumber, value.KindBigInt, value.KindList, value.KindTuple}},
	RuleLimbs:       {Name: "limbs", Helper: "LimbsOf", Accepts: []value.Kind{value.KindNumber, value.KindBigInt, value.KindList, value.KindTuple}},
	RuleString:      {Name: "string", Helper: "Str", Accepts: []value.Kind{value.KindString}},
	RuleChar:        {Name: "char", Helper: "Rune", Accepts: []value.Kind{value.KindString}},
	RuleBytes:       {Name: "bytes", Helper: "Bytes", Accepts: []value.Kind{value.KindString, value.KindList}},
	RuleOption:      {Name: "option", Helper: "PtrOf", Accepts: anything},
	RuleSeq:         {Name: "seq", Helper: "SliceOf", Accepts: sequences},
	RuleArray:       {Name: "array", Helper: "ArrayOf", Accepts: sequences},
	RuleSet:         {Name: "set", Helper: "SetOf", Accepts: sequences},
	RuleMap:         {Name: "map", Helper: "MapOf", Accepts: []value.Kind{value.KindMap, value.KindRecord}},
	RuleStruct:      {Name: "struct", Helper: "Fields", Accepts: []value.Kind{value.KindRecord}},
	RuleTuple:       {Name: "tuple", Helper: "TupleElems", Accepts: sequences},
	RuleSum:         {Name: "sum", Helper: "Select", Accepts: []value.Kind{value.KindString, value.KindRecord, value.KindMap}},
	RuleEnum:        {Name: "enum", Helper: "UnitName", Accepts: []value.Kind{value.KindString, value.KindRecord, value.KindMap}},
	RuleUnmarshaler: {Name: "unmarshaler", Helper: "Via", Accepts: anything},
	RuleIgnore:      {Name: "ignore", Accepts: anything},
	RuleValue:       {Name: "value", Helper: "Raw", Accepts: anything},
	RuleAny:         {Name: "any", Helper: "Any", Accepts: anything},
}

func (r Rule) String() string {
	if int(r) < len(Rules) {
		return Rules[r].Name
	}
	return "unknown"
}

// Info returns the table row of r.
func (r Rule) Info() RuleInfo {
	if int(r) < len(Rules) {
		return Rules[r]
	}
	return Rules[RuleUnsupported]
}

// Accepts reports whether r can decode a Value of kind k.
func (r Rule) Accepts(k value.Kind) bool {
	for _, a := range r.Info().Accepts {
		if a == k {
			return true
		}
	}
	return false
}
