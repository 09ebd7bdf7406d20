package value

// Kind identifies the wire shape a Value was decoded from.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindNumber
	KindBigInt
	KindString
	KindList
	KindTuple
	KindSet
	KindMap
	KindRecord
	KindUnserializable
)

var kindNames = [...]string{
	KindInvalid:        "invalid",
	KindBool:           "bool",
	KindNumber:         "number",
	KindBigInt:         "bigint",
	KindString:         "string",
	KindList:           "list",
	KindTuple:          "tuple",
	KindSet:            "set",
	KindMap:            "map",
	KindRecord:         "record",
	KindUnserializable: "unserializable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsSequence reports whether the kind holds positional elements.
func (k Kind) IsSequence() bool {
	return k == KindList || k == KindTuple || k == KindSet
}

// IsInteger reports whether the kind holds an integer.
func (k Kind) IsInteger() bool {
	return k == KindNumber || k == KindBigInt
}
