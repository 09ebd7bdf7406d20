package value

import (
	"iter"
	"math/big"
)

// Value is one node of an ITF tree. The zero Value is invalid.
type Value struct {
	big     *big.Int
	str     string
	elems   []Value
	entries []Entry
	fields  []Field
	num     int64
	kind    Kind
	flag    bool
}

// Entry is one key/value pair of a Map. Keys may be of any kind.
type Entry struct {
	Key   Value
	Value Value
}

// Field is one named member of a Record.
type Field struct {
	Name  string
	Value Value
}

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func Number(n int64) Value { return Value{kind: KindNumber, num: n} }

// BigInt copies x. A nil x is zero.
func BigInt(x *big.Int) Value {
	n := new(big.Int)
	if x != nil {
		n.Set(x)
	}
	return Value{kind: KindBigInt, big: n}
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func List(elems ...Value) Value { return Value{kind: KindList, elems: clone(elems)} }

func Tuple(elems ...Value) Value { return Value{kind: KindTuple, elems: clone(elems)} }

func Set(elems ...Value) Value { return Value{kind: KindSet, elems: clone(elems)} }

func Map(entries ...Entry) Value { return Value{kind: KindMap, entries: clone(entries)} }

func Record(fields ...Field) Value { return Value{kind: KindRecord, fields: clone(fields)} }

func Unserializable(repr string) Value { return Value{kind: KindUnserializable, str: repr} }

// F is shorthand for building Record fields.
func F(name string, v Value) Field { return Field{Name: name, Value: v} }

// E is shorthand for building Map entries.
func E(k, v Value) Entry { return Entry{Key: k, Value: v} }

func clone[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

func (v Value) AsNumber() (int64, bool) { return v.num, v.kind == KindNumber }

// AsBigInt returns a copy of the integer for Number and BigInt values.
func (v Value) AsBigInt() (*big.Int, bool) {
	switch v.kind {
	case KindNumber:
		return big.NewInt(v.num), true
	case KindBigInt:
		return new(big.Int).Set(v.big), true
	}
	return nil, false
}

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsUnserializable() (string, bool) { return v.str, v.kind == KindUnserializable }

// Len returns the element, entry or field count, or 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindList, KindTuple, KindSet:
		return len(v.elems)
	case KindMap:
		return len(v.entries)
	case KindRecord:
		return len(v.fields)
	}
	return 0
}

// Index returns the i-th element of a List, Tuple or Set.
func (v Value) Index(i int) Value {
	if !v.kind.IsSequence() || i < 0 || i >= len(v.elems) {
		return Value{}
	}
	return v.elems[i]
}

// Elems returns a copy of the elements of a List, Tuple or Set.
func (v Value) Elems() []Value {
	if !v.kind.IsSequence() {
		return nil
	}
	return clone(v.elems)
}

// All iterates the elements of a List, Tuple or Set in wire order.
func (v Value) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if !v.kind.IsSequence() {
			return
		}
		for i, e := range v.elems {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries of a Map.
func (v Value) Entries() []Entry {
	if v.kind != KindMap {
		return nil
	}
	return clone(v.entries)
}

// Fields returns a copy of the fields of a Record in wire order.
func (v Value) Fields() []Field {
	if v.kind != KindRecord {
		return nil
	}
	return clone(v.fields)
}

// Lookup returns the first Record field with the given name.
func (v Value) Lookup(name string) (Value, bool) {
	if v.kind != KindRecord {
		return Value{}, false
	}
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal reports strict structural equality: kinds must match and every
// sequence is compared in order. Number 5 and BigInt 5 are not Equal;
// use Equivalent for that.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindBool:
		return v.flag == o.flag
	case KindNumber:
		return v.num == o.num
	case KindBigInt:
		return v.big.Cmp(o.big) == 0
	case KindString, KindUnserializable:
		return v.str == o.str
	case KindList, KindTuple, KindSet:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if !v.entries[i].Key.Equal(o.entries[i].Key) || !v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != o.fields[i].Name || !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Equivalent reports whether v and o have the same canonical form.
func (v Value) Equivalent(o Value) bool {
	return Canonical(v).Equal(Canonical(o))
}

// String returns the JSON wire text of v.
func (v Value) String() string {
	if !v.IsValid() {
		return "<invalid>"
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}
