package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// mismatch reports v reaching a target that expected another shape.
// Unserializable values get their own kind.
func mismatch(v value.Value, expected string) error {
	if repr, ok := v.AsUnserializable(); ok {
		return errors.UnsupportedType(errors.PhaseDecode, nil, "", repr)
	}
	return errors.InvalidType(errors.PhaseDecode, nil, expected, v.Kind().String())
}

// At prefixes the path of a decode error with seg.
func At(err error, seg ...string) error {
	return errors.Prefix(err, seg...)
}

// Customf builds a validation error for use in DecodeITF methods.
func Customf(format string, args ...any) error {
	return errors.Custom(errors.PhaseDecode, nil, fmt.Sprintf(format, args...))
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// keySeg is the path segment of a map entry: the raw text for string keys,
// the JSON wire text otherwise.
func keySeg(k value.Value) string {
	if s, ok := k.AsString(); ok {
		return "[" + s + "]"
	}
	return "[" + k.String() + "]"
}

// Fields returns the fields of a Record.
func Fields(v value.Value) ([]value.Field, error) {
	if v.Kind() != value.KindRecord {
		return nil, mismatch(v, "record")
	}
	return v.Fields(), nil
}

// Elems returns the elements of a List, Tuple or Set. The three are
// interchangeable for positional targets.
func Elems(v value.Value) ([]value.Value, error) {
	if !v.Kind().IsSequence() {
		return nil, mismatch(v, "sequence")
	}
	return v.Elems(), nil
}

// TupleElems returns exactly n positional elements.
func TupleElems(v value.Value, n int) ([]value.Value, error) {
	elems, err := Elems(v)
	if err != nil {
		return nil, err
	}
	if len(elems) != n {
		return nil, errors.Arity(errors.PhaseDecode, nil, n, len(elems))
	}
	return elems, nil
}

// Entries returns the entries of a Map, or the fields of a Record as
// entries with String keys.
func Entries(v value.Value) ([]value.Entry, error) {
	switch v.Kind() {
	case value.KindMap:
		return v.Entries(), nil
	case value.KindRecord:
		fields := v.Fields()
		out := make([]value.Entry, len(fields))
		for i, f := range fields {
			out[i] = value.Entry{Key: value.String(f.Name), Value: f.Value}
		}
		return out, nil
	}
	return nil, mismatch(v, "map")
}

// Key describes how a struct field is found in a Record.
type Key struct {
	Name     string
	Snake    string
	Tagged   bool
	Optional bool
}

// FieldKey matches an untagged field: the Go name exactly, then
// case-insensitively, then its snake_case form.
func FieldKey(goName string) Key {
	return Key{Name: goName, Snake: SnakeCase(goName)}
}

// TagKey matches the wire name from an itf tag exactly.
func TagKey(name string) Key {
	return Key{Name: name, Tagged: true}
}

// Opt marks the field as optional: a missing field leaves the zero value.
func (k Key) Opt() Key {
	k.Optional = true
	return k
}

// ParseTag derives the Key of a struct field from its Go name and itf tag.
// skip is true for fields tagged "-".
func ParseTag(goName, tag string) (key Key, skip bool) {
	if tag == "-" {
		return Key{}, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name != "" {
		key = TagKey(name)
	} else {
		key = FieldKey(goName)
	}
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "optional" {
			key.Optional = true
		}
	}
	return key, false
}

// Lookup finds the field described by key. A name matched more than once
// is a DuplicateField error; a missing required field is FieldNotFound.
func Lookup(fields []value.Field, key Key) (value.Field, bool, error) {
	f, n := match(fields, func(name string) bool { return name == key.Name })
	if n == 0 && !key.Tagged {
		f, n = match(fields, func(name string) bool { return strings.EqualFold(name, key.Name) })
		if n == 0 && key.Snake != "" && key.Snake != key.Name {
			f, n = match(fields, func(name string) bool { return name == key.Snake })
		}
	}

	switch {
	case n > 1:
		return value.Field{}, false, errors.DuplicateField(errors.PhaseDecode, nil, f.Name)
	case n == 1:
		return f, true, nil
	case key.Optional:
		return value.Field{}, false, nil
	}
	return value.Field{}, false, errors.FieldNotFound(errors.PhaseDecode, nil, key.Name)
}

func match(fields []value.Field, pred func(string) bool) (value.Field, int) {
	var found value.Field
	n := 0
	for _, f := range fields {
		if pred(f.Name) {
			if n == 0 {
				found = f
			}
			n++
		}
	}
	return found, n
}

// SnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: BankOfBoat -> bank_of_boat, HTTPServer -> http_server.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if isUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && isLower(runes[i+1])
				if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
