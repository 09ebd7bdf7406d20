package decoder

import (
	"reflect"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// Payload selects where a tagged variant keeps its data.
type Payload uint8

const (
	// PayloadContent keeps the data under the Layout's content key:
	// {"tag": "Circle", "value": {...}}.
	PayloadContent Payload = iota
	// PayloadInline keeps the data in the rest of the record:
	// {"tag": "Circle", "radius": 2}.
	PayloadInline
)

func (p Payload) String() string {
	if p == PayloadInline {
		return "inline"
	}
	return "content"
}

// Layout is the tagged-record convention of one sum type.
type Layout struct {
	Tag     string
	Content string
	Payload Payload
}

// DefaultLayout is {"tag": name, "value": payload}.
func DefaultLayout() Layout {
	return Layout{Tag: "tag", Content: "value", Payload: PayloadContent}
}

func (l Layout) withDefaults() Layout {
	if l.Tag == "" {
		l.Tag = "tag"
	}
	if l.Content == "" {
		l.Content = "value"
	}
	return l
}

// Variant names one alternative. Unit variants carry no data.
type Variant struct {
	Name string
	Unit bool
}

// Selection is the outcome of Select.
type Selection struct {
	Payload value.Value
	Name    string
	Index   int
	Unit    bool
}

// Select resolves v against variants:
//
//   - a String names a unit variant directly;
//   - a Record (or a Map with String keys) carries the name under
//     layout.Tag and the payload per layout.Payload;
//   - anything else is InvalidType.
//
// Payload is invalid for unit variants.
func Select(v value.Value, layout Layout, variants []Variant) (Selection, error) {
	layout = layout.withDefaults()

	switch v.Kind() {
	case value.KindString:
		name, _ := v.AsString()
		i := find(variants, name)
		if i < 0 {
			return Selection{}, errors.UnknownVariant(errors.PhaseDecode, nil, name)
		}
		if !variants[i].Unit {
			return Selection{}, errors.New(errors.PhaseDecode, errors.KindInvalidType).
				Shape("record", "string").
				Value(name).
				Detail("variant %q carries data", name).
				Build()
		}
		return Selection{Index: i, Name: name, Unit: true}, nil

	case value.KindRecord, value.KindMap:
		fields, err := taggedFields(v)
		if err != nil {
			return Selection{}, err
		}
		return selectTagged(fields, layout, variants)
	}
	return Selection{}, mismatch(v, "variant")
}

func find(variants []Variant, name string) int {
	for i, vr := range variants {
		if vr.Name == name {
			return i
		}
	}
	return -1
}

func taggedFields(v value.Value) ([]value.Field, error) {
	if v.Kind() == value.KindRecord {
		return v.Fields(), nil
	}
	entries := v.Entries()
	fields := make([]value.Field, len(entries))
	for i, e := range entries {
		name, ok := e.Key.AsString()
		if !ok {
			return nil, At(mismatch(e.Key, "string"), keySeg(e.Key))
		}
		fields[i] = value.Field{Name: name, Value: e.Value}
	}
	return fields, nil
}

func selectTagged(fields []value.Field, layout Layout, variants []Variant) (Selection, error) {
	tag, found, err := Lookup(fields, TagKey(layout.Tag).Opt())
	if err != nil {
		return Selection{}, err
	}
	if !found {
		return Selection{}, errors.UnknownTag(errors.PhaseDecode, nil, layout.Tag)
	}
	name, ok := tag.Value.AsString()
	if !ok {
		return Selection{}, At(mismatch(tag.Value, "string"), layout.Tag)
	}
	i := find(variants, name)
	if i < 0 {
		return Selection{}, errors.UnknownVariant(errors.PhaseDecode, nil, name)
	}
	sel := Selection{Index: i, Name: name, Unit: variants[i].Unit}

	if layout.Payload == PayloadInline {
		if !sel.Unit {
			rest := make([]value.Field, 0, len(fields)-1)
			for _, f := range fields {
				if f.Name != layout.Tag {
					rest = append(rest, f)
				}
			}
			sel.Payload = value.Record(rest...)
		}
		return sel, nil
	}

	content, found, err := Lookup(fields, TagKey(layout.Content).Opt())
	if err != nil {
		return Selection{}, err
	}
	if sel.Unit {
		if found && !emptyUnit(content.Value) {
			return Selection{}, At(errors.New(errors.PhaseDecode, errors.KindInvalidType).
				Shape("unit", content.Value.Kind().String()).
				Detail("variant %q carries no data", name).
				Build(), layout.Content)
		}
		return sel, nil
	}
	if !found {
		return Selection{}, errors.FieldNotFound(errors.PhaseDecode, nil, layout.Content)
	}
	sel.Payload = content.Value
	return sel, nil
}

func emptyUnit(v value.Value) bool {
	switch v.Kind() {
	case value.KindRecord, value.KindList, value.KindTuple:
		return v.Len() == 0
	}
	return false
}

// VariantSpec binds a variant name to its Go type.
type VariantSpec struct {
	Type reflect.Type
	Variant
}

// Case declares a variant whose payload decodes into T.
func Case[T any](name string) VariantSpec {
	return VariantSpec{Type: reflect.TypeFor[T](), Variant: Variant{Name: name}}
}

// UnitCase declares a variant without payload; it decodes to the zero T.
func UnitCase[T any](name string) VariantSpec {
	return VariantSpec{Type: reflect.TypeFor[T](), Variant: Variant{Name: name, Unit: true}}
}

// SumSpec registers an interface type as a sum over its variant types.
type SumSpec struct {
	Type     reflect.Type
	Layout   Layout
	Variants []Variant
	types    []reflect.Type
}

// Sum declares the interface I as a sum type.
func Sum[I any](layout Layout, cases ...VariantSpec) SumSpec {
	spec := SumSpec{
		Type:     reflect.TypeFor[I](),
		Layout:   layout.withDefaults(),
		Variants: make([]Variant, len(cases)),
		types:    make([]reflect.Type, len(cases)),
	}
	for i, c := range cases {
		spec.Variants[i] = c.Variant
		spec.types[i] = c.Type
	}
	return spec
}

// Select resolves v against the variants of s.
func (s SumSpec) Select(v value.Value) (Selection, error) {
	return Select(v, s.Layout, s.Variants)
}

// EnumCase binds a wire name to one value of an enum type.
type EnumCase[T any] struct {
	Value T
	Name  string
}

// Const declares one enum value.
func Const[T any](name string, v T) EnumCase[T] {
	return EnumCase[T]{Name: name, Value: v}
}

// EnumSpec registers a named int or string type as a set of unit variants.
type EnumSpec struct {
	Type     reflect.Type
	Layout   Layout
	Variants []Variant
	values   []reflect.Value
}

// Enum declares T with the given wire names. Integer kinds take the
// ordinal of the name, string kinds take the name itself.
func Enum[T any](names ...string) EnumSpec {
	t := reflect.TypeFor[T]()
	spec := EnumSpec{Type: t, Layout: DefaultLayout(), Variants: make([]Variant, len(names))}
	values := make([]reflect.Value, len(names))
	for i, name := range names {
		spec.Variants[i] = Variant{Name: name, Unit: true}
		rv := reflect.New(t).Elem()
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			rv.SetInt(int64(i))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv.SetUint(uint64(i))
		case reflect.String:
			rv.SetString(name)
		default:
			return spec
		}
		values[i] = rv
	}
	spec.values = values
	return spec
}

// EnumOf declares T with explicit name/value pairs.
func EnumOf[T any](cases ...EnumCase[T]) EnumSpec {
	spec := EnumSpec{
		Type:     reflect.TypeFor[T](),
		Layout:   DefaultLayout(),
		Variants: make([]Variant, len(cases)),
		values:   make([]reflect.Value, len(cases)),
	}
	for i, c := range cases {
		spec.Variants[i] = Variant{Name: c.Name, Unit: true}
		spec.values[i] = reflect.ValueOf(c.Value)
	}
	return spec
}

// UnitName resolves v against an enum and returns the index of the case.
func UnitName(v value.Value, spec EnumSpec) (int, error) {
	sel, err := Select(v, spec.Layout, spec.Variants)
	if err != nil {
		return 0, err
	}
	return sel.Index, nil
}
