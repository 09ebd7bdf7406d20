package trace

import (
	"maps"
	"slices"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// Encode writes t back to ITF JSON. Well-known keys come first in their
// usual order; other metadata keys follow sorted by name.
func Encode(t *Trace[value.Value]) ([]byte, error) {
	v, err := ToValue(t)
	if err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}

// ToValue returns the top-level Record of t.
func ToValue(t *Trace[value.Value]) (value.Value, error) {
	meta, err := metaValue(t.Meta)
	if err != nil {
		return value.Value{}, err
	}
	fields := []value.Field{value.F(keyMeta, meta)}
	if t.Params != nil {
		fields = append(fields, value.F(keyParams, stringList(t.Params)))
	}
	if t.Vars != nil {
		fields = append(fields, value.F(keyVars, stringList(t.Vars)))
	}
	if t.Loop != nil {
		fields = append(fields, value.F(keyLoop, uintValue(*t.Loop)))
	}

	states := make([]value.Value, len(t.States))
	for i, st := range t.States {
		sv, err := stateValue(st)
		if err != nil {
			return value.Value{}, errors.Prefix(err, keyStates, indexSeg(i))
		}
		states[i] = sv
	}
	fields = append(fields, value.F(keyStates, value.List(states...)))
	return value.Record(fields...), nil
}

func metaValue(m Meta) (value.Value, error) {
	var fields []value.Field
	for _, kv := range []struct{ key, val string }{
		{keyFormat, m.Format},
		{keyFormatDescription, m.FormatDescription},
		{keySource, m.Source},
		{keyDescription, m.Description},
	} {
		if kv.val != "" {
			fields = append(fields, value.F(kv.key, value.String(kv.val)))
		}
	}
	if m.VarTypes != nil {
		types := make([]value.Field, 0, len(m.VarTypes))
		for _, name := range slices.Sorted(maps.Keys(m.VarTypes)) {
			types = append(types, value.F(name, value.String(m.VarTypes[name])))
		}
		fields = append(fields, value.F(keyVarTypes, value.Record(types...)))
	}
	if m.Timestamp != nil {
		fields = append(fields, value.F(keyTimestamp, uintValue(*m.Timestamp)))
	}
	other, err := otherFields(m.Other)
	if err != nil {
		return value.Value{}, errors.Prefix(err, keyMeta)
	}
	return value.Record(append(fields, other...)...), nil
}

func stateValue(st State[value.Value]) (value.Value, error) {
	if st.Value.Kind() != value.KindRecord {
		return value.Value{}, errors.Unsupported(errors.PhaseParse, "state value must be a record, found "+st.Value.Kind().String())
	}
	var meta []value.Field
	if st.Meta.Index != nil {
		meta = append(meta, value.F(keyIndex, uintValue(*st.Meta.Index)))
	}
	other, err := otherFields(st.Meta.Other)
	if err != nil {
		return value.Value{}, errors.Prefix(err, keyMeta)
	}
	meta = append(meta, other...)

	fields := st.Value.Fields()
	if len(meta) > 0 {
		fields = append([]value.Field{value.F(keyMeta, value.Record(meta...))}, fields...)
	}
	return value.Record(fields...), nil
}

func otherFields(other map[string]any) ([]value.Field, error) {
	fields := make([]value.Field, 0, len(other))
	for _, name := range slices.Sorted(maps.Keys(other)) {
		v, err := value.FromTree(other[name])
		if err != nil {
			return nil, errors.Prefix(err, name)
		}
		fields = append(fields, value.F(name, v))
	}
	return fields, nil
}

func stringList(ss []string) value.Value {
	elems := make([]value.Value, len(ss))
	for i, s := range ss {
		elems[i] = value.String(s)
	}
	return value.List(elems...)
}

func uintValue(n uint64) value.Value {
	v, _ := value.FromTree(n)
	return v
}
