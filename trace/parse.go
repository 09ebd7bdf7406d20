package trace

import (
	"strconv"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// Top-level and metadata keys of an ITF document.
const (
	keyMeta   = "#meta"
	keyParams = "params"
	keyVars   = "vars"
	keyLoop   = "loop"
	keyStates = "states"

	keyFormat            = "format"
	keyFormatDescription = "format-description"
	keySource            = "source"
	keyDescription       = "description"
	keyVarTypes          = "varTypes"
	keyTimestamp         = "timestamp"
	keyIndex             = "index"
)

// Parse reads an ITF trace from JSON text. Comments and trailing commas
// are accepted.
func Parse(text []byte) (*Trace[value.Value], error) {
	v, err := value.Parse(jsonc.ToJSON(text))
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// FromTree reads an ITF trace from a generic JSON tree such as the
// result of json.Unmarshal into any.
func FromTree(tree any) (*Trace[value.Value], error) {
	v, err := value.FromTree(tree)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// FromValue reads an ITF trace from its parsed top-level Record.
func FromValue(v value.Value) (*Trace[value.Value], error) {
	if v.Kind() != value.KindRecord {
		return nil, malformed(nil, "trace must be an object, found %s", v.Kind())
	}

	t := &Trace[value.Value]{}
	var states value.Value
	for _, f := range v.Fields() {
		path := []string{f.Name}
		var err error
		switch f.Name {
		case keyMeta:
			t.Meta, err = parseMeta(f.Value, path)
		case keyParams:
			t.Params, err = stringsOf(f.Value, path)
		case keyVars:
			t.Vars, err = stringsOf(f.Value, path)
		case keyLoop:
			var n uint64
			n, err = uintOf(f.Value, path)
			t.Loop = &n
		case keyStates:
			states = f.Value
		}
		if err != nil {
			return nil, err
		}
	}

	if !states.IsValid() {
		return nil, malformed(nil, "trace has no %q", keyStates)
	}
	if states.Kind() != value.KindList {
		return nil, malformed([]string{keyStates}, "states must be an array, found %s", states.Kind())
	}

	t.States = make([]State[value.Value], 0, states.Len())
	for i, sv := range states.All() {
		st, err := parseState(sv, []string{keyStates, indexSeg(i)})
		if err != nil {
			return nil, err
		}
		t.States = append(t.States, st)
	}
	if t.Loop != nil && *t.Loop >= uint64(len(t.States)) {
		return nil, malformed([]string{keyLoop}, "loop index %d is past the last state", *t.Loop)
	}

	Logger().Debug("parsed trace",
		zap.Int("states", len(t.States)),
		zap.Strings("vars", t.Vars),
		zap.Bool("lasso", t.IsLasso()))
	return t, nil
}

func parseMeta(v value.Value, path []string) (Meta, error) {
	var m Meta
	if v.Kind() != value.KindRecord {
		return m, malformed(path, "metadata must be an object, found %s", v.Kind())
	}
	for _, f := range v.Fields() {
		fpath := append(path[:len(path):len(path)], f.Name)
		var err error
		switch f.Name {
		case keyFormat:
			m.Format, err = stringOf(f.Value, fpath)
		case keyFormatDescription:
			m.FormatDescription, err = stringOf(f.Value, fpath)
		case keySource:
			m.Source, err = stringOf(f.Value, fpath)
		case keyDescription:
			m.Description, err = stringOf(f.Value, fpath)
		case keyVarTypes:
			m.VarTypes, err = stringMap(f.Value, fpath)
		case keyTimestamp:
			var n uint64
			n, err = uintOf(f.Value, fpath)
			m.Timestamp = &n
		default:
			m.Other, err = addOther(m.Other, f, fpath)
		}
		if err != nil {
			return Meta{}, err
		}
	}
	return m, nil
}

func parseState(v value.Value, path []string) (State[value.Value], error) {
	if v.Kind() != value.KindRecord {
		return State[value.Value]{}, malformed(path, "state must be an object, found %s", v.Kind())
	}

	var st State[value.Value]
	fields := v.Fields()
	bindings := make([]value.Field, 0, len(fields))
	for _, f := range fields {
		if f.Name != keyMeta {
			bindings = append(bindings, f)
			continue
		}
		mpath := append(path[:len(path):len(path)], keyMeta)
		if f.Value.Kind() != value.KindRecord {
			return st, malformed(mpath, "state metadata must be an object, found %s", f.Value.Kind())
		}
		for _, mf := range f.Value.Fields() {
			fpath := append(mpath[:len(mpath):len(mpath)], mf.Name)
			var err error
			if mf.Name == keyIndex {
				var n uint64
				n, err = uintOf(mf.Value, fpath)
				st.Meta.Index = &n
			} else {
				st.Meta.Other, err = addOther(st.Meta.Other, mf, fpath)
			}
			if err != nil {
				return st, err
			}
		}
	}
	st.Value = value.Record(bindings...)
	return st, nil
}

func addOther(other map[string]any, f value.Field, path []string) (map[string]any, error) {
	tree, err := f.Value.ToTree()
	if err != nil {
		return other, errors.Prefix(err, path...)
	}
	if other == nil {
		other = make(map[string]any)
	}
	other[f.Name] = tree
	return other, nil
}

func stringOf(v value.Value, path []string) (string, error) {
	s, ok := v.AsString()
	if !ok {
		return "", malformed(path, "expected a string, found %s", v.Kind())
	}
	return s, nil
}

func stringsOf(v value.Value, path []string) ([]string, error) {
	if !v.Kind().IsSequence() {
		return nil, malformed(path, "expected an array of strings, found %s", v.Kind())
	}
	out := make([]string, 0, v.Len())
	for i, e := range v.All() {
		s, err := stringOf(e, append(path[:len(path):len(path)], indexSeg(i)))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func stringMap(v value.Value, path []string) (map[string]string, error) {
	out := make(map[string]string)
	switch v.Kind() {
	case value.KindRecord:
		for _, f := range v.Fields() {
			s, err := stringOf(f.Value, append(path[:len(path):len(path)], f.Name))
			if err != nil {
				return nil, err
			}
			out[f.Name] = s
		}
	case value.KindMap:
		for _, e := range v.Entries() {
			k, err := stringOf(e.Key, path)
			if err != nil {
				return nil, err
			}
			s, err := stringOf(e.Value, append(path[:len(path):len(path)], "["+k+"]"))
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
	default:
		return nil, malformed(path, "expected an object of strings, found %s", v.Kind())
	}
	return out, nil
}

func uintOf(v value.Value, path []string) (uint64, error) {
	x, ok := v.AsBigInt()
	if !ok || x.Sign() < 0 || !x.IsUint64() {
		return 0, malformed(path, "expected a non-negative integer, found %s", v)
	}
	return x.Uint64(), nil
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func malformed(path []string, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindMalformed).
		Path(path...).
		Detail(format, args...).
		Build()
}
