package value

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"math/big"
	"slices"
	"strconv"

	"github.com/wippyai/itf/bigint"
	"github.com/wippyai/itf/errors"
)

// Wire markers. A single-key object with one of these keys is a wrapper.
const (
	MarkerBigInt         = "#bigint"
	MarkerTuple          = "#tup"
	MarkerSet            = "#set"
	MarkerMap            = "#map"
	MarkerUnserializable = "#unserializable"
)

func isMarker(key string) bool {
	switch key {
	case MarkerBigInt, MarkerTuple, MarkerSet, MarkerMap, MarkerUnserializable:
		return true
	}
	return false
}

// Parse reads one ITF value from JSON text. Record fields keep their wire
// order, including repeated names.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseNext(dec, nil)
	if err != nil {
		return Value{}, err
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, errors.Malformed(nil, "invalid JSON after value", err)
		}
		return Value{}, errors.Malformed(nil, "unexpected data after value: "+tokenText(tok), nil)
	}
	return v, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func parseNext(dec *json.Decoder, path []string) (Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return Value{}, errors.Malformed(path, "unexpected end of input", nil)
	}
	if err != nil {
		return Value{}, errors.Malformed(path, "invalid JSON", err)
	}

	switch t := tok.(type) {
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return parseNumber(t.String(), path)
	case nil:
		return Value{}, errors.Malformed(path, "null is not an ITF value", nil)
	case json.Delim:
		switch t {
		case '[':
			var elems []Value
			for dec.More() {
				e, err := parseNext(dec, appendPath(path, indexSeg(len(elems))))
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, errors.Malformed(path, "unterminated array", err)
			}
			return Value{kind: KindList, elems: elems}, nil
		case '{':
			var fields []Field
			for dec.More() {
				ktok, err := dec.Token()
				if err != nil {
					return Value{}, errors.Malformed(path, "invalid object key", err)
				}
				key, ok := ktok.(string)
				if !ok {
					return Value{}, errors.Malformed(path, "invalid object key "+tokenText(ktok), nil)
				}
				fv, err := parseNext(dec, appendPath(path, key))
				if err != nil {
					return Value{}, err
				}
				fields = append(fields, Field{Name: key, Value: fv})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, errors.Malformed(path, "unterminated object", err)
			}
			return object(fields, path)
		}
	}
	return Value{}, errors.Malformed(path, "unexpected token "+tokenText(tok), nil)
}

func tokenText(tok json.Token) string {
	if d, ok := tok.(json.Delim); ok {
		return strconv.Quote(d.String())
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return "?"
	}
	return string(b)
}

func parseNumber(text string, path []string) (Value, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Number(n), nil
	}
	if x, err := bigint.Parse(text); err == nil {
		return Value{kind: KindBigInt, big: x}, nil
	}
	return Value{}, errors.Malformed(path, "number "+text+" is not an integer", nil)
}

// object applies the marker priority rule to a parsed JSON object.
func object(fields []Field, path []string) (Value, error) {
	if len(fields) != 1 || !isMarker(fields[0].Name) {
		return Value{kind: KindRecord, fields: fields}, nil
	}

	marker, payload := fields[0].Name, fields[0].Value
	path = appendPath(path, marker)

	switch marker {
	case MarkerBigInt:
		s, ok := payload.AsString()
		if !ok {
			return Value{}, errors.Malformed(path, "#bigint payload must be a decimal string, found "+payload.Kind().String(), nil)
		}
		x, err := bigint.Parse(s)
		if err != nil {
			return Value{}, errors.Malformed(path, "#bigint payload is not a decimal integer", err)
		}
		return Value{kind: KindBigInt, big: x}, nil

	case MarkerTuple, MarkerSet:
		if payload.Kind() != KindList {
			return Value{}, errors.Malformed(path, marker+" payload must be an array, found "+payload.Kind().String(), nil)
		}
		kind := KindTuple
		if marker == MarkerSet {
			kind = KindSet
		}
		return Value{kind: kind, elems: payload.elems}, nil

	case MarkerMap:
		if payload.Kind() != KindList {
			return Value{}, errors.Malformed(path, "#map payload must be an array of pairs, found "+payload.Kind().String(), nil)
		}
		entries := make([]Entry, 0, len(payload.elems))
		for i, pair := range payload.elems {
			if pair.Kind() != KindList || len(pair.elems) != 2 {
				return Value{}, errors.Malformed(appendPath(path, indexSeg(i)), "#map entry must be a [key, value] pair", nil)
			}
			entries = append(entries, Entry{Key: pair.elems[0], Value: pair.elems[1]})
		}
		return Value{kind: KindMap, entries: entries}, nil

	default:
		s, ok := payload.AsString()
		if !ok {
			return Value{}, errors.Malformed(path, "#unserializable payload must be a string, found "+payload.Kind().String(), nil)
		}
		return Unserializable(s), nil
	}
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// FromTree builds a Value from a generic tree as produced by
// encoding/json (with or without UseNumber) or a CBOR decoder. Objects
// given as Go maps have no order; their Record fields are sorted by name.
func FromTree(tree any) (Value, error) {
	return fromTree(tree, nil)
}

func fromTree(tree any, path []string) (Value, error) {
	switch t := tree.(type) {
	case nil:
		return Value{}, errors.Malformed(path, "null is not an ITF value", nil)
	case Value:
		if !t.IsValid() {
			return Value{}, errors.Malformed(path, "invalid value", nil)
		}
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return parseNumber(t.String(), path)
	case float64:
		return fromFloat(t, path)
	case float32:
		return fromFloat(float64(t), path)
	case int:
		return Number(int64(t)), nil
	case int8:
		return Number(int64(t)), nil
	case int16:
		return Number(int64(t)), nil
	case int32:
		return Number(int64(t)), nil
	case int64:
		return Number(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Number(int64(t)), nil
	case uint16:
		return Number(int64(t)), nil
	case uint32:
		return Number(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case *big.Int:
		if t == nil {
			return Value{}, errors.Malformed(path, "nil big integer", nil)
		}
		return fromBig(t), nil
	case big.Int:
		return fromBig(&t), nil
	case []any:
		elems := make([]Value, 0, len(t))
		for i, e := range t {
			v, err := fromTree(e, appendPath(path, indexSeg(i)))
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Value{kind: KindList, elems: elems}, nil
	case map[string]any:
		return fromObject(t, path)
	case map[any]any:
		obj := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return Value{}, errors.Malformed(path, "object key must be a string", nil)
			}
			obj[ks] = e
		}
		return fromObject(obj, path)
	}
	return Value{}, errors.New(errors.PhaseParse, errors.KindMalformed).
		Path(path...).
		Value(tree).
		Detail("unsupported tree node %T", tree).
		Build()
}

func fromObject(obj map[string]any, path []string) (Value, error) {
	names := make([]string, 0, len(obj))
	for k := range obj {
		names = append(names, k)
	}
	slices.Sort(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		v, err := fromTree(obj[name], appendPath(path, name))
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	return object(fields, path)
}

func fromFloat(f float64, path []string) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Value{}, errors.Malformed(path, "number "+strconv.FormatFloat(f, 'g', -1, 64)+" is not an integer", nil)
	}
	if f >= -(1<<63) && f < 1<<63 {
		return Number(int64(f)), nil
	}
	x, _ := big.NewFloat(f).Int(nil)
	return Value{kind: KindBigInt, big: x}, nil
}

func fromUint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Number(int64(u))
	}
	return Value{kind: KindBigInt, big: new(big.Int).SetUint64(u)}
}

func fromBig(x *big.Int) Value {
	if x.IsInt64() {
		return Number(x.Int64())
	}
	return BigInt(x)
}

// ToTree returns the generic wire tree of v: bool, int64, string, []any
// and map[string]any, with wrappers for the non-JSON kinds. Records
// become Go maps, so repeated field names keep only the last value.
func (v Value) ToTree() (any, error) {
	switch v.kind {
	case KindBool:
		return v.flag, nil
	case KindNumber:
		return v.num, nil
	case KindBigInt:
		return map[string]any{MarkerBigInt: bigint.Format(v.big)}, nil
	case KindString:
		return v.str, nil
	case KindUnserializable:
		return map[string]any{MarkerUnserializable: v.str}, nil
	case KindList, KindTuple, KindSet:
		elems, err := treeElems(v.elems)
		if err != nil {
			return nil, err
		}
		switch v.kind {
		case KindTuple:
			return map[string]any{MarkerTuple: elems}, nil
		case KindSet:
			return map[string]any{MarkerSet: elems}, nil
		}
		return elems, nil
	case KindMap:
		pairs := make([]any, 0, len(v.entries))
		for _, e := range v.entries {
			k, err := e.Key.ToTree()
			if err != nil {
				return nil, err
			}
			ev, err := e.Value.ToTree()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, []any{k, ev})
		}
		return map[string]any{MarkerMap: pairs}, nil
	case KindRecord:
		if err := checkRecord(v.fields); err != nil {
			return nil, err
		}
		obj := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			fv, err := f.Value.ToTree()
			if err != nil {
				return nil, errors.Prefix(err, f.Name)
			}
			obj[f.Name] = fv
		}
		return obj, nil
	}
	return nil, errors.Unsupported(errors.PhaseParse, "cannot encode an invalid value")
}

func treeElems(elems []Value) ([]any, error) {
	out := make([]any, 0, len(elems))
	for i, e := range elems {
		t, err := e.ToTree()
		if err != nil {
			return nil, errors.Prefix(err, indexSeg(i))
		}
		out = append(out, t)
	}
	return out, nil
}

// checkRecord rejects a Record the wire cannot represent: a single field
// named like a marker would read back as a wrapper.
func checkRecord(fields []Field) error {
	if len(fields) == 1 && isMarker(fields[0].Name) {
		return errors.Unsupported(errors.PhaseParse, "record with the single field "+strconv.Quote(fields[0].Name)+" reads back as a wrapper")
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Record fields are written in
// their stored order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.flag))
	case KindNumber:
		buf.WriteString(strconv.FormatInt(v.num, 10))
	case KindBigInt:
		writeWrapperOpen(buf, MarkerBigInt)
		writeString(buf, bigint.Format(v.big))
		buf.WriteByte('}')
	case KindString:
		writeString(buf, v.str)
	case KindUnserializable:
		writeWrapperOpen(buf, MarkerUnserializable)
		writeString(buf, v.str)
		buf.WriteByte('}')
	case KindList:
		return writeArray(buf, v.elems)
	case KindTuple, KindSet:
		marker := MarkerTuple
		if v.kind == KindSet {
			marker = MarkerSet
		}
		writeWrapperOpen(buf, marker)
		if err := writeArray(buf, v.elems); err != nil {
			return err
		}
		buf.WriteByte('}')
	case KindMap:
		writeWrapperOpen(buf, MarkerMap)
		buf.WriteByte('[')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('[')
			if err := writeJSON(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(',')
			if err := writeJSON(buf, e.Value); err != nil {
				return err
			}
			buf.WriteByte(']')
		}
		buf.WriteString("]}")
	case KindRecord:
		if err := checkRecord(v.fields); err != nil {
			return err
		}
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, f.Name)
			buf.WriteByte(':')
			if err := writeJSON(buf, f.Value); err != nil {
				return errors.Prefix(err, f.Name)
			}
		}
		buf.WriteByte('}')
	default:
		return errors.Unsupported(errors.PhaseParse, "cannot encode an invalid value")
	}
	return nil
}

func writeArray(buf *bytes.Buffer, elems []Value) error {
	buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, e); err != nil {
			return errors.Prefix(err, indexSeg(i))
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeWrapperOpen(buf *bytes.Buffer, marker string) {
	buf.WriteByte('{')
	writeString(buf, marker)
	buf.WriteByte(':')
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
