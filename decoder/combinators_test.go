package decoder

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

func TestCombinators(t *testing.T) {
	d := Default()

	nested := MapOf(Str[string], SliceOf(PtrOf(Int[int32])))
	m, err := nested(d, parse(t, `{"#map":[["a",[1,2]],["b",{"#set":[]}]]}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(m["a"]) != 2 || *m["a"][1] != 2 || len(m["b"]) != 0 {
		t.Errorf("got %v", m)
	}

	_, err = nested(d, parse(t, `{"a":[1,{"#bigint":"99999999999"}]}`))
	e := wantKind(t, err, errors.KindRange)
	if got := errors.FormatPath(e.Path); got != "[a][1]" {
		t.Errorf("path = %q, want [a][1]", got)
	}

	arr, err := ArrayOf(2, Str[string])(d, parse(t, `{"#tup":["x","y"]}`))
	if err != nil || len(arr) != 2 {
		t.Errorf("ArrayOf = %v, %v", arr, err)
	}
	_, err = ArrayOf(3, Str[string])(d, parse(t, `["x"]`))
	wantKind(t, err, errors.KindArity)

	set, err := SetOf(Str[string])(d, parse(t, `{"#set":["x","y","x"]}`))
	if err != nil || len(set) != 2 {
		t.Errorf("SetOf = %v, %v", set, err)
	}

	s, err := Via[strict](d, parse(t, `3`))
	if err != nil || s.N != 3 {
		t.Errorf("Via = %+v, %v", s, err)
	}
	_, err = Via[strict](d, parse(t, `-3`))
	wantKind(t, err, errors.KindCustom)

	r, err := Reflect[[]bool](d, parse(t, `[true]`))
	if err != nil || len(r) != 1 || !r[0] {
		t.Errorf("Reflect = %v, %v", r, err)
	}
}

func TestArrayInto(t *testing.T) {
	d := Default()

	var out [3]string
	if err := ArrayInto(d, parse(t, `{"#tup":["a","b","c"]}`), out[:], Str[string]); err != nil {
		t.Fatalf("ArrayInto failed: %v", err)
	}
	if out != [3]string{"a", "b", "c"} {
		t.Errorf("got %v", out)
	}

	err := ArrayInto(d, parse(t, `["a","b"]`), out[:], Str[string])
	wantKind(t, err, errors.KindArity)

	err = ArrayInto(d, parse(t, `["a",1,"c"]`), out[:], Str[string])
	e := wantKind(t, err, errors.KindInvalidType)
	if got := errors.FormatPath(e.Path); got != "[1]" {
		t.Errorf("path = %q, want [1]", got)
	}
}

// erase drops the result type of fn so differently typed Funcs share a table.
func erase[T any](fn Func[T]) Func[any] {
	return func(d *Decoder, v value.Value) (any, error) {
		return fn(d, v)
	}
}

func TestBuiltinCombinators(t *testing.T) {
	option := erase(OptionOf(Int[int64]))
	result := erase(ResultOf(Int[int64], Str[string]))

	tests := []struct {
		name   string
		decode Func[any]
		src    string
		want   any
		kind   errors.Kind
		path   string
	}{
		{name: "option some", decode: option, src: `{"tag":"Some","value":3}`, want: Some[int64](3)},
		{name: "option none", decode: option, src: `"None"`, want: None[int64]()},
		{name: "option payload", decode: option, src: `{"tag":"Some","value":"x"}`, kind: errors.KindInvalidType, path: "Some"},
		{name: "option unknown", decode: option, src: `{"tag":"Maybe"}`, kind: errors.KindUnknownVariant},
		{
			name:   "tuple2",
			decode: erase(Tuple2Of(Int[int64], Str[string])),
			src:    `{"#tup":[1,"a"]}`,
			want:   Tuple2[int64, string]{V0: 1, V1: "a"},
		},
		{
			name:   "tuple3 element",
			decode: erase(Tuple3Of(Int[int64], Str[string], Str[string])),
			src:    `[1,"a",true]`,
			kind:   errors.KindInvalidType,
			path:   "[2]",
		},
		{
			name:   "tuple4",
			decode: erase(Tuple4Of(Int[int64], Int[int64], Int[int64], Int[int64])),
			src:    `[1,2,3,4]`,
			want:   Tuple4[int64, int64, int64, int64]{V0: 1, V1: 2, V2: 3, V3: 4},
		},
		{
			name:   "tuple arity",
			decode: erase(Tuple2Of(Int[int64], Int[int64])),
			src:    `[1,2,3]`,
			kind:   errors.KindArity,
		},
		{name: "result ok", decode: result, src: `{"tag":"Ok","value":5}`, want: Ok[int64, string](5)},
		{name: "result err", decode: result, src: `{"tag":"Err","value":"boom"}`, want: Err[int64]("boom")},
		{name: "result err payload", decode: result, src: `{"tag":"Err","value":1}`, kind: errors.KindInvalidType, path: "Err"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.decode(Default(), parse(t, tt.src))
			if tt.kind != "" {
				e := wantKind(t, err, tt.kind)
				if p := errors.FormatPath(e.Path); p != tt.path {
					t.Errorf("path = %q, want %q", p, tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// nope fails with an error of its own type.
type nope struct{}

var errNope = stderrors.New("nope")

func (*nope) DecodeITF(*Decoder, value.Value) error { return errNope }

func TestDecode_ForeignErrorKeepsPath(t *testing.T) {
	type holder struct {
		Items []nope
	}
	_, err := As[holder](Default(), parse(t, `{"Items":[1]}`))
	e := wantKind(t, err, errors.KindCustom)
	if got := errors.FormatPath(e.Path); got != "Items[0]" {
		t.Errorf("path = %q, want Items[0]", got)
	}
	if !errors.Is(err, errNope) {
		t.Error("errors.Is(err, errNope) = false")
	}

	_, err = SliceOf(Via[nope])(Default(), parse(t, `[1]`))
	e = wantKind(t, err, errors.KindCustom)
	if got := errors.FormatPath(e.Path); got != "[0]" {
		t.Errorf("path = %q, want [0]", got)
	}
}
