package trace

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

const counter = `{
	// produced by hand
	"#meta": {
		"format": "ITF",
		"format-description": "https://apalache-mc.org/docs/adr/015adr-trace.html",
		"source": "Counter.tla",
		"description": "counts to two",
		"varTypes": {"n": "Int", "log": "Seq(Str)"},
		"timestamp": 1700000000000,
		"checker": {"name": "apalache", "version": [0, 44]}
	},
	"params": [],
	"vars": ["n", "log"],
	"loop": 1,
	"states": [
		{"#meta": {"index": 0}, "n": 0, "log": []},
		{"#meta": {"index": 1, "note": "first"}, "n": 1, "log": ["inc"]},
		{"#meta": {"index": 2}, "n": {"#bigint": "2"}, "log": ["inc", "inc"],},
	]
}`

type counterState struct {
	N   int64
	Log []string
}

func parse(t *testing.T, text string) *Trace[value.Value] {
	t.Helper()
	tr, err := Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tr
}

func TestParse(t *testing.T) {
	tr := parse(t, counter)

	if tr.Meta.Format != "ITF" || tr.Meta.Source != "Counter.tla" || tr.Meta.Description != "counts to two" {
		t.Errorf("meta = %+v", tr.Meta)
	}
	if !strings.HasPrefix(tr.Meta.FormatDescription, "https://") {
		t.Errorf("format-description = %q", tr.Meta.FormatDescription)
	}
	if want := map[string]string{"n": "Int", "log": "Seq(Str)"}; !reflect.DeepEqual(tr.Meta.VarTypes, want) {
		t.Errorf("varTypes = %v, want %v", tr.Meta.VarTypes, want)
	}
	if tr.Meta.Timestamp == nil || *tr.Meta.Timestamp != 1700000000000 {
		t.Errorf("timestamp = %v", tr.Meta.Timestamp)
	}
	checker, ok := tr.Meta.Other["checker"].(map[string]any)
	if !ok || checker["name"] != "apalache" {
		t.Errorf("other = %#v", tr.Meta.Other)
	}

	if tr.Params == nil || len(tr.Params) != 0 {
		t.Errorf("params = %#v, want empty", tr.Params)
	}
	if !reflect.DeepEqual(tr.Vars, []string{"n", "log"}) {
		t.Errorf("vars = %v", tr.Vars)
	}
	if tr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tr.Len())
	}

	st := tr.States[1]
	if st.Meta.Index == nil || *st.Meta.Index != 1 {
		t.Errorf("state index = %v", st.Meta.Index)
	}
	if st.Meta.Other["note"] != "first" {
		t.Errorf("state other = %v", st.Meta.Other)
	}
	want := value.Record(value.F("n", value.Number(1)), value.F("log", value.List(value.String("inc"))))
	if !st.Value.Equal(want) {
		t.Errorf("state value = %v, want %v", st.Value, want)
	}
}

func TestLasso(t *testing.T) {
	tr := parse(t, counter)
	if !tr.IsLasso() {
		t.Fatal("IsLasso() = false")
	}
	st, ok := tr.LoopState()
	if !ok || *st.Meta.Index != 1 {
		t.Errorf("LoopState() = %+v, %v", st, ok)
	}

	plain := parse(t, `{"states": [{"x": 1}]}`)
	if plain.IsLasso() {
		t.Error("trace without loop reports lasso")
	}
	if _, ok := plain.LoopState(); ok {
		t.Error("LoopState() ok without loop")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		path string
	}{
		{"not an object", `[1]`, ""},
		{"no states", `{"vars": []}`, ""},
		{"states not an array", `{"states": {"#set": []}}`, "states"},
		{"state not an object", `{"states": [{}, 3]}`, "states[1]"},
		{"bad state index", `{"states": [{"#meta": {"index": -1}}]}`, "states[0].#meta.index"},
		{"bad format", `{"#meta": {"format": 1}, "states": []}`, "#meta.format"},
		{"bad var", `{"vars": ["x", 1], "states": []}`, "vars[1]"},
		{"bad var type", `{"#meta": {"varTypes": {"x": 1}}, "states": []}`, "#meta.varTypes.x"},
		{"loop past end", `{"loop": 1, "states": [{}]}`, "loop"},
		{"bad json", `{"states": [}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text))
			var e *errors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error = %v, want *errors.Error", err)
			}
			if e.Phase != errors.PhaseParse || e.Kind != errors.KindMalformed {
				t.Errorf("error = %v, want parse/malformed", err)
			}
			if tt.path != "" {
				if got := errors.FormatPath(e.Path); got != tt.path {
					t.Errorf("path = %q, want %q", got, tt.path)
				}
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tr := parse(t, counter)

	typed, err := Decode[counterState](nil, tr)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []counterState{{N: 0, Log: []string{}}, {N: 1, Log: []string{"inc"}}, {N: 2, Log: []string{"inc", "inc"}}}
	for i, st := range typed.States {
		if !reflect.DeepEqual(st.Value, want[i]) {
			t.Errorf("state %d = %+v, want %+v", i, st.Value, want[i])
		}
		if st.Meta.Index == nil || *st.Meta.Index != uint64(i) {
			t.Errorf("state %d index = %v", i, st.Meta.Index)
		}
	}
	if !reflect.DeepEqual(typed.Meta, tr.Meta) || !reflect.DeepEqual(typed.Loop, tr.Loop) {
		t.Error("metadata not carried over")
	}

	// The same parsed trace decodes into another state type.
	counts, err := Decode[struct{ N int8 }](decoder.Default(), tr)
	if err != nil {
		t.Fatalf("second Decode failed: %v", err)
	}
	if counts.States[2].Value.N != 2 {
		t.Errorf("N = %d, want 2", counts.States[2].Value.N)
	}
}

func TestDecode_Independent(t *testing.T) {
	tr := parse(t, counter)

	first, err := Decode[counterState](nil, tr)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	*first.Loop = 7
	first.Meta.VarTypes["n"] = "Str"
	first.Meta.Other["checker"] = "none"
	*first.Meta.Timestamp = 0
	first.Vars[0] = "m"
	first.States[1].Meta.Other["note"] = "changed"
	*first.States[1].Meta.Index = 9

	second, err := Decode[counterState](nil, tr)
	if err != nil {
		t.Fatalf("second Decode failed: %v", err)
	}
	if *second.Loop != 1 || *tr.Loop != 1 {
		t.Errorf("loop = %d, want 1", *second.Loop)
	}
	if second.Meta.VarTypes["n"] != "Int" {
		t.Errorf("varTypes[n] = %q, want Int", second.Meta.VarTypes["n"])
	}
	if _, ok := second.Meta.Other["checker"].(map[string]any); !ok {
		t.Errorf("checker = %v", second.Meta.Other["checker"])
	}
	if *second.Meta.Timestamp != 1700000000000 {
		t.Errorf("timestamp = %d", *second.Meta.Timestamp)
	}
	if second.Vars[0] != "n" {
		t.Errorf("vars = %v", second.Vars)
	}
	if second.States[1].Meta.Other["note"] != "first" || *second.States[1].Meta.Index != 1 {
		t.Errorf("state meta = %+v", second.States[1].Meta)
	}
}

func TestDecode_StepError(t *testing.T) {
	text := `{"states": [{"n": 0}, {"n": 1}, {"n": "two"}, {"n": 3}]}`
	_, err := DecodeText[counterState](nil, []byte(text))

	var se *errors.StepError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *errors.StepError", err)
	}
	if se.Phase != errors.PhaseDecode || se.Step != 2 {
		t.Errorf("step error = %+v, want decode step 2", se)
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindInvalidType || errors.FormatPath(e.Path) != "n" {
		t.Errorf("cause = %v, want invalid_type at n", se.Cause)
	}
	if !errors.Is(err, errors.ErrInvalidType) {
		t.Error("errors.Is(err, ErrInvalidType) = false")
	}
}

func TestDecode_ParseErrorIsNotStepError(t *testing.T) {
	_, err := DecodeText[counterState](nil, []byte(`{"states": [{"n": 1.5}]}`))
	if err == nil {
		t.Fatal("expected error")
	}
	var se *errors.StepError
	if errors.As(err, &se) {
		t.Errorf("parse failure reported as step error: %v", err)
	}
	if !errors.Is(err, errors.ErrMalformed) {
		t.Errorf("error = %v, want malformed", err)
	}
}

func TestFromTree(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"vars": ["x"], "states": [{"x": {"#set": [1, 2]}}]}`))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		t.Fatal(err)
	}

	tr, err := FromTree(tree)
	if err != nil {
		t.Fatalf("FromTree failed: %v", err)
	}
	x, ok := tr.States[0].Value.Lookup("x")
	if !ok || x.Kind() != value.KindSet || x.Len() != 2 {
		t.Errorf("x = %v", x)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	tr := parse(t, counter)

	text, err := Encode(tr)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(Encode) failed: %v\n%s", err, text)
	}

	if !reflect.DeepEqual(back.Meta, tr.Meta) {
		t.Errorf("meta = %#v, want %#v", back.Meta, tr.Meta)
	}
	if !reflect.DeepEqual(back.Vars, tr.Vars) || *back.Loop != *tr.Loop {
		t.Errorf("vars/loop changed: %v %v", back.Vars, *back.Loop)
	}
	for i := range tr.States {
		if !back.States[i].Value.Equal(tr.States[i].Value) {
			t.Errorf("state %d = %v, want %v", i, back.States[i].Value, tr.States[i].Value)
		}
		if !reflect.DeepEqual(back.States[i].Meta, tr.States[i].Meta) {
			t.Errorf("state %d meta = %+v, want %+v", i, back.States[i].Meta, tr.States[i].Meta)
		}
	}
}
