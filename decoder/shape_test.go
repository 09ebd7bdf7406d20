package decoder

import (
	"testing"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"BankOfBoat", "bank_of_boat"},
		{"WhoIsOnBank", "who_is_on_bank"},
		{"HTTPServer", "http_server"},
		{"ID", "id"},
		{"UserID", "user_id"},
		{"Field1", "field1"},
		{"V2Name", "v2_name"},
		{"already_snake", "already_snake"},
		{"x", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SnakeCase(tt.in); got != tt.want {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		goName, tag string
		want        Key
		skip        bool
	}{
		{"Name", "", Key{Name: "Name", Snake: "name"}, false},
		{"Name", "n", Key{Name: "n", Tagged: true}, false},
		{"Name", "n,optional", Key{Name: "n", Tagged: true, Optional: true}, false},
		{"BankOfBoat", ",optional", Key{Name: "BankOfBoat", Snake: "bank_of_boat", Optional: true}, false},
		{"Name", "-", Key{}, true},
		{"Name", "-,", Key{Name: "-", Tagged: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.goName+"/"+tt.tag, func(t *testing.T) {
			got, skip := ParseTag(tt.goName, tt.tag)
			if skip != tt.skip || got != tt.want {
				t.Errorf("ParseTag = %+v, %v; want %+v, %v", got, skip, tt.want, tt.skip)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	fields := []value.Field{
		value.F("bank_of_boat", value.String("E")),
		value.F("COUNT", value.Number(1)),
		value.F("x", value.Number(1)),
		value.F("x", value.Number(2)),
	}

	f, ok, err := Lookup(fields, FieldKey("BankOfBoat"))
	if err != nil || !ok || f.Name != "bank_of_boat" {
		t.Errorf("snake lookup = %+v, %v, %v", f, ok, err)
	}
	f, ok, err = Lookup(fields, FieldKey("Count"))
	if err != nil || !ok || f.Name != "COUNT" {
		t.Errorf("folded lookup = %+v, %v, %v", f, ok, err)
	}
	_, _, err = Lookup(fields, TagKey("count"))
	wantKind(t, err, errors.KindFieldNotFound)
	_, ok, err = Lookup(fields, TagKey("count").Opt())
	if err != nil || ok {
		t.Errorf("optional lookup = %v, %v", ok, err)
	}
	_, _, err = Lookup(fields, TagKey("x"))
	wantKind(t, err, errors.KindDuplicateField)
}

func TestShapes(t *testing.T) {
	if _, err := Fields(value.List()); err == nil {
		t.Error("Fields should reject a List")
	}
	if _, err := Elems(value.Record()); err == nil {
		t.Error("Elems should reject a Record")
	}
	entries, err := Entries(value.Record(value.F("a", value.Number(1))))
	if err != nil || len(entries) != 1 {
		t.Fatalf("Entries = %v, %v", entries, err)
	}
	if s, _ := entries[0].Key.AsString(); s != "a" {
		t.Errorf("record key = %s", entries[0].Key)
	}
	if _, err := Entries(value.List()); err == nil {
		t.Error("Entries should reject a List")
	}
	_, err = TupleElems(value.Set(value.Number(1)), 2)
	wantKind(t, err, errors.KindArity)
}

func TestAt(t *testing.T) {
	err := At(At(errors.InvalidType(errors.PhaseDecode, nil, "bool", "number"), "x"), "states", "[0]")
	e := wantKind(t, err, errors.KindInvalidType)
	if got := errors.FormatPath(e.Path); got != "states[0].x" {
		t.Errorf("path = %q", got)
	}

	e = wantKind(t, Customf("bad %d", 1), errors.KindCustom)
	if e.Detail != "bad 1" {
		t.Errorf("detail = %q", e.Detail)
	}
}
