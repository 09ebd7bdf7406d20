package value

import (
	"testing"
)

func TestCBORRoundTrip(t *testing.T) {
	inputs := []string{
		`{"a":1,"b":[true,"x"],"c":{"#bigint":"-123456789012345678901234567890"}}`,
		`{"#map":[[{"#tup":[1,2]},{"#set":["a","b"]}]]}`,
		`{"#unserializable":"Int"}`,
		`-5`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			v := mustParse(t, in)
			data, err := v.MarshalCBOR()
			if err != nil {
				t.Fatalf("MarshalCBOR failed: %v", err)
			}
			back, err := ParseCBOR(data)
			if err != nil {
				t.Fatalf("ParseCBOR failed: %v", err)
			}
			if !back.Equivalent(v) {
				t.Errorf("CBOR round trip = %s, want %s", back, v)
			}

			var viaIface Value
			if err := viaIface.UnmarshalCBOR(data); err != nil {
				t.Fatalf("UnmarshalCBOR failed: %v", err)
			}
			if !viaIface.Equal(back) {
				t.Errorf("UnmarshalCBOR = %s, want %s", viaIface, back)
			}
		})
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	a := mustParse(t, `{"x":1,"y":{"#set":[1,2]}}`)
	b := mustParse(t, `{"y":{"#set":[1,2]},"x":1}`)
	da, err := a.MarshalCBOR()
	if err != nil {
		t.Fatal(err)
	}
	db, err := b.MarshalCBOR()
	if err != nil {
		t.Fatal(err)
	}
	if string(da) != string(db) {
		t.Error("records differing only in field order should encode identically")
	}
}

func TestParseCBORRejectsGarbage(t *testing.T) {
	if _, err := ParseCBOR([]byte{0xff, 0x00}); err == nil {
		t.Error("invalid CBOR should fail")
	}
}

func TestFingerprint(t *testing.T) {
	a := mustParse(t, `{"s":{"#set":[3,1,2]},"m":{"#map":[["b",2],["a",1]]},"n":5}`)
	b := mustParse(t, `{"n":{"#bigint":"5"},"m":{"#map":[["a",1],["b",2]]},"s":{"#set":[1,2,3]}}`)
	c := mustParse(t, `{"n":6,"m":{"#map":[["a",1],["b",2]]},"s":{"#set":[1,2,3]}}`)

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	fc, err := Fingerprint(c)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fa != fb {
		t.Error("equivalent values should share a fingerprint")
	}
	if fa == fc {
		t.Error("different values should not share a fingerprint")
	}
}

func TestCanonicalFoldsBigInt(t *testing.T) {
	v := Canonical(mustParse(t, `[{"#bigint":"7"},{"#bigint":"123456789012345678901234567890"}]`))
	if v.Index(0).Kind() != KindNumber {
		t.Errorf("small BigInt should fold to Number, got %s", v.Index(0).Kind())
	}
	if v.Index(1).Kind() != KindBigInt {
		t.Errorf("large BigInt should stay BigInt, got %s", v.Index(1).Kind())
	}
}
