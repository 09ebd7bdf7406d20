package value

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/wippyai/itf/errors"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
// tree always produces the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("value: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("value: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalCBOR implements cbor.Marshaler. The CBOR tree is the JSON wire
// tree with the same wrappers, so a Value survives JSON -> CBOR -> JSON.
// Record fields come back sorted by name.
func (v Value) MarshalCBOR() ([]byte, error) {
	tree, err := v.ToTree()
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(tree)
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (v *Value) UnmarshalCBOR(data []byte) error {
	parsed, err := ParseCBOR(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseCBOR reads one ITF value from CBOR produced by MarshalCBOR.
func ParseCBOR(data []byte) (Value, error) {
	var tree any
	if err := decMode.Unmarshal(data, &tree); err != nil {
		return Value{}, errors.Malformed(nil, "invalid CBOR", err)
	}
	return FromTree(tree)
}

// Fingerprint returns the blake3 digest of the canonical CBOR encoding of
// v. Equivalent values have equal fingerprints.
func Fingerprint(v Value) ([32]byte, error) {
	data, err := Canonical(v).MarshalCBOR()
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(data), nil
}
