package decoder

import (
	"math/big"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/itf/bigint"
	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// Char is a target for a single Unicode code point. A plain rune field
// is an int32 and decodes from a Number.
type Char rune

// Ignored accepts any value and keeps nothing.
type Ignored struct{}

// Signed is the set of signed integer targets.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of unsigned integer targets.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Bool decodes a Bool.
func Bool(_ *Decoder, v value.Value) (bool, error) {
	b, ok := v.AsBool()
	if !ok {
		return false, mismatch(v, "bool")
	}
	return b, nil
}

// Int decodes a Number or BigInt into a signed integer, failing with a
// Range error when the value does not fit T.
func Int[T Signed](_ *Decoder, v value.Value) (T, error) {
	t := reflect.TypeFor[T]()
	n, err := intValue(v, t.Bits(), t.String())
	return T(n), err
}

// Uint decodes a Number or BigInt into an unsigned integer.
func Uint[T Unsigned](_ *Decoder, v value.Value) (T, error) {
	t := reflect.TypeFor[T]()
	n, err := uintValue(v, t.Bits(), t.String())
	return T(n), err
}

func intValue(v value.Value, bits int, goType string) (int64, error) {
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		if bits < 64 {
			lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
			if n < lo || n > hi {
				return 0, errors.Range(errors.PhaseDecode, nil, strconv.FormatInt(n, 10), goType)
			}
		}
		return n, nil
	case value.KindBigInt:
		x, _ := v.AsBigInt()
		if !bigint.FitsInt(x, bits) {
			return 0, errors.Range(errors.PhaseDecode, nil, x.String(), goType)
		}
		return x.Int64(), nil
	}
	return 0, mismatch(v, "integer")
}

func uintValue(v value.Value, bits int, goType string) (uint64, error) {
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		if n < 0 || (bits < 64 && uint64(n) > uint64(1)<<bits-1) {
			return 0, errors.Range(errors.PhaseDecode, nil, strconv.FormatInt(n, 10), goType)
		}
		return uint64(n), nil
	case value.KindBigInt:
		x, _ := v.AsBigInt()
		if !bigint.FitsUint(x, bits) {
			return 0, errors.Range(errors.PhaseDecode, nil, x.String(), goType)
		}
		return x.Uint64(), nil
	}
	return 0, mismatch(v, "integer")
}

// Str decodes a String into any string type.
func Str[T ~string](_ *Decoder, v value.Value) (T, error) {
	s, ok := v.AsString()
	if !ok {
		return "", mismatch(v, "string")
	}
	return T(s), nil
}

// Rune decodes a String holding exactly one code point.
func Rune(_ *Decoder, v value.Value) (Char, error) {
	s, ok := v.AsString()
	if !ok {
		return 0, mismatch(v, "char")
	}
	if n := utf8.RuneCountInString(s); n != 1 {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidType).
			Shape("char", "string").
			Value(s).
			Detail("%d code points", n).
			Build()
	}
	r, _ := utf8.DecodeRuneInString(s)
	return Char(r), nil
}

// Bytes decodes a String as its UTF-8 bytes, or a List of Numbers in 0..255.
func Bytes(_ *Decoder, v value.Value) ([]byte, error) {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return []byte(s), nil
	case value.KindList:
		out := make([]byte, v.Len())
		for i, e := range v.All() {
			n, err := uintValue(e, 8, "uint8")
			if err != nil {
				return nil, At(err, index(i))
			}
			out[i] = byte(n)
		}
		return out, nil
	}
	return nil, mismatch(v, "bytes")
}

// BigInt decodes a Number, a BigInt, or the positional [sign, [limbs]] form.
func BigInt(_ *Decoder, v value.Value) (*big.Int, error) {
	switch v.Kind() {
	case value.KindNumber, value.KindBigInt:
		x, _ := v.AsBigInt()
		return x, nil
	case value.KindList, value.KindTuple:
		return positional(v)
	}
	return nil, mismatch(v, "bigint")
}

// BigIntVal is BigInt for big.Int value targets.
func BigIntVal(d *Decoder, v value.Value) (big.Int, error) {
	x, err := BigInt(d, v)
	if err != nil {
		return big.Int{}, err
	}
	return *x, nil
}

// LimbsOf decodes any BigInt form into its positional view.
func LimbsOf(d *Decoder, v value.Value) (bigint.Limbs, error) {
	x, err := BigInt(d, v)
	if err != nil {
		return bigint.Limbs{}, err
	}
	return bigint.ToLimbs(x), nil
}

func positional(v value.Value) (*big.Int, error) {
	if v.Len() != 2 {
		return nil, errors.Arity(errors.PhaseDecode, nil, 2, v.Len())
	}

	sign, err := intValue(v.Index(0), 64, "int64")
	if err != nil {
		return nil, At(err, "[0]")
	}
	if sign < -1 || sign > 1 {
		return nil, errors.Range(errors.PhaseDecode, []string{"[0]"}, strconv.FormatInt(sign, 10), "sign")
	}

	mag := v.Index(1)
	if mag.Kind() != value.KindList && mag.Kind() != value.KindTuple {
		return nil, At(mismatch(mag, "sequence"), "[1]")
	}
	limbs := make([]uint32, mag.Len())
	for i, e := range mag.All() {
		n, err := uintValue(e, 32, "uint32")
		if err != nil {
			return nil, At(err, "[1]", index(i))
		}
		limbs[i] = uint32(n)
	}

	x, err := bigint.FromLimbs(sign, limbs)
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindCustom).Cause(err).Detail("invalid positional big integer").Build()
	}
	return x, nil
}

// Raw returns the Value itself.
func Raw(_ *Decoder, v value.Value) (value.Value, error) {
	if !v.IsValid() {
		return value.Value{}, mismatch(v, "value")
	}
	return v, nil
}

// Any returns the Value boxed in an interface.
func Any(_ *Decoder, v value.Value) (any, error) {
	if !v.IsValid() {
		return nil, mismatch(v, "value")
	}
	return v, nil
}
