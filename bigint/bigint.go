// Package bigint converts between the wire forms of ITF integers and
// math/big values.
//
// Two wire forms exist. The textual form is the payload of a
// {"#bigint": "-123"} wrapper. The positional form is a pair
// [sign, [limb, ...]] with sign in {-1, 0, 1} and base 2^32 limbs,
// least significant first; it serves consumers that want a limb view.
// No arithmetic happens here beyond conversion.
package bigint

import (
	"fmt"
	"math"
	"math/big"
)

// Limbs is the positional sign+magnitude view of an integer.
type Limbs struct {
	Magnitude []uint32
	Sign      int64
}

var (
	minInt64  = big.NewInt(math.MinInt64)
	maxInt64  = big.NewInt(math.MaxInt64)
	maxUint64 = new(big.Int).SetUint64(math.MaxUint64)
)

// Parse reads the textual form: an optional sign followed by decimal digits.
func Parse(text string) (*big.Int, error) {
	digits := text
	if len(digits) > 0 && (digits[0] == '-' || digits[0] == '+') {
		digits = digits[1:]
	}
	if digits == "" {
		return nil, fmt.Errorf("invalid big integer %q: no digits", text)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil, fmt.Errorf("invalid big integer %q: unexpected %q", text, digits[i])
		}
	}
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("invalid big integer %q", text)
	}
	return n, nil
}

// Format writes the textual form.
func Format(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.Text(10)
}

// FromLimbs builds an integer from the positional form. A zero sign
// requires a zero magnitude.
func FromLimbs(sign int64, limbs []uint32) (*big.Int, error) {
	if sign < -1 || sign > 1 {
		return nil, fmt.Errorf("invalid sign %d: want -1, 0 or 1", sign)
	}

	mag := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		mag.Lsh(mag, 32)
		mag.Or(mag, new(big.Int).SetUint64(uint64(limbs[i])))
	}

	if sign == 0 {
		if mag.Sign() != 0 {
			return nil, fmt.Errorf("sign 0 with non-zero magnitude %s", mag.Text(10))
		}
		return mag, nil
	}
	if sign < 0 {
		mag.Neg(mag)
	}
	return mag, nil
}

// ToLimbs returns the positional form of x. Zero has sign 0 and no limbs.
func ToLimbs(x *big.Int) Limbs {
	if x == nil || x.Sign() == 0 {
		return Limbs{Sign: 0}
	}

	mag := new(big.Int).Abs(x)
	mask := new(big.Int).SetUint64(math.MaxUint32)
	var out []uint32
	for mag.Sign() != 0 {
		out = append(out, uint32(new(big.Int).And(mag, mask).Uint64()))
		mag.Rsh(mag, 32)
	}
	return Limbs{Sign: int64(x.Sign()), Magnitude: out}
}

// Int returns the integer the limbs describe.
func (l Limbs) Int() (*big.Int, error) {
	return FromLimbs(l.Sign, l.Magnitude)
}

// FitsInt reports whether x fits a signed integer of the given bit width.
func FitsInt(x *big.Int, bits int) bool {
	if bits >= 64 {
		return x.Cmp(minInt64) >= 0 && x.Cmp(maxInt64) <= 0
	}
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)))
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)), big.NewInt(1))
	return x.Cmp(lo) >= 0 && x.Cmp(hi) <= 0
}

// FitsUint reports whether x fits an unsigned integer of the given bit width.
func FitsUint(x *big.Int, bits int) bool {
	if x.Sign() < 0 {
		return false
	}
	if bits >= 64 {
		return x.Cmp(maxUint64) <= 0
	}
	return x.BitLen() <= bits
}

// Int64 converts x, failing instead of truncating.
func Int64(x *big.Int) (int64, error) {
	if !FitsInt(x, 64) {
		return 0, fmt.Errorf("%s overflows int64", x.Text(10))
	}
	return x.Int64(), nil
}

// Uint64 converts x, failing instead of truncating.
func Uint64(x *big.Int) (uint64, error) {
	if !FitsUint(x, 64) {
		return 0, fmt.Errorf("%s overflows uint64", x.Text(10))
	}
	return x.Uint64(), nil
}
