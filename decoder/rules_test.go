package decoder

import (
	"testing"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// samples holds one Value of every kind.
var samples = map[value.Kind]value.Value{
	value.KindBool:           value.Bool(true),
	value.KindNumber:         value.Number(1),
	value.KindBigInt:         value.BigInt(nil),
	value.KindString:         value.String("a"),
	value.KindList:           value.List(value.Number(1)),
	value.KindTuple:          value.Tuple(value.Number(1)),
	value.KindSet:            value.Set(value.Number(1)),
	value.KindMap:            value.Map(),
	value.KindRecord:         value.Record(),
	value.KindUnserializable: value.Unserializable("x"),
}

// shapeOK reports whether err, if any, is about content rather than the
// wire kind.
func shapeOK(err error) bool {
	return err == nil || !(errors.Is(err, errors.ErrInvalidType) || errors.Is(err, errors.ErrUnsupportedType))
}

func TestRulesMatchHelpers(t *testing.T) {
	d := Default()
	helpers := map[Rule]func(value.Value) error{
		RuleBool:   func(v value.Value) error { _, err := Bool(d, v); return err },
		RuleInt:    func(v value.Value) error { _, err := Int[int64](d, v); return err },
		RuleUint:   func(v value.Value) error { _, err := Uint[uint64](d, v); return err },
		RuleBigInt: func(v value.Value) error { _, err := BigInt(d, v); return err },
		RuleLimbs:  func(v value.Value) error { _, err := LimbsOf(d, v); return err },
		RuleString: func(v value.Value) error { _, err := Str[string](d, v); return err },
		RuleChar:   func(v value.Value) error { _, err := Rune(d, v); return err },
		RuleBytes:  func(v value.Value) error { _, err := Bytes(d, v); return err },
		RuleSeq:    func(v value.Value) error { _, err := SliceOf(Int[int64])(d, v); return err },
		RuleArray:  func(v value.Value) error { _, err := ArrayOf(1, Int[int64])(d, v); return err },
		RuleSet:    func(v value.Value) error { _, err := SetOf(Int[int64])(d, v); return err },
		RuleMap:    func(v value.Value) error { _, err := MapOf(Str[string], Int[int64])(d, v); return err },
		RuleStruct: func(v value.Value) error { _, err := Fields(v); return err },
		RuleTuple:  func(v value.Value) error { _, err := TupleElems(v, 1); return err },
		RuleValue:  func(v value.Value) error { _, err := Raw(d, v); return err },
		RuleAny:    func(v value.Value) error { _, err := Any(d, v); return err },
	}

	for rule, fn := range helpers {
		t.Run(rule.String(), func(t *testing.T) {
			for kind, sample := range samples {
				got := shapeOK(fn(sample))
				if want := rule.Accepts(kind); got != want {
					t.Errorf("%s on %s: accepted = %v, table says %v", rule, kind, got, want)
				}
			}
			if shapeOK(fn(value.Value{})) {
				t.Errorf("%s accepted the zero Value", rule)
			}
		})
	}
}

func TestRuleNames(t *testing.T) {
	for r := RuleUnsupported; r <= RuleAny; r++ {
		if r.String() == "" || r.String() == "unknown" {
			t.Errorf("rule %d has no name", r)
		}
	}
	if Rule(200).String() != "unknown" {
		t.Error("out of range rule should be unknown")
	}
	if Rule(200).Info().Name != "unsupported" {
		t.Error("out of range Info should be the unsupported row")
	}
	if RuleInt.Info().Helper != "Int" {
		t.Errorf("RuleInt helper = %q", RuleInt.Info().Helper)
	}
}
