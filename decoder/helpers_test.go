package decoder

import (
	"testing"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

func parse(t *testing.T, text string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", text, err)
	}
	return v
}

func wantKind(t *testing.T, err error, kind errors.Kind) *errors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("error type = %T (%v), want *errors.Error", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("error kind = %s, want %s (%v)", e.Kind, kind, err)
	}
	return e
}

type shape interface{ isShape() }

type circle struct {
	Radius int64
}

type square struct {
	Side int64 `itf:"side"`
}

type empty struct{}

func (circle) isShape() {}
func (square) isShape() {}
func (empty) isShape()  {}

type dir int

const (
	north dir = iota
	west
	east
	south
)

type color string

func shapeSum(layout Layout) SumSpec {
	return Sum[shape](layout,
		Case[circle]("Circle"),
		Case[square]("Square"),
		UnitCase[empty]("Empty"),
	)
}

func testDecoder() *Decoder {
	return New(Options{
		Sums:  []SumSpec{shapeSum(DefaultLayout())},
		Enums: []EnumSpec{Enum[dir]("N", "W", "E", "S"), Enum[color]("red", "green")},
	})
}
