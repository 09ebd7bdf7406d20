package decoder

import (
	"github.com/wippyai/itf/value"
)

// TupleLayout marks a struct as positional. It must be the first field:
//
//	type Move struct {
//		_    decoder.TupleLayout
//		From string
//		To   string
//	}
//
// decodes from {"#tup": ["a", "b"]}, ["a", "b"] or {"#set": [...]}.
type TupleLayout struct{}

// Tuple2 is a positional pair.
type Tuple2[A, B any] struct {
	_  TupleLayout
	V0 A
	V1 B
}

// Tuple3 is a positional triple.
type Tuple3[A, B, C any] struct {
	_  TupleLayout
	V0 A
	V1 B
	V2 C
}

// Tuple4 is a positional quadruple.
type Tuple4[A, B, C, D any] struct {
	_  TupleLayout
	V0 A
	V1 B
	V2 C
	V3 D
}

// Tuple2Of decodes a Tuple2 with one Func per element.
func Tuple2Of[A, B any](fa Func[A], fb Func[B]) Func[Tuple2[A, B]] {
	return func(d *Decoder, v value.Value) (Tuple2[A, B], error) {
		var out Tuple2[A, B]
		elems, err := TupleElems(v, 2)
		if err != nil {
			return out, err
		}
		if out.V0, err = fa(d, elems[0]); err != nil {
			return Tuple2[A, B]{}, At(err, "[0]")
		}
		if out.V1, err = fb(d, elems[1]); err != nil {
			return Tuple2[A, B]{}, At(err, "[1]")
		}
		return out, nil
	}
}

// Tuple3Of decodes a Tuple3 with one Func per element.
func Tuple3Of[A, B, C any](fa Func[A], fb Func[B], fc Func[C]) Func[Tuple3[A, B, C]] {
	return func(d *Decoder, v value.Value) (Tuple3[A, B, C], error) {
		var out Tuple3[A, B, C]
		elems, err := TupleElems(v, 3)
		if err != nil {
			return out, err
		}
		if out.V0, err = fa(d, elems[0]); err != nil {
			return Tuple3[A, B, C]{}, At(err, "[0]")
		}
		if out.V1, err = fb(d, elems[1]); err != nil {
			return Tuple3[A, B, C]{}, At(err, "[1]")
		}
		if out.V2, err = fc(d, elems[2]); err != nil {
			return Tuple3[A, B, C]{}, At(err, "[2]")
		}
		return out, nil
	}
}

// Tuple4Of decodes a Tuple4 with one Func per element.
func Tuple4Of[A, B, C, D any](fa Func[A], fb Func[B], fc Func[C], fd Func[D]) Func[Tuple4[A, B, C, D]] {
	return func(d *Decoder, v value.Value) (Tuple4[A, B, C, D], error) {
		var out Tuple4[A, B, C, D]
		elems, err := TupleElems(v, 4)
		if err != nil {
			return out, err
		}
		if out.V0, err = fa(d, elems[0]); err != nil {
			return Tuple4[A, B, C, D]{}, At(err, "[0]")
		}
		if out.V1, err = fb(d, elems[1]); err != nil {
			return Tuple4[A, B, C, D]{}, At(err, "[1]")
		}
		if out.V2, err = fc(d, elems[2]); err != nil {
			return Tuple4[A, B, C, D]{}, At(err, "[2]")
		}
		if out.V3, err = fd(d, elems[3]); err != nil {
			return Tuple4[A, B, C, D]{}, At(err, "[3]")
		}
		return out, nil
	}
}

func (t *Tuple2[A, B]) DecodeITF(d *Decoder, v value.Value) error {
	out, err := Tuple2Of[A, B](As[A], As[B])(d, v)
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func (t *Tuple3[A, B, C]) DecodeITF(d *Decoder, v value.Value) error {
	out, err := Tuple3Of[A, B, C](As[A], As[B], As[C])(d, v)
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func (t *Tuple4[A, B, C, D]) DecodeITF(d *Decoder, v value.Value) error {
	out, err := Tuple4Of[A, B, C, D](As[A], As[B], As[C], As[D])(d, v)
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func (*Tuple2[A, B]) builtin()       {}
func (*Tuple3[A, B, C]) builtin()    {}
func (*Tuple4[A, B, C, D]) builtin() {}
func (*Option[T]) builtin()          {}
func (*Result[T, E]) builtin()       {}

var (
	optionVariants = []Variant{{Name: "Some"}, {Name: "None", Unit: true}}
	resultVariants = []Variant{{Name: "Ok"}, {Name: "Err"}}
)

// Option decodes the tagged form {"tag": "Some", "value": x} or
// {"tag": "None"} (also the bare string "None").
type Option[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Option.
func Some[T any](x T) Option[T] { return Option[T]{Value: x, Valid: true} }

// None returns an absent Option.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.Value, o.Valid }

// OptionOf decodes an Option whose payload is decoded by elem.
func OptionOf[T any](elem Func[T]) Func[Option[T]] {
	return func(d *Decoder, v value.Value) (Option[T], error) {
		sel, err := Select(v, DefaultLayout(), optionVariants)
		if err != nil {
			return Option[T]{}, err
		}
		if sel.Unit {
			return Option[T]{}, nil
		}
		x, err := elem(d, sel.Payload)
		if err != nil {
			return Option[T]{}, At(err, sel.Name)
		}
		return Some(x), nil
	}
}

func (o *Option[T]) DecodeITF(d *Decoder, v value.Value) error {
	out, err := OptionOf[T](As[T])(d, v)
	if err != nil {
		return err
	}
	*o = out
	return nil
}

// Result decodes {"tag": "Ok", "value": x} or {"tag": "Err", "value": e}.
type Result[T, E any] struct {
	Ok    T
	Err   E
	IsErr bool
}

// Ok returns a successful Result.
func Ok[T, E any](x T) Result[T, E] { return Result[T, E]{Ok: x} }

// Err returns a failed Result.
func Err[T, E any](e E) Result[T, E] { return Result[T, E]{Err: e, IsErr: true} }

// ResultOf decodes a Result with ok for the Ok payload and fail for the
// Err payload.
func ResultOf[T, E any](ok Func[T], fail Func[E]) Func[Result[T, E]] {
	return func(d *Decoder, v value.Value) (Result[T, E], error) {
		sel, err := Select(v, DefaultLayout(), resultVariants)
		if err != nil {
			return Result[T, E]{}, err
		}
		if sel.Index == 0 {
			x, err := ok(d, sel.Payload)
			if err != nil {
				return Result[T, E]{}, At(err, sel.Name)
			}
			return Ok[T, E](x), nil
		}
		e, err := fail(d, sel.Payload)
		if err != nil {
			return Result[T, E]{}, At(err, sel.Name)
		}
		return Err[T](e), nil
	}
}

func (r *Result[T, E]) DecodeITF(d *Decoder, v value.Value) error {
	out, err := ResultOf[T, E](As[T], As[E])(d, v)
	if err != nil {
		return err
	}
	*r = out
	return nil
}
