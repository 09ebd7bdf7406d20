package decoder

import (
	"math/big"
	"reflect"
	"sync"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// Unmarshaler is implemented by types that decode themselves. Generated
// code implements it; the reflection engine delegates to it.
type Unmarshaler interface {
	DecodeITF(d *Decoder, v value.Value) error
}

// Options configures a Decoder.
type Options struct {
	// Sums registers interface types as sum types.
	Sums []SumSpec
	// Enums registers named int and string types as unit enums.
	Enums []EnumSpec
	// Reflective makes the engine ignore DecodeITF methods of user types
	// and build reflection plans instead. Option, Result and the Tuple
	// types keep their methods.
	Reflective bool
}

// DefaultOptions returns options with no registered sums or enums.
func DefaultOptions() Options {
	return Options{}
}

// Decoder turns Values into Go values. It is safe for concurrent use;
// compiled plans are cached per Go type.
type Decoder struct {
	sums       map[reflect.Type]SumSpec
	enums      map[reflect.Type]EnumSpec
	cache      sync.Map // reflect.Type -> *plan
	reflective bool
}

// New creates a Decoder.
func New(opts Options) *Decoder {
	d := &Decoder{
		sums:       make(map[reflect.Type]SumSpec, len(opts.Sums)),
		enums:      make(map[reflect.Type]EnumSpec, len(opts.Enums)),
		reflective: opts.Reflective,
	}
	for _, s := range opts.Sums {
		d.sums[s.Type] = s
	}
	for _, e := range opts.Enums {
		d.enums[e.Type] = e
	}
	return d
}

var defaultDecoder = New(DefaultOptions())

// Default returns the shared Decoder with no registrations.
func Default() *Decoder {
	return defaultDecoder
}

// Decode decodes v into out, which must be a non-nil pointer. out is left
// untouched on failure.
func (d *Decoder) Decode(v value.Value, out any) error {
	if d == nil {
		d = defaultDecoder
	}
	if out == nil {
		return errors.NilPointer(errors.PhaseDecode, nil, "nil")
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, nil, rv.Type().String())
	}

	t := rv.Type().Elem()
	p, err := d.plan(t)
	if err != nil {
		return err
	}

	tmp := reflect.New(t).Elem()
	if err := d.exec(p, v, tmp); err != nil {
		return err
	}
	rv.Elem().Set(tmp)
	return nil
}

// As decodes v into a new T.
func As[T any](d *Decoder, v value.Value) (T, error) {
	var out T
	if err := d.Decode(v, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Decode decodes v into a new T with the Default decoder.
func Decode[T any](v value.Value) (T, error) {
	return As[T](defaultDecoder, v)
}

func (d *Decoder) exec(p *plan, v value.Value, out reflect.Value) error {
	switch p.rule {
	case RuleValue, RuleAny:
		if !v.IsValid() {
			return mismatch(v, "value")
		}
		out.Set(reflect.ValueOf(v))

	case RuleIgnore:

	case RuleBool:
		b, err := Bool(d, v)
		if err != nil {
			return err
		}
		out.SetBool(b)

	case RuleInt:
		n, err := intValue(v, p.typ.Bits(), p.typ.String())
		if err != nil {
			return err
		}
		out.SetInt(n)

	case RuleUint:
		n, err := uintValue(v, p.typ.Bits(), p.typ.String())
		if err != nil {
			return err
		}
		out.SetUint(n)

	case RuleString:
		s, err := Str[string](d, v)
		if err != nil {
			return err
		}
		out.SetString(s)

	case RuleChar:
		r, err := Rune(d, v)
		if err != nil {
			return err
		}
		out.SetInt(int64(r))

	case RuleBytes:
		b, err := Bytes(d, v)
		if err != nil {
			return err
		}
		out.SetBytes(b)

	case RuleBigInt:
		x, err := BigInt(d, v)
		if err != nil {
			return err
		}
		out.Addr().Interface().(*big.Int).Set(x)

	case RuleLimbs:
		l, err := LimbsOf(d, v)
		if err != nil {
			return err
		}
		out.Set(reflect.ValueOf(l))

	case RuleOption:
		elem := reflect.New(p.typ.Elem())
		if err := d.exec(p.elem, v, elem.Elem()); err != nil {
			return err
		}
		out.Set(elem)

	case RuleSeq:
		elems, err := Elems(v)
		if err != nil {
			return err
		}
		s := reflect.MakeSlice(p.typ, len(elems), len(elems))
		for i, e := range elems {
			if err := d.exec(p.elem, e, s.Index(i)); err != nil {
				return At(err, index(i))
			}
		}
		out.Set(s)

	case RuleArray:
		elems, err := TupleElems(v, p.typ.Len())
		if err != nil {
			return err
		}
		for i, e := range elems {
			if err := d.exec(p.elem, e, out.Index(i)); err != nil {
				return At(err, index(i))
			}
		}

	case RuleSet:
		elems, err := Elems(v)
		if err != nil {
			return err
		}
		m := reflect.MakeMapWithSize(p.typ, len(elems))
		unit := reflect.Zero(p.typ.Elem())
		for i, e := range elems {
			k := reflect.New(p.typ.Key()).Elem()
			if err := d.exec(p.key, e, k); err != nil {
				return At(err, index(i))
			}
			m.SetMapIndex(k, unit)
		}
		out.Set(m)

	case RuleMap:
		entries, err := Entries(v)
		if err != nil {
			return err
		}
		m := reflect.MakeMapWithSize(p.typ, len(entries))
		for _, e := range entries {
			k := reflect.New(p.typ.Key()).Elem()
			if err := d.exec(p.key, e.Key, k); err != nil {
				return At(err, keySeg(e.Key))
			}
			x := reflect.New(p.typ.Elem()).Elem()
			if err := d.exec(p.elem, e.Value, x); err != nil {
				return At(err, keySeg(e.Key))
			}
			m.SetMapIndex(k, x)
		}
		out.Set(m)

	case RuleStruct:
		fields, err := Fields(v)
		if err != nil {
			return err
		}
		for _, fp := range p.fields {
			f, ok, err := Lookup(fields, fp.key)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := d.exec(fp.plan, f.Value, out.Field(fp.index)); err != nil {
				return At(err, f.Name)
			}
		}

	case RuleTuple:
		elems, err := TupleElems(v, len(p.fields))
		if err != nil {
			return err
		}
		for i, fp := range p.fields {
			if err := d.exec(fp.plan, elems[i], out.Field(fp.index)); err != nil {
				return At(err, index(i))
			}
		}

	case RuleSum:
		sel, err := Select(v, p.sum.Layout, p.sum.Variants)
		if err != nil {
			return err
		}
		vp := p.variants[sel.Index]
		x := reflect.New(vp.typ).Elem()
		if sel.Unit {
			if vp.typ.Kind() == reflect.Pointer {
				x = reflect.New(vp.typ.Elem())
			}
		} else if err := d.exec(vp, sel.Payload, x); err != nil {
			return At(err, sel.Name)
		}
		out.Set(x)

	case RuleEnum:
		i, err := UnitName(v, *p.enum)
		if err != nil {
			return err
		}
		out.Set(p.enum.values[i].Convert(p.typ))

	case RuleUnmarshaler:
		return out.Addr().Interface().(Unmarshaler).DecodeITF(d, v)

	default:
		return errors.Unsupported(errors.PhaseDecode, "no decode rule for "+p.typ.String())
	}
	return nil
}
