package decoder

import (
	"github.com/wippyai/itf/value"
)

// Func decodes one Value into a T. Leaf decoders, generated sum decoders
// and the combinators below all share this shape, so generated code can
// compose them for nested types.
type Func[T any] func(d *Decoder, v value.Value) (T, error)

// SliceOf decodes a List, Tuple or Set element by element.
func SliceOf[T any](elem Func[T]) Func[[]T] {
	return func(d *Decoder, v value.Value) ([]T, error) {
		elems, err := Elems(v)
		if err != nil {
			return nil, err
		}
		out := make([]T, len(elems))
		for i, e := range elems {
			x, err := elem(d, e)
			if err != nil {
				return nil, At(err, index(i))
			}
			out[i] = x
		}
		return out, nil
	}
}

// ArrayOf is SliceOf with an exact length.
func ArrayOf[T any](n int, elem Func[T]) Func[[]T] {
	return func(d *Decoder, v value.Value) ([]T, error) {
		elems, err := TupleElems(v, n)
		if err != nil {
			return nil, err
		}
		out := make([]T, n)
		for i, e := range elems {
			x, err := elem(d, e)
			if err != nil {
				return nil, At(err, index(i))
			}
			out[i] = x
		}
		return out, nil
	}
}

// ArrayInto decodes exactly len(dst) positional elements into dst.
// Generated code decodes a [N]T field through it with out[:].
func ArrayInto[T any](d *Decoder, v value.Value, dst []T, elem Func[T]) error {
	elems, err := TupleElems(v, len(dst))
	if err != nil {
		return err
	}
	for i, e := range elems {
		x, err := elem(d, e)
		if err != nil {
			return At(err, index(i))
		}
		dst[i] = x
	}
	return nil
}

// SetOf decodes a List, Tuple or Set into a Go set.
func SetOf[K comparable](elem Func[K]) Func[map[K]struct{}] {
	return func(d *Decoder, v value.Value) (map[K]struct{}, error) {
		elems, err := Elems(v)
		if err != nil {
			return nil, err
		}
		out := make(map[K]struct{}, len(elems))
		for i, e := range elems {
			k, err := elem(d, e)
			if err != nil {
				return nil, At(err, index(i))
			}
			out[k] = struct{}{}
		}
		return out, nil
	}
}

// MapOf decodes a Map, or a Record keyed by field name. A key seen twice
// keeps its last value.
func MapOf[K comparable, V any](key Func[K], val Func[V]) Func[map[K]V] {
	return func(d *Decoder, v value.Value) (map[K]V, error) {
		entries, err := Entries(v)
		if err != nil {
			return nil, err
		}
		out := make(map[K]V, len(entries))
		for _, e := range entries {
			k, err := key(d, e.Key)
			if err != nil {
				return nil, At(err, keySeg(e.Key))
			}
			x, err := val(d, e.Value)
			if err != nil {
				return nil, At(err, keySeg(e.Key))
			}
			out[k] = x
		}
		return out, nil
	}
}

// PtrOf decodes the Value into a newly allocated T.
func PtrOf[T any](elem Func[T]) Func[*T] {
	return func(d *Decoder, v value.Value) (*T, error) {
		x, err := elem(d, v)
		if err != nil {
			return nil, err
		}
		return &x, nil
	}
}

// Via decodes a type through its DecodeITF method.
func Via[T any, P interface {
	*T
	Unmarshaler
}](d *Decoder, v value.Value) (T, error) {
	var x T
	if err := P(&x).DecodeITF(d, v); err != nil {
		var zero T
		return zero, err
	}
	return x, nil
}

// Reflect decodes with the reflection engine of d. Generated code falls
// back to it for types it has no static decoder for.
func Reflect[T any](d *Decoder, v value.Value) (T, error) {
	return As[T](d, v)
}
