package itf

import (
	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/trace"
	"github.com/wippyai/itf/value"
)

// Value is a parsed ITF value.
type Value = value.Value

// Trace is an ITF trace over states of type S.
type Trace[S any] = trace.Trace[S]

// State is one state of a Trace.
type State[S any] = trace.State[S]

// TraceFromText parses ITF JSON text and decodes its states into S with
// the default decoder.
func TraceFromText[S any](text []byte) (*Trace[S], error) {
	return trace.DecodeText[S](nil, text)
}

// TraceFromParsed decodes a generic JSON tree, as produced by json.Unmarshal
// into any, into a trace over S.
func TraceFromParsed[S any](tree any) (*Trace[S], error) {
	t, err := trace.FromTree(tree)
	if err != nil {
		return nil, err
	}
	return trace.Decode[S](nil, t)
}

// DecodeValue decodes a single ITF expression given as a generic JSON tree.
func DecodeValue[S any](tree any) (S, error) {
	v, err := value.FromTree(tree)
	if err != nil {
		var zero S
		return zero, err
	}
	return FromValue[S](v)
}

// FromValue decodes a parsed ITF value into S.
func FromValue[S any](v Value) (S, error) {
	return decoder.Decode[S](v)
}
