package trace

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// Decode decodes every state of t into S with d, or with the default
// decoder when d is nil. Metadata is copied, so the result shares no
// mutable state with t. The first state that fails aborts decoding with a
// *errors.StepError naming it.
func Decode[S any](d *decoder.Decoder, t *Trace[value.Value]) (*Trace[S], error) {
	out := &Trace[S]{
		Loop:   cloneIndex(t.Loop),
		Meta:   t.Meta.clone(),
		Params: slices.Clone(t.Params),
		Vars:   slices.Clone(t.Vars),
		States: make([]State[S], len(t.States)),
	}
	for i, st := range t.States {
		s, err := decoder.As[S](d, st.Value)
		if err != nil {
			Logger().Debug("state decode failed", zap.Int("step", i), zap.Error(err))
			return nil, &errors.StepError{Phase: errors.PhaseDecode, Step: i, Cause: err}
		}
		out.States[i] = State[S]{Value: s, Meta: st.Meta.clone()}
	}
	return out, nil
}

func cloneIndex(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (m Meta) clone() Meta {
	m.VarTypes = maps.Clone(m.VarTypes)
	m.Timestamp = cloneIndex(m.Timestamp)
	m.Other = maps.Clone(m.Other)
	return m
}

func (m StateMeta) clone() StateMeta {
	return StateMeta{Index: cloneIndex(m.Index), Other: maps.Clone(m.Other)}
}

// DecodeText parses text and decodes its states into S.
func DecodeText[S any](d *decoder.Decoder, text []byte) (*Trace[S], error) {
	t, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Decode[S](d, t)
}
