// Package trace assembles ITF traces: metadata, parameters, variables and
// the sequence of states, decoded into a typed state S.
//
// A trace is first parsed into a Trace[value.Value], whose states hold the
// variable bindings of each state as a Record. Decode then turns it into a
// Trace[S] for any S the decoder supports; the same parsed trace can be
// decoded repeatedly with different state types.
package trace

// Meta is the "#meta" object of a trace. Keys other than the well-known
// ones are kept in Other as generic trees.
type Meta struct {
	VarTypes          map[string]string
	Timestamp         *uint64
	Other             map[string]any
	Format            string
	FormatDescription string
	Source            string
	Description       string
}

// StateMeta is the "#meta" object of one state.
type StateMeta struct {
	Index *uint64
	Other map[string]any
}

// State is one state of a trace.
type State[S any] struct {
	Value S
	Meta  StateMeta
}

// Trace is a sequence of states produced by a model checker.
type Trace[S any] struct {
	// Loop is the index of the state a lasso trace returns to.
	Loop   *uint64
	Meta   Meta
	Params []string
	Vars   []string
	States []State[S]
}

// Len returns the number of states.
func (t *Trace[S]) Len() int {
	return len(t.States)
}

// IsLasso reports whether the trace ends in a loop.
func (t *Trace[S]) IsLasso() bool {
	return t.Loop != nil
}

// LoopState returns the state the lasso loops back to.
func (t *Trace[S]) LoopState() (State[S], bool) {
	if t.Loop == nil || *t.Loop >= uint64(len(t.States)) {
		return State[S]{}, false
	}
	return t.States[*t.Loop], true
}
