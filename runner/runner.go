// Package runner replays a decoded trace against a live implementation.
//
// The first state initializes the implementation; each later state is
// reached by one Step. After every state the runner checks the result and
// state invariants and stops at the first violation.
package runner

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/trace"
)

// Runner drives an implementation with actual state A through a trace of
// expected states S. Step results are of type R.
type Runner[S, A, R any] interface {
	Init(expected S) (A, error)
	Step(actual *A, expected S) (R, error)
	ResultInvariant(result R, expected S) (bool, error)
	StateInvariant(actual A, expected S) (bool, error)
}

// Funcs adapts plain functions to Runner. Nil invariants always hold.
type Funcs[S, A, R any] struct {
	InitFunc            func(expected S) (A, error)
	StepFunc            func(actual *A, expected S) (R, error)
	ResultInvariantFunc func(result R, expected S) (bool, error)
	StateInvariantFunc  func(actual A, expected S) (bool, error)
}

func (f Funcs[S, A, R]) Init(expected S) (A, error) {
	if f.InitFunc == nil {
		var zero A
		return zero, errors.New(errors.PhaseRun, errors.KindHook).Detail("no InitFunc").Build()
	}
	return f.InitFunc(expected)
}

func (f Funcs[S, A, R]) Step(actual *A, expected S) (R, error) {
	if f.StepFunc == nil {
		var zero R
		return zero, errors.New(errors.PhaseRun, errors.KindHook).Detail("no StepFunc").Build()
	}
	return f.StepFunc(actual, expected)
}

func (f Funcs[S, A, R]) ResultInvariant(result R, expected S) (bool, error) {
	if f.ResultInvariantFunc == nil {
		return true, nil
	}
	return f.ResultInvariantFunc(result, expected)
}

func (f Funcs[S, A, R]) StateInvariant(actual A, expected S) (bool, error) {
	if f.StateInvariantFunc == nil {
		return true, nil
	}
	return f.StateInvariantFunc(actual, expected)
}

// Options configures a replay.
type Options struct {
	// Logger receives one debug entry per replayed state.
	Logger *zap.Logger
}

// DefaultOptions returns options with a no-op logger.
func DefaultOptions() Options {
	return Options{Logger: zap.NewNop()}
}

// Status is the lifecycle of a Replay.
type Status uint8

const (
	NotStarted Status = iota
	Running
	Finished
	Failed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Replay walks one trace state by state. It is not safe for concurrent use.
type Replay[S, A, R any] struct {
	runner Runner[S, A, R]
	logger *zap.Logger
	err    error
	states []trace.State[S]
	actual A
	next   int
	status Status
}

// New prepares a replay of t against r.
func New[S, A, R any](t *trace.Trace[S], r Runner[S, A, R], opts Options) *Replay[S, A, R] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replay[S, A, R]{
		runner: r,
		logger: logger,
		states: t.States,
	}
}

// Status returns the current lifecycle state.
func (p *Replay[S, A, R]) Status() Status {
	return p.status
}

// Next returns the index of the state the next Step replays.
func (p *Replay[S, A, R]) Next() int {
	return p.next
}

// Actual returns the implementation state after the last replayed step.
func (p *Replay[S, A, R]) Actual() A {
	return p.actual
}

// Err returns the failure of a Failed replay.
func (p *Replay[S, A, R]) Err() error {
	return p.err
}

// Step replays the next state. Once the replay has finished or failed,
// Step does nothing and returns the failure, if any.
func (p *Replay[S, A, R]) Step() error {
	switch p.status {
	case Finished:
		return nil
	case Failed:
		return p.err
	}
	if p.next >= len(p.states) {
		p.status = Finished
		return nil
	}

	p.status = Running
	i := p.next
	expected := p.states[i].Value
	label := (&errors.StepError{Phase: errors.PhaseRun, Step: i}).Label()
	p.logger.Debug("step", zap.String("step", label))

	var err error
	if i == 0 {
		err = p.initial(expected)
	} else {
		err = p.step(expected)
	}
	if err != nil {
		p.status = Failed
		p.err = &errors.StepError{Phase: errors.PhaseRun, Step: i, Cause: err}
		p.logger.Debug("replay failed", zap.String("step", label), zap.Error(err))
		return p.err
	}

	p.next++
	if p.next == len(p.states) {
		p.status = Finished
	}
	return nil
}

// Run replays every remaining state.
func (p *Replay[S, A, R]) Run() error {
	for {
		if err := p.Step(); err != nil {
			return err
		}
		if p.status == Finished {
			return nil
		}
	}
}

func (p *Replay[S, A, R]) initial(expected S) error {
	actual, err := p.runner.Init(expected)
	if err != nil {
		return errors.Wrap(errors.PhaseRun, errors.KindHook, err, "init")
	}
	p.actual = actual
	return p.checkState(expected, "after initialization")
}

func (p *Replay[S, A, R]) step(expected S) error {
	result, err := p.runner.Step(&p.actual, expected)
	if err != nil {
		return errors.Wrap(errors.PhaseRun, errors.KindHook, err, "step")
	}
	ok, err := p.runner.ResultInvariant(result, expected)
	if err != nil {
		return errors.Wrap(errors.PhaseRun, errors.KindHook, err, "result invariant")
	}
	if !ok {
		return errors.New(errors.PhaseRun, errors.KindInvariant).
			Detail("result invariant failed after step %d", p.next).
			Build()
	}
	return p.checkState(expected, "after step "+strconv.Itoa(p.next))
}

func (p *Replay[S, A, R]) checkState(expected S, when string) error {
	ok, err := p.runner.StateInvariant(p.actual, expected)
	if err != nil {
		return errors.Wrap(errors.PhaseRun, errors.KindHook, err, "state invariant")
	}
	if !ok {
		return errors.New(errors.PhaseRun, errors.KindInvariant).
			Detail("state invariant failed %s", when).
			Build()
	}
	return nil
}

// Run replays all of t against r.
func Run[S, A, R any](t *trace.Trace[S], r Runner[S, A, R], opts Options) error {
	return New(t, r, opts).Run()
}
