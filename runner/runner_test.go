package runner

import (
	stderrors "errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/trace"
)

// counter is an implementation under test that increments by one per step.
type counter struct {
	skipAt int64
}

func (c *counter) Init(expected int64) (int64, error) { return expected, nil }

func (c *counter) Step(actual *int64, _ int64) (int64, error) {
	*actual++
	if *actual == c.skipAt {
		*actual++
	}
	return *actual, nil
}

func (c *counter) ResultInvariant(result, expected int64) (bool, error) {
	return result == expected, nil
}

func (c *counter) StateInvariant(actual, expected int64) (bool, error) {
	return actual == expected, nil
}

func states(values ...int64) *trace.Trace[int64] {
	t := &trace.Trace[int64]{}
	for _, v := range values {
		t.States = append(t.States, trace.State[int64]{Value: v})
	}
	return t
}

func wantStepError(t *testing.T, err error, step int, kind errors.Kind) *errors.Error {
	t.Helper()
	var se *errors.StepError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *errors.StepError", err)
	}
	if se.Phase != errors.PhaseRun || se.Step != step {
		t.Fatalf("step error = %v, want run step %d", err, step)
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != kind {
		t.Fatalf("cause = %v, want kind %s", se.Cause, kind)
	}
	return e
}

func TestRun_Succeeds(t *testing.T) {
	if err := Run(states(0, 1, 2), Runner[int64, int64, int64](&counter{}), DefaultOptions()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRun_EmptyTrace(t *testing.T) {
	p := New(states(), Runner[int64, int64, int64](&counter{}), DefaultOptions())
	if err := p.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p.Status() != Finished {
		t.Errorf("Status() = %v, want finished", p.Status())
	}
}

func TestRun_InvariantFailure(t *testing.T) {
	err := Run(states(0, 1, 2, 3), Runner[int64, int64, int64](&counter{skipAt: 2}), DefaultOptions())
	e := wantStepError(t, err, 2, errors.KindInvariant)
	if e.Detail != "result invariant failed after step 2" {
		t.Errorf("detail = %q", e.Detail)
	}
	if !errors.Is(err, errors.ErrInvariant) {
		t.Error("errors.Is(err, ErrInvariant) = false")
	}
}

func TestRun_InitialLabel(t *testing.T) {
	r := Funcs[int64, int64, int64]{
		InitFunc: func(expected int64) (int64, error) { return expected + 1, nil },
		StateInvariantFunc: func(actual, expected int64) (bool, error) {
			return actual == expected, nil
		},
	}
	err := Run(states(5), Runner[int64, int64, int64](r), Options{})
	wantStepError(t, err, 0, errors.KindInvariant)

	var se *errors.StepError
	errors.As(err, &se)
	if se.Label() != "Initial" {
		t.Errorf("Label() = %q, want Initial", se.Label())
	}
}

func TestRun_HookError(t *testing.T) {
	boom := stderrors.New("boom")
	r := Funcs[int64, int64, int64]{
		InitFunc: func(expected int64) (int64, error) { return expected, nil },
		StepFunc: func(actual *int64, _ int64) (int64, error) {
			if *actual == 1 {
				return 0, boom
			}
			*actual++
			return *actual, nil
		},
	}
	err := Run(states(0, 1, 2), Runner[int64, int64, int64](r), DefaultOptions())
	e := wantStepError(t, err, 2, errors.KindHook)
	if e.Cause != boom || !errors.Is(err, boom) {
		t.Errorf("cause = %v, want boom", e.Cause)
	}
}

func TestRun_MissingHooks(t *testing.T) {
	tests := []struct {
		name   string
		funcs  Funcs[int64, int64, int64]
		step   int
		detail string
	}{
		{
			name:   "no init",
			funcs:  Funcs[int64, int64, int64]{},
			step:   0,
			detail: "no InitFunc",
		},
		{
			name: "no step",
			funcs: Funcs[int64, int64, int64]{
				InitFunc: func(expected int64) (int64, error) { return expected, nil },
			},
			step:   1,
			detail: "no StepFunc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(states(0, 1), Runner[int64, int64, int64](tt.funcs), DefaultOptions())
			e := wantStepError(t, err, tt.step, errors.KindHook)

			var inner *errors.Error
			if !errors.As(e.Cause, &inner) || inner.Detail != tt.detail {
				t.Errorf("cause = %v, want %q", e.Cause, tt.detail)
			}
		})
	}
}

func TestReplay_StepByStep(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := New(states(0, 1, 2), Runner[int64, int64, int64](&counter{skipAt: 2}), Options{Logger: zap.New(core)})

	if p.Status() != NotStarted {
		t.Fatalf("Status() = %v, want not started", p.Status())
	}
	if err := p.Step(); err != nil {
		t.Fatalf("Step 0 failed: %v", err)
	}
	if p.Status() != Running || p.Next() != 1 || p.Actual() != 0 {
		t.Fatalf("after step 0: status %v next %d actual %d", p.Status(), p.Next(), p.Actual())
	}
	if err := p.Step(); err != nil {
		t.Fatalf("Step 1 failed: %v", err)
	}

	err := p.Step()
	wantStepError(t, err, 2, errors.KindInvariant)
	if p.Status() != Failed || p.Err() != err {
		t.Errorf("after failure: status %v err %v", p.Status(), p.Err())
	}
	if again := p.Step(); again != err {
		t.Errorf("Step after failure = %v, want the same error", again)
	}

	if n := logs.FilterMessage("step").Len(); n != 3 {
		t.Errorf("logged %d steps, want 3", n)
	}
	if n := logs.FilterMessage("replay failed").Len(); n != 1 {
		t.Errorf("logged %d failures, want 1", n)
	}
}
