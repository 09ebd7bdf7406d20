package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // wire text/tree to Value
	PhaseCompile Phase = "compile" // Go type to decode plan
	PhaseDecode  Phase = "decode"  // Value to Go
	PhaseRun     Phase = "run"     // trace replay
	PhaseCodegen Phase = "codegen" // static decoder generation
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidType     Kind = "invalid_type"
	KindFieldNotFound   Kind = "field_not_found"
	KindDuplicateField  Kind = "duplicate_field"
	KindUnknownTag      Kind = "unknown_tag"
	KindUnknownVariant  Kind = "unknown_variant"
	KindUnsupportedType Kind = "unsupported_type"
	KindRange           Kind = "range"
	KindArity           Kind = "arity"
	KindCustom          Kind = "custom"
	KindMalformed       Kind = "malformed"
	KindUnsupported     Kind = "unsupported"
	KindNilPointer      Kind = "nil_pointer"
	KindInvariant       Kind = "invariant"
	KindHook            Kind = "hook"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	Expected string
	Actual   string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(FormatPath(e.Path))
	}

	shape := e.GoType != "" || e.Expected != ""
	if shape {
		b.WriteString(": ")
		if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		}
		if e.Expected != "" {
			if e.GoType != "" {
				b.WriteString(", ")
			}
			b.WriteString("expected ")
			b.WriteString(e.Expected)
			if e.Actual != "" {
				b.WriteString(", found ")
				b.WriteString(e.Actual)
			}
		}
	}

	if e.Detail != "" {
		if shape {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a
// phase matches on kind alone, which is how the Err* sentinels work.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks that do not care about the phase.
var (
	ErrInvalidType     = &Error{Kind: KindInvalidType}
	ErrFieldNotFound   = &Error{Kind: KindFieldNotFound}
	ErrDuplicateField  = &Error{Kind: KindDuplicateField}
	ErrUnknownTag      = &Error{Kind: KindUnknownTag}
	ErrUnknownVariant  = &Error{Kind: KindUnknownVariant}
	ErrUnsupportedType = &Error{Kind: KindUnsupportedType}
	ErrRange           = &Error{Kind: KindRange}
	ErrArity           = &Error{Kind: KindArity}
	ErrCustom          = &Error{Kind: KindCustom}
	ErrMalformed       = &Error{Kind: KindMalformed}
	ErrInvariant       = &Error{Kind: KindInvariant}
	ErrHook            = &Error{Kind: KindHook}
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// FormatPath joins path segments; index segments ("[3]") attach without a dot.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Shape sets the expected and actual wire shapes
func (b *Builder) Shape(expected, actual string) *Builder {
	b.err.Expected = expected
	b.err.Actual = actual
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidType creates a shape mismatch error
func InvalidType(phase Phase, path []string, expected, actual string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidType,
		Path:     path,
		Expected: expected,
		Actual:   actual,
	}
}

// FieldNotFound creates a missing field error
func FieldNotFound(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldNotFound,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
		Value:  fieldName,
	}
}

// DuplicateField creates a duplicate field error
func DuplicateField(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateField,
		Path:   path,
		Detail: fmt.Sprintf("field %q appears more than once", fieldName),
		Value:  fieldName,
	}
}

// UnknownTag creates a missing discriminator error
func UnknownTag(phase Phase, path []string, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownTag,
		Path:   path,
		Detail: fmt.Sprintf("discriminator %q not found", tag),
		Value:  tag,
	}
}

// UnknownVariant creates an unknown variant error; Value holds the tag string.
func UnknownVariant(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownVariant,
		Path:   path,
		Detail: fmt.Sprintf("unknown variant %q", name),
		Value:  name,
	}
}

// UnsupportedType creates an error for an unserializable value reaching a typed target
func UnsupportedType(phase Phase, path []string, goType, repr string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedType,
		Path:   path,
		GoType: goType,
		Detail: fmt.Sprintf("unserializable value %q", repr),
		Value:  repr,
	}
}

// Range creates an overflow error
func Range(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRange,
		Path:   path,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// Arity creates a fixed-size mismatch error
func Arity(phase Phase, path []string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Path:   path,
		Detail: fmt.Sprintf("expected %d elements but found %d", want, got),
		Value:  got,
	}
}

// Custom creates a target-defined validation error
func Custom(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCustom,
		Path:   path,
		Detail: detail,
	}
}

// Malformed creates a wire-level parse error
func Malformed(path []string, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindMalformed,
		Path:   path,
		Detail: detail,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Prefix returns err with seg prepended to its path. Any other error, such
// as one returned by a DecodeITF method, becomes the Cause of a KindCustom
// decode error at seg.
func Prefix(err error, seg ...string) error {
	if err == nil || len(seg) == 0 {
		return err
	}
	e, ok := err.(*Error)
	if !ok {
		return &Error{Phase: PhaseDecode, Kind: KindCustom, Path: seg, Cause: err}
	}
	path := make([]string, 0, len(seg)+len(e.Path))
	path = append(path, seg...)
	path = append(path, e.Path...)
	cp := *e
	cp.Path = path
	return &cp
}

// StepError attributes an error to one state of a trace.
type StepError struct {
	Cause error
	Phase Phase
	Step  int
}

// Label returns "Initial" for the first replayed state and the step index otherwise.
func (e *StepError) Label() string {
	if e.Phase == PhaseRun && e.Step == 0 {
		return "Initial"
	}
	return strconv.Itoa(e.Step)
}

func (e *StepError) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] step ")
	b.WriteString(e.Label())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type
func (e *StepError) Is(target error) bool {
	_, ok := target.(*StepError)
	return ok
}
