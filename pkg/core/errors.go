package core

import "fmt"

// Kind is the closed set of error kinds a component may raise, per the
// error-handling design: Configuration and DataIO abort the run at
// construction time; CoordinateKindUnsupported aborts at first use;
// IntegratorStalled/HorizonReached/EscapeReached terminate only the
// affected pixel; Invariant always aborts the run.
type Kind int

const (
	Configuration Kind = iota
	CoordinateKindUnsupported
	GridIndexOutOfRange
	IntegratorStalled
	HorizonReached
	EscapeReached
	DataIO
	Invariant
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "Configuration"
	case CoordinateKindUnsupported:
		return "CoordinateKindUnsupported"
	case GridIndexOutOfRange:
		return "GridIndexOutOfRange"
	case IntegratorStalled:
		return "IntegratorStalled"
	case HorizonReached:
		return "HorizonReached"
	case EscapeReached:
		return "EscapeReached"
	case DataIO:
		return "DataIO"
	case Invariant:
		return "Invariant"
	default:
		return "Unknown"
	}
}

// Error is a structured error carrying one of the closed Kind values
// plus the operation that raised it, following the standard library's
// own wrapped-error convention (errors.Is/errors.As both work against
// it via Unwrap and Is).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, &core.Error{Kind: X}) match any *Error with the
// same Kind, regardless of Op/Err, so callers can test error classes
// without constructing the exact wrapped value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError constructs an *Error for kind k raised by operation op,
// optionally wrapping a lower-level cause.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Fatal reports whether a Kind aborts the whole run (Configuration,
// DataIO, Invariant, CoordinateKindUnsupported) as opposed to merely
// terminating the affected pixel (IntegratorStalled, HorizonReached,
// EscapeReached).
func (k Kind) Fatal() bool {
	switch k {
	case IntegratorStalled, HorizonReached, EscapeReached:
		return false
	default:
		return true
	}
}
