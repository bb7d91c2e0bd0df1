package simnet

import "github.com/pkg/errors"

// ErrorKind is the machine-readable classification of a simulation error,
// per the error taxonomy: invalid_input, inconsistent_event,
// propensity_error, stoichiometry_violation, cancelled, internal.
type ErrorKind string

const (
	// KindInvalidInput marks shape/type/rowname mismatches and other
	// construction-time problems. Fails fast; no partial state exists yet.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindInconsistentEvent marks an event that requests more individuals
	// than are available, references an unknown kind, or an out-of-range
	// select/shift column.
	KindInconsistentEvent ErrorKind = "inconsistent_event"
	// KindPropensityError marks a propensity evaluating to NaN or negative.
	KindPropensityError ErrorKind = "propensity_error"
	// KindStoichiometryViolation marks a fired transition that would drive
	// a compartment negative.
	KindStoichiometryViolation ErrorKind = "stoichiometry_violation"
	// KindCancelled marks a cooperative cancellation.
	KindCancelled ErrorKind = "cancelled"
	// KindInternal marks a failed invariant, e.g. rate_sum corruption
	// surviving a from-scratch recompute.
	KindInternal ErrorKind = "internal"
)

// SimError is the error type surfaced to callers of the engine. It carries
// both a human-readable message (via the wrapped error) and a
// machine-readable Kind so callers can branch on disposition without
// string-matching.
type SimError struct {
	Kind ErrorKind
	err  error
}

func (e *SimError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *SimError) Unwrap() error {
	return e.err
}

// newSimError builds a SimError wrapping err with additional context.
func newSimError(kind ErrorKind, err error, context string) *SimError {
	return &SimError{
		Kind: kind,
		err:  errors.Wrap(err, context),
	}
}

func newSimErrorf(kind ErrorKind, format string, args ...interface{}) *SimError {
	return &SimError{
		Kind: kind,
		err:  errors.Errorf(format, args...),
	}
}

// The following are message templates for common invalid_input conditions,
// in the same style as the teacher's own parameter-error constants.
const (
	ShapeMismatchError          = "%s has shape %v, expected %v"
	RownameMismatchError        = "%s rownames do not match %s rownames"
	NonIncreasingTspanError     = "tspan must be strictly increasing at index %d: %v >= %v"
	NegativeCompartmentError    = "u0[%d,%d] = %d is negative"
	InvalidSeedError            = "seed must be non-negative, got %d"
	InvalidThreadCountError     = "n_threads must be >= 1, got %d"
	UnknownEventKindError       = "event %d: unknown event kind %d"
	SelectOutOfRangeError       = "event %d: select column %d out of range [0,%d)"
	ShiftOutOfRangeError        = "event %d: shift column %d out of range [0,%d)"
	RequestedCountExceedsPool   = "event %d: requested %d individuals but only %d available in node %d"
	NegativeResultAfterEvent    = "event %d: applying event produced negative count in compartment %d of node %d"
	NodeIndexOutOfRangeError    = "node index %d out of range [1,%d)"
	InvalidFloatParameterError  = "%s = %v is invalid: %s"
)
