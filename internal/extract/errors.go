package extract

import (
	"errors"
	"fmt"
)

// FailureClass tells the chain how to treat a strategy failure. All classes
// advance to the next strategy; they differ only in how the attempt is
// recorded for diagnostics.
type FailureClass int

// Failure classes
const (
	// FailureTransient covers network errors, timeouts and empty rate
	// buckets; the same strategy is never retried within one chain run.
	FailureTransient FailureClass = iota
	// FailurePermanent covers sources that are genuinely unavailable
	// (not found, private). A later strategy may still reach a public
	// metadata-only fallback.
	FailurePermanent
	// FailureBlocked covers rate-limited or access-denied responses,
	// recorded distinctly for operator visibility.
	FailureBlocked
)

// String returns the failure class name
func (c FailureClass) String() string {
	switch c {
	case FailurePermanent:
		return "permanent"
	case FailureBlocked:
		return "blocked"
	default:
		return "transient"
	}
}

// ErrExhausted means every strategy failed or the deadline elapsed before
// any strategy produced a usable result
var ErrExhausted = errors.New("all extraction strategies exhausted")

// ClassifiedError attaches a FailureClass to a strategy failure so the
// chain can apply its advance rule without inspecting causes.
type ClassifiedError struct {
	Class FailureClass
	Err   error
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Class, e.Err)
}

// Unwrap returns the underlying cause
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Classify wraps err with the given failure class
func Classify(class FailureClass, err error) *ClassifiedError {
	return &ClassifiedError{Class: class, Err: err}
}

// ClassOf extracts the failure class from err, defaulting to transient for
// unclassified errors
func ClassOf(err error) FailureClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return FailureTransient
}
