// Package errs defines the semantic error kinds from spec §7. They are
// plain wrapped errors (no custom error-handling framework), matching the
// teacher's fmt.Errorf("...: %w", err) style throughout its services and
// repositories layers.
package errs

import "fmt"

// Kind tags an error with one of the semantic categories from spec §7.
type Kind string

const (
	KindTransientFetch    Kind = "transient_fetch"
	KindTraderFailure     Kind = "trader_failure"
	KindValidationFailure Kind = "validation_failure"
	KindDuplicateEvent    Kind = "duplicate_event"
	KindCycleOverlap      Kind = "cycle_overlap"
	KindFatalStore        Kind = "fatal_store"
)

// Error is a semantically-kinded error that wraps an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func TransientFetch(message string, cause error) *Error {
	return New(KindTransientFetch, message, cause)
}

func TraderFailure(message string, cause error) *Error {
	return New(KindTraderFailure, message, cause)
}

func ValidationFailure(message string, cause error) *Error {
	return New(KindValidationFailure, message, cause)
}

func DuplicateEvent(message string, cause error) *Error {
	return New(KindDuplicateEvent, message, cause)
}

func CycleOverlap(message string) *Error {
	return New(KindCycleOverlap, message, nil)
}

func FatalStore(message string, cause error) *Error {
	return New(KindFatalStore, message, cause)
}

// Is reports whether err (or any error it wraps) has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
