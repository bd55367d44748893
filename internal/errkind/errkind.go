// Package errkind provides the enumerated error kinds the analytical core
// uses to let callers branch on failure without parsing messages.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is one of the semantic error kinds of spec.md §7.
type Kind string

const (
	NotFound           Kind = "not_found"
	InvalidArgumentKnd Kind = "invalid_argument"
	PreconditionFailed Kind = "precondition_not_met"
	InconsistentData   Kind = "inconsistent_data"
	DeadlineExceeded   Kind = "deadline_exceeded"
	Cancelled          Kind = "cancelled"
)

// TypedError carries a Kind plus a human-readable message and optional cause.
type TypedError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *TypedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TypedError) Unwrap() error {
	return e.Err
}

func newErr(kind Kind, message string) error {
	return &TypedError{Kind: kind, Message: message}
}

// NotFoundErr builds a not_found error.
func NotFoundErr(message string) error { return newErr(NotFound, message) }

// InvalidArgument builds an invalid_argument error.
func InvalidArgument(message string) error { return newErr(InvalidArgumentKnd, message) }

// PreconditionNotMet builds a precondition_not_met error.
func PreconditionNotMet(message string) error { return newErr(PreconditionFailed, message) }

// InconsistentDataErr builds an inconsistent_data error.
func InconsistentDataErr(message string) error { return newErr(InconsistentData, message) }

// DeadlineExceededErr builds a deadline_exceeded error.
func DeadlineExceededErr(message string) error { return newErr(DeadlineExceeded, message) }

// CancelledErr builds a cancelled error.
func CancelledErr(message string) error { return newErr(Cancelled, message) }

// Wrap attaches a causal error while keeping the same kind, mirroring the
// teacher's errors.Wrap for sentinel errors.
func Wrap(kind Kind, message string, cause error) error {
	if cause == nil {
		return newErr(kind, message)
	}
	return &TypedError{Kind: kind, Message: message, Err: cause}
}

// Of classifies err's Kind, returning ("", false) if err is not a TypedError
// anywhere in its chain.
func Of(err error) (Kind, bool) {
	var te *TypedError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// Is reports whether err's Kind matches kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	return ok && k == kind
}
