// internal/domain/fault/fault.go

// Package fault defines the error taxonomy shared by services and handlers.
// Handlers translate a Fault's kind into an HTTP status; nothing crosses the
// request boundary unformatted.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Validation marks malformed or out-of-range input.
	Validation Kind = iota
	// NotFound marks a missing listing, actor or boost.
	NotFound
	// Dependency marks an unreachable or timed-out external collaborator.
	Dependency
	// Integrity marks a request that is well formed but violates a business
	// rule, such as a boost budget below the computed price.
	Integrity
)

// Fault is an error with a kind and optional structured details that are
// surfaced to the caller.
type Fault struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// New creates a fault of the given kind.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// Newf creates a fault with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

// WithDetails attaches structured details surfaced in the error envelope.
func (f *Fault) WithDetails(details map[string]interface{}) *Fault {
	f.Details = details
	return f
}

// KindOf returns the kind of err if it is (or wraps) a Fault. Unclassified
// errors are treated as dependency failures.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return Dependency
}

// DetailsOf returns the structured details of err, if any.
func DetailsOf(err error) map[string]interface{} {
	var f *Fault
	if errors.As(err, &f) {
		return f.Details
	}
	return nil
}

// IsKind reports whether err is a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}
