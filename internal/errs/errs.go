// Package errs defines the error taxonomy shared by all nucleai components.
// Every error carries a human-readable message plus a recovery hint aimed at
// both operators and AI agents driving the library.
package errs

import "fmt"

// Kind classifies a failure by what the caller can do about it.
type Kind int

const (
	// KindAuth covers missing or rejected credentials.
	KindAuth Kind = iota
	// KindConnectivity covers unreachable hosts and 5xx responses.
	KindConnectivity
	// KindValidation covers malformed input data and schema mismatches.
	KindValidation
	// KindData covers embedding and search backend failures.
	KindData
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindConnectivity:
		return "connectivity"
	case KindValidation:
		return "validation"
	case KindData:
		return "data"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is the concrete error type used across the library.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error with no underlying cause.
func New(kind Kind, message, hint string) *Error {
	return &Error{Kind: kind, Message: message, Hint: hint}
}

// Wrap constructs an Error around an underlying cause.
func Wrap(kind Kind, cause error, message, hint string) *Error {
	return &Error{Kind: kind, Message: message, Hint: hint, cause: cause}
}

// Authf builds an authentication error.
func Authf(hint, format string, args ...any) *Error {
	return New(KindAuth, fmt.Sprintf(format, args...), hint)
}

// Connectivityf builds a connectivity error.
func Connectivityf(hint, format string, args ...any) *Error {
	return New(KindConnectivity, fmt.Sprintf(format, args...), hint)
}

// Validationf builds a validation error.
func Validationf(hint, format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...), hint)
}

// Dataf builds a data-processing error.
func Dataf(hint, format string, args ...any) *Error {
	return New(KindData, fmt.Sprintf(format, args...), hint)
}

// HintOf returns the recovery hint carried by err, or "" when err is not an
// *Error.
func HintOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Hint
	}
	return ""
}

// KindOf reports the kind carried by err. The second return is false when err
// is not an *Error.
func KindOf(err error) (Kind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return 0, false
}
