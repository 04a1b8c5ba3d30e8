// Package herrors defines the domain-level error taxonomy shared by every
// HEC component. Errors are *Error values carrying a Kind, built with New or
// Wrap (Wrap keeps the underlying cause reachable through Unwrap), so callers
// discriminate on Kind with Is or errors.As.
package herrors

import (
	"errors"
	"fmt"
)

// Kind tags a domain error with its taxonomy bucket, independent of the
// underlying Go error chain.
type Kind int

const (
	// Unknown is the zero value and should never be returned deliberately.
	Unknown Kind = iota
	InvalidParameters
	KeyNotFound
	KeyCorrupt
	KeyMismatch
	NoiseExceeded
	BootstrapRequired
	UnsupportedOp
	InvalidCiphertext
	ShareVerificationFailed
	InsufficientShares
	ProofVerificationFailed
	Cancelled
	Timeout
	RoundBusy
	RoundTimeout
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidParameters:
		return "InvalidParameters"
	case KeyNotFound:
		return "KeyNotFound"
	case KeyCorrupt:
		return "KeyCorrupt"
	case KeyMismatch:
		return "KeyMismatch"
	case NoiseExceeded:
		return "NoiseExceeded"
	case BootstrapRequired:
		return "BootstrapRequired"
	case UnsupportedOp:
		return "UnsupportedOp"
	case InvalidCiphertext:
		return "InvalidCiphertext"
	case ShareVerificationFailed:
		return "ShareVerificationFailed"
	case InsufficientShares:
		return "InsufficientShares"
	case ProofVerificationFailed:
		return "ProofVerificationFailed"
	case Cancelled:
		return "Cancelled"
	case Timeout:
		return "Timeout"
	case RoundBusy:
		return "RoundBusy"
	case RoundTimeout:
		return "RoundTimeout"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is a domain error carrying a taxonomy Kind and an optional wrapped
// cause. Components should construct these with New or Wrap rather than
// building the struct literal directly, so Kind and message stay in sync.
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

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, herrors.New(herrors.KeyNotFound, "")) style checks,
// though the idiomatic path is Kind-based comparison via As.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error tagging an existing error with a taxonomy Kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
