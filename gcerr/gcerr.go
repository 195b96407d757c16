// Package gcerr defines the error kinds shared by every gcstream
// subcommand. Errors are wrapped with github.com/cockroachdb/errors so
// that gate index / wire id context survives across package boundaries
// and prints in a useful form on the error stream.
package gcerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies a gcstream failure.
type Kind int

// Recognized error kinds.
const (
	// Parse indicates a malformed Bristol circuit.
	Parse Kind = iota
	// Structural indicates a topology, arity, or wire-bounds violation.
	Structural
	// IO indicates a filesystem or stream I/O failure.
	IO
	// Seed indicates a seed file was not exactly 32 bytes.
	Seed
	// Crypto indicates a fixed-key AES initialization failure.
	Crypto
	// EvalInconsistency indicates zero or more than one AND row decrypted.
	EvalInconsistency
	// VersionMismatch indicates an artifact from an incompatible version.
	VersionMismatch
)

func (k Kind) String() string {
	switch k {
	case Parse:
		return "ParseError"
	case Structural:
		return "StructuralError"
	case IO:
		return "IoError"
	case Seed:
		return "SeedError"
	case Crypto:
		return "CryptoError"
	case EvalInconsistency:
		return "EvaluationInconsistency"
	case VersionMismatch:
		return "VersionMismatch"
	default:
		return fmt.Sprintf("{Kind %d}", int(k))
	}
}

// Error is a gcstream error tagged with a Kind and optional gate/wire
// context.
type Error struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.err
}

// New creates a new Error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a Kind and message, preserving the
// cause for errors.Is/As and error chain printing.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return New(kind, format, args...)
	}
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		err:  errors.Wrap(cause, kind.String()),
	}
}

// AtGate annotates an error with the gate index at which it occurred.
func AtGate(err error, gate uint64) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "gate %d", gate)
}

// AtWire annotates an error with the wire id at which it occurred.
func AtWire(err error, wire uint64) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "wire %d", wire)
}

// Is reports whether err is a gcerr.Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
