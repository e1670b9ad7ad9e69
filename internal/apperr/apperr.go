// Package apperr classifies ledger failures into machine-checkable kinds.
//
// Domain packages declare their sentinel errors with New and wrap them with
// fmt.Errorf("...: %w", ErrX) to add context. The RPC layer only ever looks
// at KindOf to pick a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	// KindInternal is anything unclassified (storage faults, bugs).
	KindInternal Kind = iota
	// KindValidation is a bad amount, a missing field or a malformed reference.
	KindValidation
	// KindNotFound is an absent wallet, transaction, participant, family or group.
	KindNotFound
	// KindForbidden is an ownership or authorization failure.
	KindForbidden
	// KindConflict is a state precondition failure: insufficient balance,
	// already linked, not linked, scope change, already settled.
	KindConflict
	// KindDependency is a best-effort collaborator failure (notifications).
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// Error is a classified error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New returns a classified sentinel error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err under kind, keeping it in the chain.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation, NotFound, Forbidden and Conflict build ad-hoc classified errors.
func Validation(format string, args ...any) error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
