package view

import (
	"errors"
	"fmt"
)

// Kind classifies the failure of a view operation.
type Kind uint8

const (
	// KindConnection is a failed connect or disconnect.
	KindConnection Kind = iota + 1
	// KindFetch is a failed listing, scan or search.
	KindFetch
	// KindValidation is rejected input; nothing was sent to the store.
	KindValidation
	// KindMutation is a failed put or delete; the displayed records are unchanged.
	KindMutation
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindFetch:
		return "fetch"
	case KindValidation:
		return "validation"
	case KindMutation:
		return "mutation"
	default:
		return "unknown"
	}
}

var (
	ErrNoNamespace    = errors.New("no namespace selected")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrPageSize       = errors.New("page size must be positive")
)

// Error is the single human readable failure of one view operation.
type Error struct {
	Kind Kind
	Op   string // what was attempted, e.g. "load sets"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of a view error.
func KindOf(err error) (Kind, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a view error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
