package record

import (
	"errors"
	"fmt"
)

var (
	ErrRequired     = errors.New("is required")
	ErrNoBins       = errors.New("at least one bin with a name and value is required")
	ErrDuplicateBin = errors.New("duplicate bin name")
	ErrInvalid      = errors.New("is invalid")
	ErrMalformed    = errors.New("malformed JSON")
)

// FieldError is a validation failure attached to one form field or bin.
type FieldError struct {
	Field string // form field or bin name
	Err   error  // one of the Err* sentinels
	Msg   string // optional detail
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Err, ErrDuplicateBin):
		return fmt.Sprintf("Duplicate bin name: %q", e.Field)
	case errors.Is(e.Err, ErrNoBins):
		return e.Err.Error()
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	default:
		return fmt.Sprintf("%s %s", e.Field, e.Err)
	}
}

func (e *FieldError) Unwrap() error { return e.Err }
