package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingIdentifier = errors.New("note has no persisted identifier")
	ErrNoteNotFound      = errors.New("note not found")
	ErrEmptyTitle        = errors.New("title can't be empty")
	ErrTitleTooLong      = fmt.Errorf("title can't be longer than %d characters", MaxTitleLength)
)

type DecodeKind string

const (
	DecodeMissingKey   DecodeKind = "missing_key"
	DecodeTypeMismatch DecodeKind = "type_mismatch"
	DecodeMissingValue DecodeKind = "missing_value"
	DecodeCorrupted    DecodeKind = "corrupted"
)

// DecodeError describes why a payload could not be turned into the expected
// shape. Field is empty when the failure is not tied to a single key.
type DecodeError struct {
	Kind  DecodeKind
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("decode %s (%s): %v", e.Kind, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("decode %s (%s)", e.Kind, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("decode %s", e.Kind)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
