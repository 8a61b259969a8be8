package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every specific error below matches its kind with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNullArgument    = errors.New("null argument")
	ErrDuplicateID     = errors.New("duplicate identifier")
	ErrMissingField    = errors.New("missing field")
	ErrIOFailure       = errors.New("io failure")
)

var (
	ErrInvalidQuery    = kindError(ErrInvalidArgument, "invalid query")
	ErrInvalidLimit    = kindError(ErrInvalidArgument, "invalid limit")
	ErrInvalidSort     = kindError(ErrInvalidArgument, "invalid sort")
	ErrInvalidDocument = kindError(ErrInvalidArgument, "invalid document")
	ErrInvalidPayload  = kindError(ErrInvalidArgument, "invalid payload")
	ErrInvalidName     = kindError(ErrInvalidArgument, "invalid collection name")
	ErrEmptyQuery      = kindError(ErrInvalidArgument, "query is required")

	ErrNullQuery    = kindError(ErrNullArgument, "query can't be null")
	ErrNullDocument = kindError(ErrNullArgument, "document can't be null")
	ErrMissingID    = kindError(ErrNullArgument, "id is required")
	ErrMissingArgs  = kindError(ErrNullArgument, "all args are required")
)

type kindErr struct {
	msg  string
	kind error
}

func kindError(kind error, msg string) error {
	return &kindErr{msg: msg, kind: kind}
}

func (e *kindErr) Error() string {
	return e.msg
}

func (e *kindErr) Unwrap() error {
	return e.kind
}

// IOError describes a failed read or write of a database or export file.
//
// It matches ErrIOFailure with errors.Is and unwraps to the underlying cause.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIOFailure
}
