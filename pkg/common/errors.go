package common

import (
	"github.com/pkg/errors"
)

var (
	ErrParse             = errors.New("document is not well-formed")
	ErrEmptyConfig       = errors.New("config file is empty")
	ErrKeyNotFound       = errors.New("key not found")
	ErrWrongType         = errors.New("value has a different type")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrUnsupportedType   = errors.New("unsupported type")
	ErrDeserialization   = errors.New("unable to deserialize object")
	ErrDecode            = errors.New("invalid base64 payload")
	ErrDirectoryCreation = errors.New("unable to create directory")
)

// Error records a failed operation on an artifact path. Kind is one of the
// Err* sentinels of this package and Err the underlying cause, if any; both
// match with errors.Is.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + " " + e.Path + ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind, err error) error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}
