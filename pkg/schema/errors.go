package schema

import (
	"errors"
	"fmt"
)

var (
	ErrCycle        = errors.New("cyclic reference")
	ErrUnknownRef   = errors.New("unknown reference")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidNode  = errors.New("invalid node")
)

// Error reports a malformed schema. Path is the slash separated location of
// the offending node ("" for the root) and Err one of the Err* sentinels,
// optionally wrapped with detail.
type Error struct {
	Path string
	Ref  string
	Err  error
}

func (e *Error) Error() string {
	location := e.Path
	if location == "" {
		location = "<root>"
	}
	if e.Ref != "" {
		return fmt.Sprintf("schema: %s (ref %s): %v", location, e.Ref, e.Err)
	}
	return fmt.Sprintf("schema: %s: %v", location, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(path, ref string, err error, detail string) *Error {
	if detail != "" {
		err = fmt.Errorf("%w: %s", err, detail)
	}
	return &Error{Path: path, Ref: ref, Err: err}
}
