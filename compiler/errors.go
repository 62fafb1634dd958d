package compiler

import (
	"errors"
	"fmt"
)

// Compile error codes (E100-E199).
const (
	ErrMalformedLiteral  = "E100" // node shape violates [tag, config?, child*]
	ErrUnknownTag        = "E101" // tag has no registered node type
	ErrMissingOption     = "E102" // required option absent after resolution
	ErrUnknownFunction   = "E103" // deferred reference names a missing function id
	ErrChildCount        = "E104" // child count violates the tag's policy
	ErrMalformedDeferred = "E105" // deferred reference has an invalid shape
	ErrInvalidID         = "E106" // explicit id is not a positive integer
	ErrFunctionFailed    = "E107" // immediate call failed at compile time
)

// Error is a structured compile failure. Compilation is all-or-nothing: a
// single Error aborts the whole compile with no partial result.
type Error struct {
	Code    string
	Node    string // path to the offending node, e.g. "sequence/loop[1]"
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Node, e.Message)
}

// AsError extracts a compile Error from err, unwrapping as needed.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// errf builds a compile Error for the node at path.
func errf(code, path, format string, args ...any) *Error {
	return &Error{Code: code, Node: path, Message: fmt.Sprintf(format, args...)}
}
