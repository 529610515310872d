package db

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by query execution. It wraps a return
// code (of type RetCode) and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("DBError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code RetCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess      RetCode = iota // 0: Query executed successfully.
	RetCInternal                    // 1: Query failed due to an internal error.
	RetCInvalidQuery                // 2: Query is structurally invalid for its type.
	RetCProhibited                  // 3: Query type is prohibited by the caller.
	RetCNoMatch                     // 4: Query required a match but affected nothing.
	RetCConflict                    // 5: Query would overwrite an existing field.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternal:
		return "InternalError"
	case RetCInvalidQuery:
		return "InvalidQuery"
	case RetCProhibited:
		return "Prohibited"
	case RetCNoMatch:
		return "NoMatch"
	case RetCConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}
