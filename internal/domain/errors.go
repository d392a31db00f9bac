package domain

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures of the core.
type ErrorCode string

const (
	// CodeDayLocked: a full-day write targeted a locked day.
	CodeDayLocked ErrorCode = "DAY_LOCKED"

	// CodeEntryLocked: an entry edit targeted a row of a locked day.
	CodeEntryLocked ErrorCode = "ENTRY_LOCKED"

	// CodeNotFound: the entry identity is unknown.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConnection: the entry database failed or is closed.
	CodeConnection ErrorCode = "CONNECTION"

	// CodeParse: tag configuration content is malformed.
	CodeParse ErrorCode = "PARSE"

	// CodeIO: a filesystem operation on the configuration failed.
	CodeIO ErrorCode = "IO"

	// CodeSetup: startup failed (database or watcher). Fatal to the application.
	CodeSetup ErrorCode = "SETUP"
)

// Error is the error type returned across component boundaries.
//
// Message is human-readable and is shown to the user verbatim, followed by
// the underlying error when there is one.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrDayLocked   = &Error{Code: CodeDayLocked}
	ErrEntryLocked = &Error{Code: CodeEntryLocked}
	ErrNotFound    = &Error{Code: CodeNotFound}
	ErrConnection  = &Error{Code: CodeConnection}
	ErrParse       = &Error{Code: CodeParse}
	ErrIO          = &Error{Code: CodeIO}
	ErrSetup       = &Error{Code: CodeSetup}
)

// NewError creates an error without an underlying cause.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error with an underlying cause.
func Wrap(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the code of the outermost *Error in err's chain.
// Returns "" if there is none.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsLockViolation reports whether err refused a write because of a day lock.
func IsLockViolation(err error) bool {
	return errors.Is(err, ErrDayLocked) || errors.Is(err, ErrEntryLocked)
}

// DayLocked returns the error for a write against a locked day.
func DayLocked(date string) *Error {
	return NewError(CodeDayLocked, fmt.Sprintf("day %s is locked", date))
}

// EntryLocked returns the error for an edit of a locked entry.
func EntryLocked(id int64) *Error {
	return NewError(CodeEntryLocked, fmt.Sprintf("cannot edit locked entry %d", id))
}

// EntryNotFound returns the error for an unknown entry identity.
func EntryNotFound(id int64) *Error {
	return NewError(CodeNotFound, fmt.Sprintf("entry %d not found", id))
}
