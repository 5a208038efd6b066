package mock

import (
	"encoding/json"
	"fmt"
)

// Error represents a structured error with snake_case JSON format
type Error struct {
	ErrorCode        string `json:"error_code"`
	ErrorMessage     string `json:"error_message"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Error implements error interface
func (e *Error) Error() string {
	return e.ErrorMessage
}

// Is reports whether target carries the same error code, so
// errors.Is(err, ErrNotFound) matches every not found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.ErrorCode == e.ErrorCode
}

// MarshalJSON returns the JSON encoding with snake_case format
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal((*Alias)(e))
}

// NewError creates a new structured error
func NewError(code, message string) *Error {
	return &Error{
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// Common error codes
var (
	ErrNotFound        = NewError("not_found", "record not found")
	ErrInvalidArgument = NewError("invalid_argument", "invalid argument")
)

// NewNotFoundError creates a not found error
func NewNotFoundError(tableName string) *Error {
	return &Error{
		ErrorCode:        ErrNotFound.ErrorCode,
		ErrorMessage:     ErrNotFound.ErrorMessage,
		ErrorDescription: fmt.Sprintf("no record found in table '%s'", tableName),
	}
}

// NewInvalidArgumentError creates an invalid argument error
func NewInvalidArgumentError(argument, reason string) *Error {
	return &Error{
		ErrorCode:        ErrInvalidArgument.ErrorCode,
		ErrorMessage:     ErrInvalidArgument.ErrorMessage,
		ErrorDescription: fmt.Sprintf("argument '%s': %s", argument, reason),
	}
}
