// Package domainerrors defines the coded error values that services return and
// the transport layer translates to HTTP statuses. Errors are comparable
// values so tests and callers can use errors.Is against a freshly constructed
// equivalent.
package domainerrors

import "net/http"

// Code classifies a domain failure. The string form is what callers see in the
// JSON error envelope.
type Code string

const (
	CodeBadRequest      Code = "missing_params"
	CodeUnauthenticated Code = "unauthenticated"
	CodeUnauthorized    Code = "invalid_credential"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "already_claimed"
	CodeInternal        Code = "internal"
)

// Error carries a code plus a human-readable message. The message is for logs
// and operators; only the code is exposed to callers.
type Error struct {
	Code    Code
	Message string
}

func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ToHTTPStatus maps a domain code to the HTTP status the transport layer
// should respond with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthenticated, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the domain code from err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	if de, ok := err.(Error); ok {
		return de.Code
	}
	return CodeInternal
}
