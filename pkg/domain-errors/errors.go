// Package domainerrors defines the coded errors the ledger surfaces to
// callers. Services build these from validation failures and from sentinel
// errors returned by stores; the transport layer maps codes to HTTP statuses.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure. Codes are part of the API contract: the
// transport layer returns them verbatim in error envelopes.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeNotAuthorized      Code = "not_authorized"
	CodeDuplicateProof     Code = "duplicate_proof"
	CodeAlreadyRecorded    Code = "already_recorded"
	CodeAlreadyBound       Code = "already_bound"
	CodeTransferForbidden  Code = "transfer_forbidden"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"
)

// Error is a coded domain error. It optionally wraps an underlying cause so
// errors.Is still reaches infrastructure sentinels.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a coded error so call sites can keep the original
// chain intact.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two domain errors by code, which lets tests and callers compare
// against New(code, "") style targets without caring about messages.
func (e *Error) Is(target error) bool {
	var de *Error
	if !errors.As(target, &de) {
		return false
	}
	return e.Code == de.Code
}

// CodeOf extracts the domain code from err, or CodeInternal when err carries
// no code. A nil err has no code and returns "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain code to the HTTP status the transport layer
// responds with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotAuthorized:
		return http.StatusForbidden
	case CodeDuplicateProof, CodeAlreadyRecorded, CodeAlreadyBound:
		return http.StatusConflict
	case CodeTransferForbidden:
		return http.StatusForbidden
	case CodeInvariantViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
