// Package domain defines the core domain models for the linking service.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured
// error code.
type DomainError struct {
	Code    string // Error code (e.g., "GL-SESS-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Session errors (SESS).
var (
	// ErrSessionNotFound indicates the requested session was not found.
	ErrSessionNotFound = NewDomainError("GL-SESS-4040", "session not found")

	// ErrInvalidSessionID indicates the session ID does not match the
	// structured identifier format.
	ErrInvalidSessionID = NewDomainError("GL-SESS-4001", "invalid session id format")

	// ErrIllegalTransition indicates an attempted status change not in
	// the lifecycle graph.
	ErrIllegalTransition = NewDomainError("GL-SESS-4002", "illegal session status transition")

	// ErrAlreadyResponded indicates the session's single primary
	// result was already delivered.
	ErrAlreadyResponded = NewDomainError("GL-SESS-4090", "session already responded")
)

// Pairing flow errors (PAIR).
var (
	// ErrInvalidNumber indicates the destination number has fewer than
	// eight digits after normalization.
	ErrInvalidNumber = NewDomainError("GL-PAIR-4001", "invalid phone number format")

	// ErrPairingCodeFailed indicates the protocol socket could not
	// issue a pairing code.
	ErrPairingCodeFailed = NewDomainError("GL-PAIR-5020", "failed to generate pairing code")
)

// QR flow errors (QR).
var (
	// ErrQRTimeout indicates no QR payload arrived within the
	// issuance window.
	ErrQRTimeout = NewDomainError("GL-QR-4080", "qr generation timeout")
)

// Protocol errors (PROTO).
var (
	// ErrSocketDial indicates the protocol socket could not be opened.
	ErrSocketDial = NewDomainError("GL-PROTO-5020", "protocol socket dial failed")

	// ErrSocketCommand indicates a protocol command failed.
	ErrSocketCommand = NewDomainError("GL-PROTO-5021", "protocol command failed")
)

// Storage errors (STOR).
var (
	// ErrCredentialStore indicates a credential store operation failed.
	ErrCredentialStore = NewDomainError("GL-STOR-5001", "credential store error")
)

// Authentication errors (AUTH).
var (
	// ErrAdminTokenMissing indicates no admin token was provided.
	ErrAdminTokenMissing = NewDomainError("GL-AUTH-4010", "admin token not provided")

	// ErrAdminTokenInvalid indicates the admin token is wrong.
	ErrAdminTokenInvalid = NewDomainError("GL-AUTH-4011", "invalid admin token")
)

// Argument errors (ARG).
var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("GL-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("GL-ARG-1002", "missing required argument")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("GL-SYS-5000", "internal server error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("GL-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("GL-SYS-4290", "too many requests")
)
