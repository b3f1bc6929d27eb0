package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Stable machine-readable error tags rendered in the "error" field.
const (
	CodeMissingAuthorizationHeader = "missing_authorization_header"
	CodeInvalidAuthMethod          = "invalid_auth_method"
	CodeInvalidCredentials         = "invalid_credentials"
	CodeIncorrectTokenType         = "incorrect_token_type"
	CodeServiceUnavailable         = "service_unavailable"
	CodeNotFound                   = "not_found"
	CodeInvalidInput               = "invalid_input"
	CodeForbidden                  = "forbidden"
	CodeAlreadyExists              = "already_exists"
	CodeTooManyAttempts            = "too_many_attempts"
	CodeNotImplemented             = "service_not_implemented"
	CodeUnknown                    = "unknown_error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewNoAuthorizationHeader() error {
	return NewDomainError(CodeMissingAuthorizationHeader, "Missing Authorization Header", http.StatusUnauthorized, nil)
}

func NewInvalidAuthMethod() error {
	return NewDomainError(CodeInvalidAuthMethod, "Authentication method was not valid", http.StatusUnauthorized, nil)
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "Invalid Authentication Credentials", http.StatusUnauthorized, nil)
}

func NewIncorrectTokenType() error {
	return NewDomainError(CodeIncorrectTokenType, "Incorrect token type", http.StatusForbidden, nil)
}

func NewServiceUnavailable() error {
	return NewDomainError(CodeServiceUnavailable, "Identity service is unavailable, try again later", http.StatusServiceUnavailable, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidInput, message, http.StatusBadRequest, details)
}

// NewNotFound is also the access-denial shape used by the route gate, so it
// never names the access level that was missing.
func NewNotFound() error {
	return NewDomainError(CodeNotFound, "Resource not found", http.StatusNotFound, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string) error {
	return NewDomainError(CodeAlreadyExists, message, http.StatusConflict, nil)
}

func NewTooManyAttempts(message string) error {
	return NewDomainError(CodeTooManyAttempts, message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeUnknown,
		Message:    "Something went wrong...",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromStatus converts an error returned by an identity service call into a
// DomainError. The RPC status message is forwarded only for codes whose
// messages the services write for end users.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DomainError{
			Code:       CodeServiceUnavailable,
			Message:    "Identity service is unavailable, try again later",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}

	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.AlreadyExists:
		return NewConflict(st.Message())
	case codes.NotFound:
		return NewNotFound()
	case codes.Unauthenticated:
		return NewInvalidCredentials()
	case codes.PermissionDenied:
		return NewForbidden(st.Message())
	case codes.InvalidArgument:
		return NewValidationError(st.Message(), nil)
	case codes.ResourceExhausted:
		return NewTooManyAttempts(st.Message())
	case codes.Unimplemented:
		return &DomainError{
			Code:       CodeNotImplemented,
			Message:    "This route isn't implemented yet...",
			HTTPStatus: http.StatusInternalServerError,
			Err:        err,
		}
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return &DomainError{
			Code:       CodeServiceUnavailable,
			Message:    "Identity service is unavailable, try again later",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	default:
		return NewInternalError(err)
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeUnknown,
		Message:    "Something went wrong...",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given stable error tag.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
