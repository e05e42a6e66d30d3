package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SessionExpiredMessage is shown to callers whose token is no longer valid.
const SessionExpiredMessage = "Sessão expirada. Faça login novamente."

// Error codes rendered in the JSON error envelope.
const (
	CodeValidation     = "VALIDATION_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeTimeout        = "SAVE_TIMEOUT"
	CodeInternal       = "INTERNAL_ERROR"
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

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewSessionExpired signals the client to send the user back to the login page.
func NewSessionExpired() error {
	return NewDomainError(CodeSessionExpired, SessionExpiredMessage, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewTimeout(message string) error {
	return NewDomainError(CodeTimeout, message, http.StatusGatewayTimeout, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
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
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{Code: CodeNotFound, Message: "resource not found", HTTPStatus: http.StatusNotFound, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &DomainError{Code: CodeConflict, Message: "resource already exists", HTTPStatus: http.StatusConflict, Err: err,
				Details: map[string]any{"constraint": pgErr.ConstraintName}}
		case "23503":
			return &DomainError{Code: CodeValidation, Message: "referenced resource does not exist", HTTPStatus: http.StatusBadRequest, Err: err,
				Details: map[string]any{"constraint": pgErr.ConstraintName}}
		}
	}
	if IsSessionExpired(err) {
		return &DomainError{Code: CodeSessionExpired, Message: SessionExpiredMessage, HTTPStatus: http.StatusUnauthorized, Err: err}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// sessionHints matches messages produced by an expired or rejected credential.
var sessionHints = regexp.MustCompile(`(?i)jwt|session|sessão|unauthorized|expired`)

// IsSessionExpired reports whether err looks like an authentication failure
// rather than a data problem. Context deadlines are not session failures even
// though their message mentions "exceeded".
func IsSessionExpired(err error) bool {
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case CodeSessionExpired, CodeUnauthorized:
			return true
		case CodeTimeout:
			return false
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "PGRST301" || pgErr.Code == "401" || pgErr.Code == "28000" || pgErr.Code == "28P01" {
			return true
		}
	}
	return sessionHints.MatchString(err.Error())
}
