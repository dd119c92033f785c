package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryAuth         ErrorCategory = "AUTH"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryForbidden    ErrorCategory = "FORBIDDEN"
	CategoryInternal     ErrorCategory = "INTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type boardError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *boardError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *boardError) Code() string            { return e.code }
func (e *boardError) Category() ErrorCategory { return e.category }
func (e *boardError) HTTPStatus() int         { return e.status }
func (e *boardError) Message() string         { return e.message }
func (e *boardError) Unwrap() error           { return e.cause }

func (e *boardError) WithCause(cause error) DomainError {
	return &boardError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

// Is makes sentinel domain errors match their WithCause copies under errors.Is.
func (e *boardError) Is(target error) bool {
	other, ok := target.(*boardError)
	if !ok {
		return false
	}
	return e.code == other.code
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &boardError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrUsernameAlreadyExists = NewDomainError(
		"USERNAME_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"username already exists",
	)

	ErrInvalidCredentials = NewDomainError(
		"INVALID_CREDENTIALS",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrRequestNotFound = NewDomainError(
		"REQUEST_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"request not found",
	)

	ErrNotRequestAuthor = NewDomainError(
		"NOT_REQUEST_AUTHOR",
		CategoryForbidden,
		http.StatusForbidden,
		"only the author may delete a request",
	)

	ErrNotProfileOwner = NewDomainError(
		"NOT_PROFILE_OWNER",
		CategoryForbidden,
		http.StatusForbidden,
		"only the owner may edit a profile",
	)

	ErrPersistenceFailure = NewDomainError(
		"PERSISTENCE_FAILURE",
		CategoryInternal,
		http.StatusInternalServerError,
		"failed to persist state",
	)

	ErrMalformedStorage = NewDomainError(
		"MALFORMED_STORAGE",
		CategoryInternal,
		http.StatusInternalServerError,
		"stored state is malformed",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)
)
