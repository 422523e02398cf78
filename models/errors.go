package models

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	ValidationError     ErrorKind = "VALIDATION_ERROR"
	AuthenticationError ErrorKind = "AUTHENTICATION_ERROR"
	AuthorizationError  ErrorKind = "AUTHORIZATION_ERROR"
	NotFoundError       ErrorKind = "NOT_FOUND"
	BackendError        ErrorKind = "BACKEND_ERROR"
)

// CommentError carries the kind of failure up to the controllers, which map it
// to a status code. Origin is logged, never sent to clients.
type CommentError struct {
	Kind    ErrorKind
	Message string
	Origin  error
}

func (e *CommentError) Error() string {
	if e.Origin != nil {
		return e.Message + ": " + e.Origin.Error()
	}
	return e.Message
}

func (e *CommentError) Unwrap() error {
	return e.Origin
}

func (e *CommentError) Status() int {
	switch e.Kind {
	case ValidationError:
		return http.StatusBadRequest
	case AuthenticationError:
		return http.StatusUnauthorized
	case AuthorizationError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *CommentError {
	return &CommentError{Kind: ValidationError, Message: message}
}

func NewAuthenticationError(message string) *CommentError {
	return &CommentError{Kind: AuthenticationError, Message: message}
}

func NewAuthorizationError(message string) *CommentError {
	return &CommentError{Kind: AuthorizationError, Message: message}
}

func NewNotFoundError(message string) *CommentError {
	return &CommentError{Kind: NotFoundError, Message: message}
}

func NewBackendError(message string, origin error) *CommentError {
	return &CommentError{Kind: BackendError, Message: message, Origin: origin}
}

// ErrorKindOf returns the kind of err, or BackendError for anything that is not
// a CommentError.
func ErrorKindOf(err error) ErrorKind {
	var ce *CommentError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return BackendError
}
