// Package apperr provides the typed errors returned by domain and application
// code. The HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of an application error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
	KindInvalidState
	KindUnavailable
)

// Error is an application error with a Kind used for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status code for the error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError reports invalid input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError reports a write that lost against concurrent state.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError reports an action the caller may not perform.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError reports missing or invalid credentials.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewInvalidStateError reports a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewUnavailableError reports a failing upstream dependency.
func NewUnavailableError(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// PaginatedResult is a page of items plus the total count.
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResult builds a PaginatedResult and derives the page count.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginatedResult[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
