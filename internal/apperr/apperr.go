package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error so callers can branch on it without
// string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidState
	KindExternalService
	KindInsufficientFunds
)

// Error is the single error type returned by services. Resource and ID
// identify what the operation was acting on when that is known.
type Error struct {
	Kind     Kind
	Resource string
	ID       int
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "domain error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int) *Error {
	return &Error{
		Kind:     KindNotFound,
		Resource: resource,
		ID:       id,
		Msg:      fmt.Sprintf("%s %d not found", resource, id),
	}
}

func Forbidden(resource string, id int) *Error {
	return &Error{
		Kind:     KindForbidden,
		Resource: resource,
		ID:       id,
		Msg:      fmt.Sprintf("not the owner of %s %d", resource, id),
	}
}

func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Msg: msg}
}

func ExternalService(msg string, err error) *Error {
	return &Error{Kind: KindExternalService, Msg: msg, Err: err}
}

func InsufficientFunds(held, needed int) *Error {
	return &Error{
		Kind: KindInsufficientFunds,
		Msg:  fmt.Sprintf("insufficient coin: held %d, needed %d", held, needed),
	}
}

// KindOf returns the Kind of err, or KindUnknown for errors that did
// not originate from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps a Kind to the response status the API layer uses.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidState, KindInsufficientFunds:
		return http.StatusConflict
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
