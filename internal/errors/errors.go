// Package errors classifies client failures so workflows can decide how
// to surface them: validation blocks submission, auth failures log the
// user out, network failures and server rejections become messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unknown Kind = iota
	NetworkFailure
	AuthFailure
	ValidationFailure
	ServerRejection
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network_failure"
	case AuthFailure:
		return "auth_failure"
	case ValidationFailure:
		return "validation_failure"
	case ServerRejection:
		return "server_rejection"
	default:
		return "unknown"
	}
}

// Error carries the failure kind and, for responses, the status code.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Network(op string, err error) *Error {
	return &Error{Kind: NetworkFailure, Op: op, Message: "backend unavailable", Err: err}
}

func Validation(op, message string) *Error {
	return &Error{Kind: ValidationFailure, Op: op, Message: message}
}

// FromStatus classifies a non-success response. 401 is an auth failure,
// everything else the server refused is a rejection.
func FromStatus(op string, statusCode int, body string) *Error {
	kind := ServerRejection
	if statusCode == http.StatusUnauthorized {
		kind = AuthFailure
	}
	if body == "" {
		body = http.StatusText(statusCode)
	}
	return &Error{Kind: kind, Op: op, StatusCode: statusCode, Message: body}
}
