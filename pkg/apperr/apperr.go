package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how the user should react to it.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindProtocol      Kind = "protocol"
	KindParse         Kind = "parse"
	KindAuth          Kind = "auth"
	KindAuthRequired  Kind = "auth_required"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
)

// Error is the application error carried across package boundaries.
// Status and Detail are only set for upstream failures that report them.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the exported sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is. Only Kind is compared.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrProtocol      = &Error{Kind: KindProtocol}
	ErrParse         = &Error{Kind: KindParse}
	ErrAuth          = &Error{Kind: KindAuth}
	ErrAuthRequired  = &Error{Kind: KindAuthRequired}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

// Auth messages are distinct so the user can tell a typo from a locked-out account.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnauthorized       = "Unauthorized user"
)

var (
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: MsgInvalidCredentials}
	ErrUnauthorized       = &Error{Kind: KindAuth, Message: MsgUnauthorized}
)

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Configuration(message string, err error) *Error {
	return New(KindConfiguration, message, err)
}

// Upstream reports a failed LLM, store or identity call with the provider's status and detail.
func Upstream(message string, status int, detail string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Status: status, Detail: detail, Err: err}
}

func Protocol(message string) *Error {
	return New(KindProtocol, message, nil)
}

func Parse(message string, err error) *Error {
	return New(KindParse, message, err)
}

func InvalidCredentials(err error) *Error {
	return New(KindAuth, MsgInvalidCredentials, err)
}

func Unauthorized() *Error {
	return New(KindAuth, MsgUnauthorized, nil)
}

func AuthRequired(message string) *Error {
	return New(KindAuthRequired, message, nil)
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error to the status the API answers with.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindAuth:
		if e.Message == MsgUnauthorized {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream, KindProtocol, KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage renders the inline message shown for a failed action.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong. Please try again."
	}
	switch e.Kind {
	case KindConfiguration:
		return e.Message + ". Please check your configuration."
	case KindUpstream, KindProtocol:
		return e.Error() + ". Please try again."
	default:
		return e.Message
	}
}
