package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind int

const (
	// KindValidation marks input rejected before any write was attempted.
	KindValidation Kind = iota
	// KindConflict marks an informational outcome: the requested state is
	// already satisfied (duplicate friend request, already blocked, ...).
	KindConflict
	// KindPermission marks an action the principal is not allowed to perform.
	KindPermission
	// KindNotFound marks a missing record.
	KindNotFound
	// KindTransport marks a failed store or collaborator call.
	KindTransport
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }
func Permission(msg string) error { return &Error{Kind: KindPermission, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }

func Transport(msg string, err error) error {
	return &Error{Kind: KindTransport, Msg: msg, Err: err}
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsValidation(err error) bool { k, ok := KindOf(err); return ok && k == KindValidation }
func IsConflict(err error) bool   { k, ok := KindOf(err); return ok && k == KindConflict }
func IsPermission(err error) bool { k, ok := KindOf(err); return ok && k == KindPermission }
func IsNotFound(err error) bool   { k, ok := KindOf(err); return ok && k == KindNotFound }
func IsTransport(err error) bool  { k, ok := KindOf(err); return ok && k == KindTransport }

// HTTPStatus maps an error to the status code the API layer responds with.
// Unclassified errors are treated as internal failures.
func HTTPStatus(err error) int {
	k, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
