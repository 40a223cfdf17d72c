// Package apperr defines the error taxonomy shared by every module.
//
// Each failure carries a Kind. Handlers never inspect messages to pick a status
// code; they ask errors.Is against one of the sentinel values below.
package apperr

import "errors"

// Kind names an error category as it appears on the wire.
type Kind string

const (
	KindUnauthenticated    Kind = "Unauthenticated"
	KindInvalidToken       Kind = "InvalidToken"
	KindUnauthorized       Kind = "Unauthorized"
	KindForbidden          Kind = "Forbidden"
	KindValidation         Kind = "ValidationError"
	KindNotFound           Kind = "NotFound"
	KindUnsupportedType    Kind = "UnsupportedType"
	KindPayloadTooLarge    Kind = "PayloadTooLarge"
	KindCreation           Kind = "CreationError"
	KindUpstream           Kind = "UpstreamError"
	KindPartiallyCompleted Kind = "PartiallyCompleted"
	KindInternal           Kind = "InternalError"
)

var (
	ErrUnauthenticated    = New(KindUnauthenticated, "missing or invalid bearer token")
	ErrInvalidToken       = New(KindInvalidToken, "invalid token")
	ErrUnauthorized       = New(KindUnauthorized, "caller role is not allowed")
	ErrForbidden          = New(KindForbidden, "caller does not own this resource")
	ErrValidation         = New(KindValidation, "validation failed")
	ErrNotFound           = New(KindNotFound, "not found")
	ErrUnsupportedType    = New(KindUnsupportedType, "unsupported file type")
	ErrPayloadTooLarge    = New(KindPayloadTooLarge, "payload too large")
	ErrCreation           = New(KindCreation, "creation failed")
	ErrUpstream           = New(KindUpstream, "upstream call failed")
	ErrPartiallyCompleted = New(KindPartiallyCompleted, "operation partially completed")
)

// Error is a categorized failure with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an error of the given kind that wraps cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Validation(msg string) *Error { return New(KindValidation, msg) }
func NotFound(msg string) *Error { return New(KindNotFound, msg) }
func Upstream(msg string, err error) *Error { return Wrap(KindUpstream, msg, err) }
