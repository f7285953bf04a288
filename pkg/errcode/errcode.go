// Package errcode carries a single business-error type through every layer
// of the service, from repository to REST/WS transport.
package errcode

import "fmt"

// Kind classifies an Error for transport-agnostic handling. Each transport
// (REST, WebSocket) maps a Kind to its own surface (HTTP status, socket
// reply) without string-matching messages.
type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindBadRequest         Kind = "bad-request"
	KindNotFound           Kind = "not-found"
	KindConflict           Kind = "conflict"
	KindDependencyFailure  Kind = "dependency-failure"
)

// Error represents a business error.
type Error struct {
	Code int    `json:"code"`
	Kind Kind   `json:"kind"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, kind: %s, msg: %s", e.Code, e.Kind, e.Msg)
}

// New creates a new error with code, kind and message.
func New(code int, kind Kind, msg string) *Error {
	return &Error{Code: code, Kind: kind, Msg: msg}
}

// Wrap attaches additional context to an existing error without losing its
// code/kind.
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{Code: e.Code, Kind: e.Kind, Msg: fmt.Sprintf("%s: %v", e.Msg, err)}
}

// Is reports whether err carries this Kind. Used by transports that only
// care about the kind, not the exact error.
func (e *Error) Is(kind Kind) bool {
	return e != nil && e.Kind == kind
}

// FromErr extracts an *Error from a generic error, falling back to an
// internal dependency-failure for anything unrecognized.
func FromErr(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return ErrInternal.Wrap(err)
}

var (
	// 1xxx - bad request
	ErrInvalidParam     = New(1001, KindBadRequest, "invalid parameter")
	ErrUnsupportedMedia = New(1002, KindBadRequest, "unsupported media type")
	ErrFileTooLarge     = New(1003, KindBadRequest, "file exceeds size limit")
	ErrInvalidCursor    = New(1004, KindBadRequest, "invalid pagination cursor")

	// 2xxx - unauthenticated
	ErrTokenInvalid = New(2001, KindUnauthenticated, "token invalid")
	ErrTokenExpired = New(2002, KindUnauthenticated, "token expired")
	ErrTokenMissing = New(2003, KindUnauthenticated, "token missing")
	ErrUserNotFound = New(2004, KindUnauthenticated, "subject does not resolve to a user")

	// 3xxx - forbidden
	ErrNotMember = New(3001, KindForbidden, "not a member of this conversation")

	// 4xxx - not found
	ErrConversationNotFound = New(4001, KindNotFound, "conversation not found")
	ErrMessageNotFound      = New(4002, KindNotFound, "message not found")

	// 5xxx - dependency failure
	ErrInternal       = New(5001, KindDependencyFailure, "internal server error")
	ErrStoreUnavail   = New(5002, KindDependencyFailure, "store unavailable")
	ErrBusUnavail     = New(5003, KindDependencyFailure, "bus unavailable")
	ErrBlobStoreFail  = New(5004, KindDependencyFailure, "blob store request failed")

	// 6xxx - conflict (reserved)
	ErrConflict = New(6001, KindConflict, "conflict")
)

// HTTPStatus returns the REST status code for a Kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return 401
	case KindForbidden:
		return 403
	case KindBadRequest:
		return 400
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindDependencyFailure:
		return 500
	default:
		return 500
	}
}
