package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can match exhaustively
// instead of probing message strings.
type ErrorKind int

const (
	// ErrKindNetwork indicates the server was unreachable or the
	// transport failed mid-request.
	ErrKindNetwork ErrorKind = iota

	// ErrKindAuthRequired indicates the session token was rejected and
	// the user must log in again.
	ErrKindAuthRequired

	// ErrKindNotFound indicates no library (or item) of the requested
	// kind exists.
	ErrKindNotFound

	// ErrKindCancelled indicates the operation was cancelled by
	// navigation or shutdown. Never user-visible.
	ErrKindCancelled

	// ErrKindServerRejected indicates the server answered but refused
	// the request (malformed filter, unexpected status).
	ErrKindServerRejected
)

// String returns a short name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindNetwork:
		return "network"
	case ErrKindAuthRequired:
		return "auth_required"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindCancelled:
		return "cancelled"
	case ErrKindServerRejected:
		return "server_rejected"
	default:
		return "unknown"
	}
}

// Error is the taxonomy error carried through the core. It wraps an
// optional cause and matches errors.Is against sentinels of the same kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so
// errors.Is(err, domain.ErrAuthRequired) works on wrapped errors.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel instances for errors.Is matching
var (
	ErrNetwork        = &Error{Kind: ErrKindNetwork, Message: "media server is unreachable"}
	ErrAuthRequired   = &Error{Kind: ErrKindAuthRequired, Message: "authentication required"}
	ErrNotFound       = &Error{Kind: ErrKindNotFound, Message: "not found"}
	ErrCancelled      = &Error{Kind: ErrKindCancelled, Message: "operation cancelled"}
	ErrServerRejected = &Error{Kind: ErrKindServerRejected, Message: "server rejected request"}
)

// NewError builds a taxonomy error with a formatted message
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a taxonomy kind to an underlying cause
func WrapError(kind ErrorKind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf classifies an arbitrary error into the taxonomy. Context
// cancellation maps to ErrKindCancelled; anything unclassified is treated
// as a network failure.
func KindOf(err error) ErrorKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrKindCancelled
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindNetwork
}

// IsCancelled reports whether the error is a silent cancellation
func IsCancelled(err error) bool {
	return err != nil && KindOf(err) == ErrKindCancelled
}
