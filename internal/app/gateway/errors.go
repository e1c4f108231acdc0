// internal/app/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend call.
type Kind string

const (
	// KindTransport covers network failures and timeouts; nothing was heard back.
	KindTransport Kind = "transport"
	// KindUnauthorized is a 401; the session token is missing, expired or revoked.
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden is a 403.
	KindForbidden Kind = "forbidden"
	// KindNotFound is a 404.
	KindNotFound Kind = "not_found"
	// KindBusiness is a rule rejected by the backend, either a 4xx or a
	// 2xx body carrying success:false. The message is meant for the user.
	KindBusiness Kind = "business"
	// KindServer is a 5xx.
	KindServer Kind = "server"
	// KindDecode means the backend answered but the body was not understood.
	KindDecode Kind = "decode"
)

// Error is the only error type returned by Client methods. Every call
// either returns its data with a nil error or a *Error describing why not.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // backend message when one was supplied
	Op      string // resource.operation, e.g. "visitors.create"
	Err     error  // underlying cause for transport/decode failures
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway %s: %s (%s)", e.Op, e.Message, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is nil or not a gateway error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// UserMessage turns err into text suitable for a toast. Business failures
// are shown verbatim; everything else gets a generic sentence.
func UserMessage(err error) string {
	var ge *Error
	if !errors.As(err, &ge) {
		return "Something went wrong. Please try again."
	}
	switch ge.Kind {
	case KindBusiness, KindNotFound, KindForbidden:
		if ge.Message != "" {
			return ge.Message
		}
	}
	switch ge.Kind {
	case KindTransport:
		return "Could not reach the server. Please check your connection and try again."
	case KindUnauthorized:
		return "Your session has expired. Please sign in again."
	case KindForbidden:
		return "You are not allowed to do that."
	case KindNotFound:
		return "That record no longer exists."
	case KindBusiness:
		return "The request was rejected."
	default:
		return "Something went wrong. Please try again."
	}
}

// kindForStatus maps a non-2xx HTTP status onto a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindBusiness
	}
}
