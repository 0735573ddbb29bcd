// Package apperr classifies failures of the identity and calendar
// integration flows so HTTP handlers can map them to status codes and
// user-facing messages without inspecting transport errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the failure class of an Error.
type Kind int

const (
	// KindUnknown covers errors with no assigned class.
	KindUnknown Kind = iota

	// KindInvalidRequest means the caller's input was incomplete (missing
	// authorization code or state).
	KindInvalidRequest

	// KindNotFound means the referenced user or event does not exist.
	KindNotFound

	// KindProviderToken means the provider rejected the authorization code
	// exchange or returned no access token.
	KindProviderToken

	// KindProviderRefresh means the provider rejected the refresh grant or
	// returned no access token.
	KindProviderRefresh

	// KindNoCredential means the user never linked the provider, or the
	// stored refresh credential is absent or unreadable.
	KindNoCredential

	// KindInvalidEventTime means the event's stored timestamps do not form
	// valid instants. Detected before any outbound call.
	KindInvalidEventTime

	// KindPublishRejected means the provider rejected the publish call with
	// a non-401 status, or the call failed at the transport level.
	KindPublishRejected

	// KindRefreshRetryFailed means the single 401 recovery cycle (refresh
	// then one retried publish) was exhausted without success.
	KindRefreshRetryFailed
)

// Error carries a failure kind alongside a user-presentable message and
// the underlying cause.
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

// New builds an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err. Returns KindUnknown when err does
// not carry an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-presentable message of err, falling back to
// a generic one for unclassified errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps a failure kind to the response status used at the API
// boundary.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidRequest, KindNoCredential:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindProviderToken, KindProviderRefresh:
		return http.StatusBadRequest
	case KindRefreshRetryFailed:
		return http.StatusUnauthorized
	case KindPublishRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
