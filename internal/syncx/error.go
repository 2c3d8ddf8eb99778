package syncx

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a remote-authority failure. The retryable set is
// deliberately our own enumeration: vendor SDK codes do not carry over, so
// transient vs terminal is decided here and nowhere else.
type ErrorCode string

const (
	// Transient: bounded retry with backoff is appropriate.
	CodeThrottled   ErrorCode = "throttled"
	CodeTimeout     ErrorCode = "timeout"
	CodeConflict    ErrorCode = "conflict"
	CodeUnavailable ErrorCode = "unavailable"

	// Terminal: retrying cannot help.
	CodeInvalid      ErrorCode = "invalid"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeNotFound     ErrorCode = "not_found"

	// CodeTokenExpired means the requested history token predates the
	// authority's purge boundary. Not retryable: the caller must fall back
	// to a full resync of the scope.
	CodeTokenExpired ErrorCode = "token_expired"
)

// RemoteError is the error shape every remote-authority call returns on
// failure. Match with errors.As / syncx.AsRemote.
type RemoteError struct {
	Code    ErrorCode
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: %s", e.Code)
	}
	return fmt.Sprintf("remote: %s: %s", e.Code, e.Message)
}

// Retryable reports whether the failure is transient.
func (e *RemoteError) Retryable() bool {
	switch e.Code {
	case CodeThrottled, CodeTimeout, CodeConflict, CodeUnavailable:
		return true
	}
	return false
}

// NewRemoteError builds a RemoteError with a formatted message.
func NewRemoteError(code ErrorCode, format string, args ...any) *RemoteError {
	return &RemoteError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsRemote unwraps err into a *RemoteError if there is one in the chain.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
