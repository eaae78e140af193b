package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrSelectionCancelled = fmt.Errorf("server selection cancelled")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoServers          = fmt.Errorf("no available servers")
	ErrNoConnections      = fmt.Errorf("no valid connection found")
	ErrSettingNotFound    = fmt.Errorf("setting not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ErrPairingTimedOut is the user-facing pairing deadline error. It matches [ErrTimeout].
var ErrPairingTimedOut error = timeoutError("authentication timed out, please try again")

// timeoutError is a user-facing message that matches [ErrTimeout].
type timeoutError string

func (e timeoutError) Error() string        { return string(e) }
func (e timeoutError) Is(target error) bool { return target == ErrTimeout }

// UpstreamError is a failed call to plex.tv or a media server.
//
// Details carries the provider payload when one was returned (decoded JSON or trimmed text),
// otherwise the transport error message.
type UpstreamError struct {
	Operation string
	Status    int
	Details   any
}

func (e *UpstreamError) Error() string {
	if e.Details == nil {
		if e.Status == 0 {
			return e.Operation
		}
		return fmt.Sprintf("%s: status %d", e.Operation, e.Status)
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Details)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Operation, e.Status, e.Details)
}

// Unwrap lets callers match upstream failures with errors.Is(err, [ErrAPIRequest]).
func (e *UpstreamError) Unwrap() error {
	return ErrAPIRequest
}

// NewUpstreamError builds an [UpstreamError] from a non-2xx response body.
func NewUpstreamError(op string, status int, body []byte) *UpstreamError {
	return &UpstreamError{Operation: op, Status: status, Details: DecodeDetails(body)}
}

// TransportError builds an [UpstreamError] for a request that never produced a response.
func TransportError(op string, err error) *UpstreamError {
	return &UpstreamError{Operation: op, Details: err.Error()}
}

// DecodeDetails returns body decoded as JSON when possible, otherwise as trimmed text.
func DecodeDetails(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err == nil {
		return decoded
	}
	return strings.TrimSpace(string(trimmed))
}

// ErrorDetails returns the provider detail attached to err, or its message.
func ErrorDetails(err error) any {
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Details != nil {
		return upstream.Details
	}
	return err.Error()
}
