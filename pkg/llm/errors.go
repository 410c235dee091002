package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when a completion carries no choices.
	ErrEmptyResponse = errors.New("llm: no choices in response")

	// ErrNoMessages is returned for a request with an empty conversation.
	ErrNoMessages = errors.New("llm: conversation has no messages")

	// ErrInvalidRole matches any *InvalidRoleError.
	ErrInvalidRole = errors.New("llm: invalid message role")

	// ErrStreamClosed is returned by Recv after Close.
	ErrStreamClosed = errors.New("llm: stream closed")
)

// ConfigError reports a provider or program setting that is missing or
// unusable. It is raised before any network call is attempted.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// InvalidRoleError identifies the first message with an unsupported role.
type InvalidRoleError struct {
	Index int
	Role  Role
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("llm: message %d has invalid role %q", e.Index, e.Role)
}

func (e *InvalidRoleError) Is(target error) bool { return target == ErrInvalidRole }

// TransportError wraps a failure talking to the remote service.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
