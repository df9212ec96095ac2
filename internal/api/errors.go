package api

import (
	"errors"
	"fmt"
)

// ErrCredentialsNotConfigured is the message surfaced when an authenticated
// operation is attempted with incomplete credentials.
const ErrCredentialsNotConfigured = "please configure your credentials (identifier and password)"

// ConfigurationError indicates invalid local configuration. It is raised
// before any request is dispatched.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// RequestError is a non-200 answer from the backend. Message is sourced from the server.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// TransportError wraps a network or I/O failure; no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a response body that did not parse as expected.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected API response format (status %d): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsRequestError checks if the error is a rejected request.
func IsRequestError(err error) bool {
	var e *RequestError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsDecodeError checks if the error is a decode failure.
func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

// UserMessage returns the text a UI should show for err. Configuration and
// request errors carry a message meant for the user; everything else gets a
// generic failure line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Reason
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	if IsTransportError(err) {
		return "Could not reach the task server"
	}
	return "Something went wrong talking to the task server"
}
