package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var cfgErr *api.ConfigurationError
	var reqErr *api.RequestError
	var transportErr *api.TransportError
	var decodeErr *api.DecodeError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		fmt.Fprintf(&msg, "%s\n\n", err.Error())
		msg.WriteString(credentialSuggestions())

	case errors.As(err, &cfgErr):
		fmt.Fprintf(&msg, "Configuration error: %s\n\n", api.UserMessage(err))
		msg.WriteString(credentialSuggestions())

	case errors.As(err, &reqErr):
		fmt.Fprintf(&msg, "%s (HTTP %d)\n\n", api.UserMessage(err), reqErr.StatusCode)
		msg.WriteString(suggestionsForStatusCode(reqErr.StatusCode))

	case errors.As(err, &transportErr):
		fmt.Fprintf(&msg, "%s.\n", api.UserMessage(err))
		fmt.Fprintf(&msg, "Cause: %v\n\n", transportErr.Err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check your network connection\n")
		msg.WriteString("  - Verify the server URL: taskman status\n")
		msg.WriteString("  - Raise the request timeout with --timeout\n")

	case errors.As(err, &decodeErr):
		fmt.Fprintf(&msg, "%s.\n\n", api.UserMessage(err))
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Use --debug to see the raw response\n")
		msg.WriteString("  - Check that --base-url points at a Taskman server\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func credentialSuggestions() string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")
	s.WriteString("  - Run: taskman auth login\n")
	s.WriteString("  - Or export TASKMAN_IDENTIFIER and TASKMAN_PASSWORD\n")
	return s.String()
}

func suggestionsForStatusCode(code int) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		s.WriteString("  - Your identifier or password may be wrong\n")
		s.WriteString("  - Run: taskman auth login\n")
	case code == http.StatusNotFound:
		s.WriteString("  - Check the RSN and source are correct\n")
		s.WriteString("  - Run: taskman generate to get a first task\n")
	case code >= 500:
		s.WriteString("  - Server error - not your fault\n")
		s.WriteString("  - Wait and retry\n")
	default:
		s.WriteString("  - Use --debug for more details\n")
	}
	return s.String()
}

// errorPayload is the JSON shape of a failed command under --output json.
type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func newErrorPayload(err error) errorPayload {
	detail := errorDetail{Kind: "error", Message: err.Error()}

	var reqErr *api.RequestError
	var decodeErr *api.DecodeError
	switch {
	case api.IsConfigurationError(err) || errors.Is(err, config.ErrNotConfigured):
		detail.Kind = "configuration"
	case errors.As(err, &reqErr):
		detail.Kind = "request"
		detail.Message = api.UserMessage(err)
		detail.StatusCode = reqErr.StatusCode
	case api.IsTransportError(err):
		detail.Kind = "transport"
		detail.Message = api.UserMessage(err)
		detail.Detail = err.Error()
	case errors.As(err, &decodeErr):
		detail.Kind = "decode"
		detail.Message = api.UserMessage(err)
		detail.StatusCode = decodeErr.StatusCode
		detail.Detail = err.Error()
	case isUsageError(err):
		detail.Kind = "usage"
	}
	return errorPayload{Error: detail}
}
