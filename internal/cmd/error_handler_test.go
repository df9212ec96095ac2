package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/config"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "not configured",
			err:  config.ErrNotConfigured,
			want: []string{"taskman not configured", "Run: taskman auth login", "TASKMAN_IDENTIFIER"},
		},
		{
			name: "configuration",
			err:  &api.ConfigurationError{Reason: api.ErrCredentialsNotConfigured},
			want: []string{"Configuration error: " + api.ErrCredentialsNotConfigured},
		},
		{
			name: "unauthorized",
			err:  &api.RequestError{StatusCode: 401, Message: "Bad password"},
			want: []string{"Bad password (HTTP 401)", "identifier or password may be wrong"},
		},
		{
			name: "not found",
			err:  &api.RequestError{StatusCode: 404, Message: "No current task"},
			want: []string{"No current task (HTTP 404)", "taskman generate"},
		},
		{
			name: "server error",
			err:  &api.RequestError{StatusCode: 503, Message: "down"},
			want: []string{"down (HTTP 503)", "Wait and retry"},
		},
		{
			name: "other status",
			err:  &api.RequestError{StatusCode: 418, Message: "teapot"},
			want: []string{"teapot (HTTP 418)", "--debug"},
		},
		{
			name: "transport",
			err:  &api.TransportError{Err: errors.New("dial tcp: connection refused")},
			want: []string{"Could not reach the task server.", "Cause: dial tcp: connection refused", "--timeout"},
		},
		{
			name: "decode",
			err:  &api.DecodeError{StatusCode: 200, Err: errors.New("unexpected EOF")},
			want: []string{"Something went wrong talking to the task server.", "--base-url"},
		},
		{
			name: "plain",
			err:  errors.New("boom"),
			want: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			for _, want := range tt.want {
				assert.Contains(t, got, want)
			}
		})
	}

	assert.Empty(t, HandleError(nil))
}

func TestNewErrorPayload(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   string
		wantStatus int
	}{
		{"configuration", &api.ConfigurationError{Reason: "x"}, "configuration", 0},
		{"not configured", config.ErrNotConfigured, "configuration", 0},
		{"request", &api.RequestError{StatusCode: 404, Message: "gone"}, "request", 404},
		{"transport", &api.TransportError{Err: errors.New("refused")}, "transport", 0},
		{"decode", &api.DecodeError{StatusCode: 200, Err: errors.New("bad")}, "decode", 200},
		{"usage", errors.New("rsn is required"), "usage", 0},
		{"generic", errors.New("boom"), "error", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := newErrorPayload(tt.err)
			assert.Equal(t, tt.wantKind, payload.Error.Kind)
			assert.Equal(t, tt.wantStatus, payload.Error.StatusCode)
			assert.NotEmpty(t, payload.Error.Message)
		})
	}
}
