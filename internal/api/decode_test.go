package api

import (
	"context"
	"errors"
	"testing"
)

func TestDecodeResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		task, err := decodeResponse[Task](ctx, &Response{StatusCode: 200, Body: taskJSON("u")}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.ID != "42" || task.ImageURL != "u" || task.Image != nil {
			t.Errorf("unexpected task: %+v", task)
		}
	})

	t.Run("error message", func(t *testing.T) {
		_, err := decodeResponse[Task](ctx, &Response{StatusCode: 401, Body: []byte(`{"message":"wrong password"}`)}, nil)
		var reqErr *RequestError
		if !errors.As(err, &reqErr) || reqErr.Message != "wrong password" || reqErr.StatusCode != 401 {
			t.Fatalf("expected RequestError(401, wrong password), got %v", err)
		}
	})

	t.Run("error without message", func(t *testing.T) {
		_, err := decodeResponse[Task](ctx, &Response{StatusCode: 503, Body: []byte(`{}`)}, nil)
		if err == nil || err.Error() != "request failed with status 503" {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("transport failure skips decode", func(t *testing.T) {
		cause := errors.New("eof")
		_, err := decodeResponse[Task](ctx, &Response{StatusCode: 200, Body: []byte("garbage")}, cause)
		if !IsTransportError(err) || !errors.Is(err, cause) {
			t.Fatalf("expected TransportError wrapping cause, got %v", err)
		}
	})

	t.Run("nil response", func(t *testing.T) {
		_, err := decodeResponse[Task](ctx, nil, nil)
		if !IsTransportError(err) {
			t.Fatalf("expected TransportError, got %v", err)
		}
	})
}

func TestDecodeCommandResponse(t *testing.T) {
	_, err := decodeCommandResponse(&Response{StatusCode: 500}, nil, "Zezima")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Message != "could not get task command data for rsn: Zezima" {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = decodeCommandResponse(&Response{StatusCode: 200, Body: []byte(`[1,2]`)}, nil, "Zezima")
	if !IsDecodeError(err) {
		t.Fatalf("expected DecodeError, got %v", err)
	}

	data, err := decodeCommandResponse(&Response{StatusCode: 200, Body: []byte(`{"tier":"elite","progressPercentage":12}`)}, nil, "Zezima")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Tier != "elite" || data.ProgressPercentage != 12 || data.Task != nil {
		t.Errorf("unexpected data: %+v", data)
	}
}
