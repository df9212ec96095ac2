package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var errEmptyResult = errors.New("response body decoded to an empty result")

// decodeResponse maps a transport outcome to a typed result or one of the
// package's error types. A result is only returned when it was fully
// decoded from a 200 body.
func decodeResponse[T any](ctx context.Context, resp *Response, err error) (*T, error) {
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp == nil {
		return nil, &TransportError{Err: errors.New("no response received")}
	}

	if resp.StatusCode == http.StatusOK && len(resp.Body) > 0 {
		return decodeBody[T](resp)
	}
	return nil, decodeErrorResponse(ctx, resp)
}

func decodeBody[T any](resp *Response) (*T, error) {
	var out *T
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &DecodeError{StatusCode: resp.StatusCode, Err: err}
	}
	if out == nil {
		return nil, &DecodeError{StatusCode: resp.StatusCode, Err: errEmptyResult}
	}
	return out, nil
}

// decodeErrorResponse turns a rejected call into a RequestError, or a
// DecodeError when the body is not an ErrorResponse.
func decodeErrorResponse(ctx context.Context, resp *Response) error {
	loggerFrom(ctx).Error("request rejected", "status", resp.StatusCode, "body", string(resp.Body))

	var errResp ErrorResponse
	if err := json.Unmarshal(resp.Body, &errResp); err != nil {
		return &DecodeError{StatusCode: resp.StatusCode, Err: fmt.Errorf("error body: %w", err)}
	}
	msg := errResp.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return &RequestError{StatusCode: resp.StatusCode, Message: msg}
}

// decodeCommandResponse handles the synchronous command lookup, where any
// non-200 status is reported against the looked-up player.
func decodeCommandResponse(resp *Response, err error, rsn string) (*CommandData, error) {
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp == nil {
		return nil, &TransportError{Err: errors.New("no response received")}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("could not get task command data for rsn: %s", rsn),
		}
	}
	return decodeBody[CommandData](resp)
}
