package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// ErrBodyTooLarge is returned by Execute when a response body exceeds the
// limit attached to the request context with WithBodyLimit.
var ErrBodyTooLarge = errors.New("response body too large")

type bodyLimitKey struct{}

// WithBodyLimit caps how many response bytes Execute reads for requests
// built from ctx. A non-positive limit means no cap.
func WithBodyLimit(ctx context.Context, limit int64) context.Context {
	return context.WithValue(ctx, bodyLimitKey{}, limit)
}

func bodyLimitFrom(ctx context.Context) int64 {
	limit, _ := ctx.Value(bodyLimitKey{}).(int64)
	return limit
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport dispatches requests to the backend.
//
// Enqueue must invoke done exactly once, from a goroutine owned by the
// transport, with either a response or a transport failure. Execute blocks
// until the response is read.
type Transport interface {
	Enqueue(req *http.Request, done func(*Response, error))
	Execute(req *http.Request) (*Response, error)
}

// HTTPTransport is the default Transport backed by net/http.
type HTTPTransport struct {
	HTTP *http.Client
}

// Compile-time interface implementation check
var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport with TLS 1.2+ and the given timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Enqueue runs the request on its own goroutine.
func (t *HTTPTransport) Enqueue(req *http.Request, done func(*Response, error)) {
	go func() {
		done(t.Execute(req))
	}()
}

// Execute performs the request and reads the whole body, up to the body
// limit carried by the request context.
func (t *HTTPTransport) Execute(req *http.Request) (*Response, error) {
	resp, err := t.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	limit := bodyLimitFrom(req.Context())
	var reader io.Reader = resp.Body
	if limit > 0 {
		if resp.ContentLength > limit {
			return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrBodyTooLarge, resp.ContentLength, limit)
		}
		reader = io.LimitReader(resp.Body, limit+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, limit)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
