package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// operation names one backend call.
type operation int

const (
	opCurrent operation = iota
	opGenerate
	opComplete
	opProgress
	opCommand
)

func (o operation) String() string {
	switch o {
	case opCurrent:
		return "current"
	case opGenerate:
		return "generate"
	case opComplete:
		return "complete"
	case opProgress:
		return "progress"
	case opCommand:
		return "command"
	default:
		return "unknown"
	}
}

// authenticated reports whether the operation sends identifier and password headers.
func (o operation) authenticated() bool {
	return o == opCurrent || o == opProgress
}

// sendsCredentialBody reports whether the operation posts credentials as JSON.
func (o operation) sendsCredentialBody() bool {
	return o == opGenerate || o == opComplete
}

// newRequest builds the outbound request for op.
func newRequest(ctx context.Context, cfg Config, op operation, creds Credentials, rsn string) (*http.Request, error) {
	var (
		method = http.MethodGet
		target string
		body   io.Reader
	)

	switch op {
	case opCurrent:
		target = cfg.currentURL()
	case opGenerate:
		target = cfg.generateURL()
	case opComplete:
		target = cfg.completeURL()
	case opProgress:
		target = cfg.progressURL()
	case opCommand:
		target = cfg.commandURL(rsn)
	default:
		return nil, fmt.Errorf("unknown operation %d", op)
	}

	if op.sendsCredentialBody() {
		method = http.MethodPost
		data, err := encodeCredentials(creds)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if op == opCommand {
		return req, nil
	}

	if op.authenticated() {
		req.Header.Set(cfg.Headers.Identifier, creds.Identifier)
		req.Header.Set(cfg.Headers.Password, creds.Password)
	}
	req.Header.Set(cfg.Headers.Source, string(creds.Source))
	req.Header.Set(cfg.Headers.RSN, rsn)
	return req, nil
}

// newImageRequest builds the unauthenticated GET for a task image.
func newImageRequest(ctx context.Context, cfg Config, imageURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	return req, nil
}

// PreviewRequest builds the request the named operation would send, without
// sending it. Names match the operation strings: current, generate,
// complete, progress and command.
func (g *Gateway) PreviewRequest(ctx context.Context, name string, creds Credentials, rsn string) (*http.Request, error) {
	for op := opCurrent; op <= opCommand; op++ {
		if op.String() == name {
			if op == opCommand {
				creds = Credentials{}
			}
			return newRequest(ctx, g.cfg, op, creds, rsn)
		}
	}
	return nil, fmt.Errorf("unknown operation %q", name)
}
