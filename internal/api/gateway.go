package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskman/taskman-cli/internal/debug"
)

// Handler receives the outcome of an asynchronous operation. It is invoked
// exactly once per dispatched operation, on a transport-owned goroutine.
type Handler[T any] func(T, error)

// Gateway exposes the task backend operations.
//
// Asynchronous operations return a non-nil error only when they fail before
// dispatch (invalid credentials, unbuildable request); the handler is then
// never called. Otherwise the outcome, success or failure, arrives through
// the handler. Nothing is retried and no state is shared between calls.
type Gateway struct {
	cfg       Config
	transport Transport
}

// NewGateway creates a gateway. Unset config fields take their defaults and
// a nil transport is replaced with an HTTPTransport using DefaultTimeout.
func NewGateway(cfg Config, transport Transport) *Gateway {
	if transport == nil {
		transport = NewHTTPTransport(DefaultTimeout)
	}
	return &Gateway{
		cfg:       cfg.withDefaults(),
		transport: transport,
	}
}

// Config returns the resolved endpoint layout.
func (g *Gateway) Config() Config {
	return g.cfg
}

// CurrentTask fetches the player's current task and its image. Delivery
// waits for the image stage.
func (g *Gateway) CurrentTask(ctx context.Context, creds Credentials, rsn string, done Handler[*Task]) error {
	if err := checkCredentials(creds); err != nil {
		return err
	}
	return g.dispatchTask(withOperation(ctx, opCurrent), opCurrent, creds, rsn, done)
}

// GenerateTask asks the backend for a new task. Credentials are not checked
// locally; the backend rejects bad ones.
func (g *Gateway) GenerateTask(ctx context.Context, creds Credentials, rsn string, done Handler[*Task]) error {
	return g.dispatchTask(withOperation(ctx, opGenerate), opGenerate, creds, rsn, done)
}

// CompleteTask marks the current task complete and returns the next one.
func (g *Gateway) CompleteTask(ctx context.Context, creds Credentials, rsn string, done Handler[*Task]) error {
	return g.dispatchTask(withOperation(ctx, opComplete), opComplete, creds, rsn, done)
}

// AccountProgress fetches per-tier progress. No image stage.
func (g *Gateway) AccountProgress(ctx context.Context, creds Credentials, rsn string, done Handler[*AccountProgress]) error {
	if err := checkCredentials(creds); err != nil {
		return err
	}
	return dispatch(withOperation(ctx, opProgress), g, opProgress, creds, rsn, done)
}

// ChatCommandData looks up the public chat-command summary for rsn. It
// blocks until the response is read.
func (g *Gateway) ChatCommandData(ctx context.Context, rsn string) (*CommandData, error) {
	ctx = withOperation(ctx, opCommand)
	req, err := newRequest(ctx, g.cfg, opCommand, Credentials{}, rsn)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := g.transport.Execute(req)
	logCompletion(ctx, req.URL.String(), resp, err, start)
	return decodeCommandResponse(resp, err, rsn)
}

// dispatchTask chains the image stage behind a successful task decode.
func (g *Gateway) dispatchTask(ctx context.Context, op operation, creds Credentials, rsn string, done Handler[*Task]) error {
	if done == nil {
		done = func(*Task, error) {}
	}
	return dispatch(ctx, g, op, creds, rsn, func(task *Task, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		g.enrich(ctx, task, func(e enrichment) {
			done(e.applyTo(task), nil)
		})
	})
}

// dispatch builds the request for op, enqueues it and decodes the outcome into T.
func dispatch[T any](ctx context.Context, g *Gateway, op operation, creds Credentials, rsn string, done Handler[*T]) error {
	if done == nil {
		done = func(*T, error) {}
	}
	req, err := newRequest(ctx, g.cfg, op, creds, rsn)
	if err != nil {
		return err
	}

	start := time.Now()
	g.transport.Enqueue(req, func(resp *Response, err error) {
		logCompletion(ctx, req.URL.String(), resp, err, start)
		done(decodeResponse[T](ctx, resp, err))
	})
	return nil
}

func checkCredentials(creds Credentials) error {
	if !creds.Valid() {
		return &ConfigurationError{Reason: ErrCredentialsNotConfigured}
	}
	return nil
}

type loggerKey struct{}

// withOperation attaches a logger tagged with the operation and a fresh id.
func withOperation(ctx context.Context, op operation) context.Context {
	logger := slog.Default().With("op", op.String(), "op_id", uuid.NewString())
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

func logCompletion(ctx context.Context, url string, resp *Response, err error, start time.Time) {
	if !debug.IsEnabled(ctx) {
		return
	}
	logger := loggerFrom(ctx)
	if err != nil {
		logger.Debug("request failed", "url", url, "error", err, "duration", time.Since(start))
		return
	}
	if resp == nil {
		return
	}
	logger.Debug("request complete", "url", url, "status", resp.StatusCode, "duration", time.Since(start))
}
