// Package iocontext carries the command's I/O streams through context so
// commands can be exercised against buffers.
package iocontext

import (
	"context"
	"fmt"
	"io"
	"os"
)

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader

	// Quiet suppresses Statusf output.
	Quiet bool
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

// Statusf writes a progress or confirmation line to ErrOut unless Quiet is set.
func (s *IO) Statusf(format string, args ...any) {
	if s.Quiet || s.ErrOut == nil {
		return
	}
	_, _ = fmt.Fprintf(s.ErrOut, format+"\n", args...)
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
func GetIO(ctx context.Context) *IO {
	if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
		return streams
	}
	return DefaultIO()
}
