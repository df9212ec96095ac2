// Package outfmt carries the output settings chosen on the command line and
// renders command results as JSON or as aligned text.
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/taskman/taskman-cli/internal/filter"
)

// Mode is the output format.
type Mode int

const (
	Text Mode = iota
	JSON
)

// Parse parses an --output value.
func Parse(s string) (Mode, error) {
	switch s {
	case "text", "":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("invalid output format: %q (use 'text' or 'json')", s)
	}
}

func (m Mode) String() string {
	if m == JSON {
		return "json"
	}
	return "text"
}

// Options are the resolved --output, --compact and --query flags.
type Options struct {
	Mode    Mode
	Compact bool
	Query   string
}

// JSON reports whether results should be written as JSON.
func (o Options) JSON() bool {
	return o.Mode == JSON
}

type optionsKey struct{}

// WithOptions stores output options in the context.
func WithOptions(ctx context.Context, opts Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// FromContext returns the output options, or text output when none are set.
func FromContext(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey{}).(Options)
	return opts
}

// Write encodes v as JSON, running it through the query first when one is
// set. Nothing is written if the query fails.
func Write(w io.Writer, v any, opts Options) error {
	if opts.Query != "" {
		result, err := filter.ApplyTo(v, opts.Query)
		if err != nil {
			return err
		}
		v = result
	}

	enc := json.NewEncoder(w)
	if !opts.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
