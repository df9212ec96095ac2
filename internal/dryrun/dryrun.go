// Package dryrun previews task requests without sending them.
package dryrun

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Preview describes a request that would have been sent.
type Preview struct {
	Operation string            `json:"operation"`
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      map[string]any    `json:"body,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// FromRequest captures req without consuming its body. Values of the
// sensitive header names and body fields are passed through mask.
func FromRequest(operation string, req *http.Request, mask func(string) string, sensitive ...string) (*Preview, error) {
	hidden := make(map[string]bool, len(sensitive))
	for _, name := range sensitive {
		hidden[strings.ToLower(name)] = true
	}

	p := &Preview{
		Operation: operation,
		Method:    req.Method,
		URL:       req.URL.String(),
		Headers:   make(map[string]string, len(req.Header)),
	}
	for name := range req.Header {
		value := req.Header.Get(name)
		if hidden[strings.ToLower(name)] {
			value = mask(value)
		}
		p.Headers[strings.ToLower(name)] = value
	}

	if req.GetBody == nil {
		return p, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	defer func() { _ = body.Close() }()
	if err := json.NewDecoder(body).Decode(&p.Body); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	for key, value := range p.Body {
		if s, ok := value.(string); ok && hidden[strings.ToLower(key)] {
			p.Body[key] = mask(s)
		}
	}
	return p, nil
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would %s %s (%s)\n", p.Method, p.URL, p.Operation)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	writeSorted(w, "Headers", p.Headers)
	body := make(map[string]string, len(p.Body))
	for k, v := range p.Body {
		body[k] = fmt.Sprint(v)
	}
	writeSorted(w, "Body", body)

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "Nothing sent (dry-run mode)")
}

func writeSorted(w io.Writer, title string, values map[string]string) {
	if len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	_, _ = fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", k, values[k])
	}
	_, _ = fmt.Fprintln(w)
}
