package dryrun

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
)

func stars(s string) string { return strings.Repeat("*", len(s)) }

func TestFromRequest(t *testing.T) {
	body := strings.NewReader(`{"identifier":"sheet-1","password":"hunter2","source":"SPREADSHEET"}`)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "http://tasks.test/task/generate", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("x-taskman-rsn", "Zezima")
	req.Header.Set("x-taskman-password", "hunter2")

	p, err := FromRequest("generate", req, stars, "x-taskman-password", "password")
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}

	if p.Method != http.MethodPost || p.URL != "http://tasks.test/task/generate" {
		t.Errorf("got %s %s", p.Method, p.URL)
	}
	if p.Headers["x-taskman-rsn"] != "Zezima" {
		t.Errorf("rsn header = %q", p.Headers["x-taskman-rsn"])
	}
	if p.Headers["x-taskman-password"] != "*******" {
		t.Errorf("password header not masked: %q", p.Headers["x-taskman-password"])
	}
	if p.Body["password"] != "*******" {
		t.Errorf("password field not masked: %v", p.Body["password"])
	}
	if p.Body["identifier"] != "sheet-1" {
		t.Errorf("identifier = %v", p.Body["identifier"])
	}

	// The request body stays readable.
	rest := new(bytes.Buffer)
	_, _ = rest.ReadFrom(req.Body)
	if !strings.Contains(rest.String(), "hunter2") {
		t.Error("FromRequest consumed the request body")
	}
}

func TestFromRequest_NoBody(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://tasks.test/task/current", nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := FromRequest("current", req, stars)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if p.Body != nil {
		t.Errorf("Body = %v, want nil", p.Body)
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Operation: "complete",
		Method:    http.MethodPost,
		URL:       "http://tasks.test/task/complete",
		Headers:   map[string]string{"x-taskman-rsn": "Zezima", "accept": "application/json"},
		Body:      map[string]any{"identifier": "sheet-1"},
	}

	var buf bytes.Buffer
	p.Write(&buf)
	output := buf.String()

	for _, want := range []string{"[DRY-RUN]", "POST http://tasks.test/task/complete (complete)", "x-taskman-rsn: Zezima", "identifier: sheet-1", "Nothing sent"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Index(output, "accept:") > strings.Index(output, "x-taskman-rsn:") {
		t.Error("headers should be sorted")
	}
}

func TestPreview_WriteWithWarnings(t *testing.T) {
	p := &Preview{
		Operation: "generate",
		Method:    http.MethodPost,
		URL:       "http://tasks.test/task/generate",
		Warnings:  []string{"no RSN set"},
	}

	var buf bytes.Buffer
	p.Write(&buf)

	if !strings.Contains(buf.String(), "Warnings:") || !strings.Contains(buf.String(), "! no RSN set") {
		t.Errorf("warnings missing:\n%s", buf.String())
	}
}
