package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestNewRequest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserAgent = "taskman-cli/test"
	creds := Credentials{Identifier: "id-1", Password: "pw-1", Source: SourceWebsite}

	tests := []struct {
		op          operation
		method      string
		url         string
		wantAuth    bool
		wantProfile bool
		wantBody    bool
	}{
		{opCurrent, http.MethodGet, DefaultBaseURL + "/current", true, true, false},
		{opGenerate, http.MethodPost, DefaultBaseURL + "/generate", false, true, true},
		{opComplete, http.MethodPost, DefaultBaseURL + "/complete", false, true, true},
		{opProgress, http.MethodGet, DefaultBaseURL + "/progress", true, true, false},
		{opCommand, http.MethodGet, DefaultBaseURL + "/command/Iron%20Man", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			req, err := newRequest(context.Background(), cfg, tt.op, creds, "Iron Man")
			if err != nil {
				t.Fatalf("newRequest: %v", err)
			}
			if req.Method != tt.method {
				t.Errorf("method = %s, want %s", req.Method, tt.method)
			}
			if req.URL.String() != tt.url {
				t.Errorf("url = %s, want %s", req.URL.String(), tt.url)
			}
			if req.Header.Get("User-Agent") != "taskman-cli/test" {
				t.Errorf("User-Agent = %q", req.Header.Get("User-Agent"))
			}

			hasIdentifier := req.Header.Get("X-Taskman-Identifier") == "id-1"
			hasPassword := req.Header.Get("X-Taskman-Password") == "pw-1"
			if hasIdentifier != tt.wantAuth || hasPassword != tt.wantAuth {
				t.Errorf("auth headers present = %v/%v, want %v", hasIdentifier, hasPassword, tt.wantAuth)
			}

			hasSource := req.Header.Get("X-Taskman-Source") == "WEBSITE"
			hasRSN := req.Header.Get("X-Taskman-Rsn") == "Iron Man"
			if hasSource != tt.wantProfile || hasRSN != tt.wantProfile {
				t.Errorf("source/rsn headers present = %v/%v, want %v", hasSource, hasRSN, tt.wantProfile)
			}

			if !tt.wantBody {
				if req.Body != nil && req.Body != http.NoBody {
					t.Error("expected no body")
				}
				return
			}
			if req.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", req.Header.Get("Content-Type"))
			}
			raw, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			var got Credentials
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("body is not credentials JSON: %v", err)
			}
			if got != creds {
				t.Errorf("body = %+v, want %+v", got, creds)
			}
		})
	}
}

func TestNewRequest_CustomHeaders(t *testing.T) {
	cfg := Config{
		BaseURL: "http://localhost:8080/api",
		Headers: Headers{Identifier: "x-id", RSN: "x-player"},
	}.withDefaults()

	req, err := newRequest(context.Background(), cfg, opProgress, validCreds, "Zezima")
	if err != nil {
		t.Fatalf("newRequest: %v", err)
	}
	if req.URL.String() != "http://localhost:8080/api/progress" {
		t.Errorf("url = %s", req.URL)
	}
	if req.Header.Get("x-id") != validCreds.Identifier {
		t.Error("custom identifier header not used")
	}
	if req.Header.Get("x-player") != "Zezima" {
		t.Error("custom rsn header not used")
	}
	if req.Header.Get(DefaultPasswordHeader) != validCreds.Password {
		t.Error("password header should fall back to default name")
	}
}

func TestNewImageRequest(t *testing.T) {
	req, err := newImageRequest(context.Background(), DefaultConfig(), "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("newImageRequest: %v", err)
	}
	if req.Method != http.MethodGet {
		t.Errorf("method = %s", req.Method)
	}
	if len(req.Header) != 0 {
		t.Errorf("expected no headers, got %v", req.Header)
	}

	if _, err := newImageRequest(context.Background(), DefaultConfig(), "://bad"); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://taskman.up.railway.app/task", false},
		{"http://localhost:3000", false},
		{"ftp://example.com", true},
		{"example.com/task", true},
		{"https://", true},
	}
	for _, tt := range tests {
		err := Config{BaseURL: tt.url}.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestGatewayPreviewRequest(t *testing.T) {
	gw := NewGateway(Config{BaseURL: "http://tasks.test/task"}, nil)
	creds := Credentials{Identifier: "id-1", Password: "pw-1", Source: SourceSpreadsheet}

	req, err := gw.PreviewRequest(context.Background(), "complete", creds, "Zezima")
	if err != nil {
		t.Fatalf("PreviewRequest: %v", err)
	}
	if req.Method != http.MethodPost || req.URL.String() != "http://tasks.test/task/complete" {
		t.Errorf("got %s %s", req.Method, req.URL)
	}
	if got := req.Header.Get(DefaultRSNHeader); got != "Zezima" {
		t.Errorf("rsn header = %q", got)
	}

	req, err = gw.PreviewRequest(context.Background(), "command", creds, "Zezima")
	if err != nil {
		t.Fatalf("PreviewRequest command: %v", err)
	}
	if req.Header.Get(DefaultIdentifierHeader) != "" || req.Body != nil {
		t.Error("command preview should carry no credentials")
	}

	if _, err := gw.PreviewRequest(context.Background(), "delete", creds, "Zezima"); err == nil {
		t.Error("expected error for unknown operation")
	}
}
