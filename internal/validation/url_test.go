package validation

import (
	"strings"
	"testing"
)

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "https host", url: "https://oldschool.runescape.wiki/images/Abyssal_demon.png"},
		{name: "http loopback", url: "http://127.0.0.1:8080/img/demon.png"},
		{name: "ipv6 loopback", url: "http://[::1]/img.png"},
		{name: "public ip", url: "http://93.184.216.34/img.png"},
		{name: "bad scheme", url: "file:///etc/passwd", wantErr: "must use http or https"},
		{name: "no scheme", url: "oldschool.runescape.wiki/img.png", wantErr: "must use http or https"},
		{name: "no host", url: "http:///img.png", wantErr: "hostname"},
		{name: "aws metadata", url: "http://169.254.169.254/latest/meta-data", wantErr: "cloud metadata"},
		{name: "gcp metadata", url: "http://metadata.google.internal/computeMetadata/v1/", wantErr: "cloud metadata"},
		{name: "gcp metadata subdomain", url: "http://x.metadata.google.internal/", wantErr: "cloud metadata"},
		{name: "link local", url: "http://169.254.1.1/img.png", wantErr: "link-local"},
		{name: "ipv6 link local", url: "http://[fe80::1]/img.png", wantErr: "link-local"},
		{name: "unspecified", url: "http://0.0.0.0/img.png", wantErr: "unspecified"},
		{name: "multicast", url: "http://239.1.1.1/img.png", wantErr: "multicast"},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", MaxURLLength), wantErr: "maximum length"},
		{name: "unparseable", url: "http://[::1/img.png", wantErr: "invalid image URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageURL(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateImageURL(%q) unexpected error: %v", tt.url, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateImageURL(%q) error = %v, want containing %q", tt.url, err, tt.wantErr)
			}
		})
	}
}
