// Package validation checks user input and server-supplied URLs before the
// CLI acts on them.
//
// Task image URLs come from the server response and are fetched without
// further confirmation, so ValidateImageURL refuses cloud metadata endpoints
// and link-local or unspecified addresses. Hostnames are not resolved.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateImageURL checks that rawURL is an absolute http(s) URL that does
// not point at a cloud metadata or link-local address.
func ValidateImageURL(rawURL string) error {
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("image URL exceeds maximum length of %d characters", MaxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid image URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image URL must use http or https, got %q", u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("image URL must contain a hostname")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("image URL targets a cloud metadata endpoint")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return validateIPAddress(ip)
	}
	return nil
}

// isCloudMetadata checks for cloud metadata endpoints
func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	cloudMetadataEndpoints := []string{
		"169.254.169.254",          // AWS, Azure, GCP, DigitalOcean
		"metadata.google.internal", // GCP
		"metadata",                 // Generic
		"instance-data",            // AWS
		"fd00:ec2::254",            // AWS IPv6
	}

	for _, endpoint := range cloudMetadataEndpoints {
		if lowercase == endpoint {
			return true
		}
	}
	return strings.HasSuffix(lowercase, ".metadata.google.internal")
}

// validateIPAddress rejects addresses an image can never legitimately live on.
// Loopback stays allowed for locally hosted servers.
func validateIPAddress(ip net.IP) error {
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if ip.IsMulticast() {
		return fmt.Errorf("multicast IP addresses are not allowed")
	}
	return nil
}
