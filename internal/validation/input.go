package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Input length limits
const (
	MaxRSNLength        = 12
	MaxIdentifierLength = 255
	MaxURLLength        = 2048
)

// ValidateRSN checks a RuneScape name: 1 to 12 characters of letters,
// digits, spaces, hyphens and underscores.
func ValidateRSN(rsn string) error {
	if strings.TrimSpace(rsn) == "" {
		return fmt.Errorf("rsn is required")
	}

	length := utf8.RuneCountInString(rsn)
	if length > MaxRSNLength {
		return fmt.Errorf("invalid rsn %q: exceeds maximum length of %d characters (got %d)", rsn, MaxRSNLength, length)
	}

	for _, r := range rsn {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == ' ', r == '-', r == '_':
		default:
			return fmt.Errorf("invalid rsn %q: contains invalid character '%c'", rsn, r)
		}
	}
	return nil
}

// ValidateIdentifier checks the length of a spreadsheet id or website username.
func ValidateIdentifier(identifier string) error {
	length := utf8.RuneCountInString(identifier)
	if length > MaxIdentifierLength {
		return fmt.Errorf("identifier exceeds maximum length of %d characters (got %d)", MaxIdentifierLength, length)
	}
	return nil
}
