package api

import (
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Source identifies which client integration originated a request.
type Source string

const (
	SourceSpreadsheet Source = "SPREADSHEET"
	SourceWebsite     Source = "WEBSITE"
)

// Sources lists every accepted source tag.
var Sources = []Source{SourceSpreadsheet, SourceWebsite}

// ParseSource parses a source tag case-insensitively.
func ParseSource(s string) (Source, error) {
	normalized := Source(strings.ToUpper(strings.TrimSpace(s)))
	for _, src := range Sources {
		if src == normalized {
			return src, nil
		}
	}
	return "", fmt.Errorf("invalid source %q (use %s or %s)", s, SourceSpreadsheet, SourceWebsite)
}

// Credentials authenticate a request against the task backend.
// They are supplied per call and never retained by the gateway.
type Credentials struct {
	Identifier string `json:"identifier" validate:"required,notblank"`
	Password   string `json:"password" validate:"required,notblank"`
	Source     Source `json:"source"`
}

var credentialValidator = newCredentialValidator()

func newCredentialValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Valid reports whether both identifier and password are set.
func (c Credentials) Valid() bool {
	return credentialValidator.Struct(c) == nil
}

// Task is a unit of in-game work assigned to a player.
// Image stays nil until the enrichment stage attaches one.
type Task struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	ImageURL string      `json:"imageUrl"`
	Tip      string      `json:"tip,omitempty"`
	WikiLink string      `json:"wikiLink,omitempty"`
	Image    image.Image `json:"-"`
}

// HasImage reports whether the enrichment stage attached an image.
func (t *Task) HasImage() bool {
	return t != nil && t.Image != nil
}

// TierProgress is the completion count for one task tier.
type TierProgress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Percentage returns the completed share of the tier, rounded down.
func (p TierProgress) Percentage() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// AccountProgress holds per-tier progress for an account.
type AccountProgress struct {
	CurrentTier string                  `json:"currentTier,omitempty"`
	Tiers       map[string]TierProgress `json:"progress"`
}

// CommandData is the public chat-command summary for a player.
type CommandData struct {
	Task               *Task  `json:"task,omitempty"`
	Tier               string `json:"tier"`
	ProgressPercentage int    `json:"progressPercentage"`
}

// ErrorResponse is the body the backend returns with any non-200 status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// encodeCredentials serializes credentials as the POST body for generate and complete.
func encodeCredentials(c Credentials) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return data, nil
}
