// Package llm abstracts the generative-text service behind a narrow client
// interface so the governor and the pipeline can be tested without network
// access.
package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
)

// Client is the minimal surface the pipeline needs from a generative service.
// When structured is true the implementation should nudge the model toward
// machine-parseable output; the response may still carry formatting noise.
type Client interface {
	Invoke(ctx context.Context, prompt string, structured bool) (string, error)
}

// Settings provides base configuration for concrete implementations.
type Settings struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// rateLimitSignatures are substrings that identify quota/429 style failures
// in provider error messages. Matching is case-insensitive.
var rateLimitSignatures = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"quota",
	"resource_exhausted",
	"resource has been exhausted",
	"too many requests",
	"429",
}

// IsRateLimit reports whether err looks like a quota or rate-limit rejection.
// The check covers both typed API errors (HTTP 429) and message signatures,
// since some providers surface quota failures as generic 400s with a
// descriptive body.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) && apierr.StatusCode == 429 {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
