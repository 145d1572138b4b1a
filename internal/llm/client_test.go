package llm

import (
	"context"
	"errors"
	"testing"
)

func TestIsRateLimit(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain failure", errors.New("connection refused"), false},
		{"429 in message", errors.New("unexpected status 429"), true},
		{"quota", errors.New("Quota exceeded for requests per minute"), true},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED: try later"), true},
		{"rate limit words", errors.New("you have hit the rate limit"), true},
		{"too many requests", errors.New("Too Many Requests"), true},
		{"server error", errors.New("internal server error (500)"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRateLimit(tc.err); got != tc.want {
				t.Errorf("IsRateLimit(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestNewOpenAIClientValidation(t *testing.T) {
	if _, err := NewOpenAIClient(Settings{Model: "m"}); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := NewOpenAIClient(Settings{APIKey: "k"}); err == nil {
		t.Error("expected error for missing model")
	}
	if _, err := NewOpenAIClient(Settings{APIKey: "k", Model: "m", BaseURL: "http://localhost:1234/v1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScriptedClientReplay(t *testing.T) {
	c := &ScriptedClient{
		Responses: []string{"one", "two"},
		Errors:    []error{nil, errors.New("boom")},
	}

	got, err := c.Invoke(context.Background(), "p1", false)
	if err != nil || got != "one" {
		t.Fatalf("first call: got %q, %v", got, err)
	}

	if _, err := c.Invoke(context.Background(), "p2", false); err == nil {
		t.Fatal("second call should fail per script")
	}

	// Script exhausted: last response repeats.
	got, err = c.Invoke(context.Background(), "p3", false)
	if err != nil || got != "two" {
		t.Fatalf("third call: got %q, %v", got, err)
	}

	if c.Calls() != 3 {
		t.Errorf("expected 3 calls, got %d", c.Calls())
	}
	if len(c.Prompts) != 3 || c.Prompts[0] != "p1" {
		t.Errorf("prompts not recorded: %v", c.Prompts)
	}
}
