// Package normalize converts best-effort textual output from the generative
// service into well-typed values. The service is instructed to emit raw JSON
// but is empirically unreliable about the exact shape: fencing, wrapping, and
// key renaming are the specific failure modes handled here. Unknown shapes
// are failures, not guesses.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// snippetLimit bounds how much offending text a ParseError carries.
const snippetLimit = 500

// ParseError reports unparseable or unrecognized-shape output. It carries a
// truncated snippet of the offending text for diagnostics.
type ParseError struct {
	Snippet string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("normalize: %v (text: %q)", e.Cause, e.Snippet)
	}
	return fmt.Sprintf("normalize: unrecognized shape (text: %q)", e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func newParseError(text string, cause error) *ParseError {
	if len(text) > snippetLimit {
		text = text[:snippetLimit]
	}
	return &ParseError{Snippet: text, Cause: cause}
}

// StripFence removes a leading triple-backtick fence (with optional language
// tag) and a trailing fence if present. Stripping an unfenced text is a
// no-op, and stripping twice equals stripping once.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop everything through the first line break, losing the ``` and any
	// language tag on that line.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}

	trimmed := strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(trimmed, "```") {
		if i := strings.LastIndex(trimmed, "```"); i >= 0 {
			s = trimmed[:i]
		}
	}
	return strings.TrimSpace(s)
}

// ExtractObject strips fencing and parses the text as a JSON object.
func ExtractObject(raw string) (map[string]any, error) {
	cleaned := StripFence(raw)
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, newParseError(cleaned, err)
	}
	return obj, nil
}

// ExtractArray strips fencing and parses the text as a JSON array.
func ExtractArray(raw string) ([]any, error) {
	cleaned := StripFence(raw)
	var arr []any
	if err := json.Unmarshal([]byte(cleaned), &arr); err != nil {
		return nil, newParseError(cleaned, err)
	}
	return arr, nil
}
