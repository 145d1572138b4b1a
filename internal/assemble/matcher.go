package assemble

import "strings"

// Matcher decides whether a resolved media item satisfies an inline image
// placeholder. The policy is pluggable because placeholder text comes from
// one generative call and item descriptions from another, so the right
// precision depends on the model in use.
type Matcher interface {
	Matches(placeholder, description string) bool
}

// LooseMatcher matches when either string contains the other,
// case-insensitively. Over-matching on a shared word is possible and
// accepted; the alternative misses paraphrased descriptions entirely.
type LooseMatcher struct{}

func (LooseMatcher) Matches(placeholder, description string) bool {
	p := strings.ToLower(strings.TrimSpace(placeholder))
	d := strings.ToLower(strings.TrimSpace(description))
	if p == "" || d == "" {
		return false
	}
	return strings.Contains(p, d) || strings.Contains(d, p)
}
