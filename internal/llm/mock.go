package llm

import (
	"context"
	"sync"
)

// ScriptedClient is a test/debug implementation that replays canned responses
// in order and records every prompt it receives. It never touches the
// network.
type ScriptedClient struct {
	mu        sync.Mutex
	Responses []string
	Errors    []error // parallel to Responses; nil entries mean success
	Prompts   []string
	calls     int
}

// Invoke returns the next scripted response. Once the script runs out, the
// last response repeats.
func (s *ScriptedClient) Invoke(_ context.Context, prompt string, _ bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	i := s.calls
	s.calls++

	if i < len(s.Errors) && s.Errors[i] != nil {
		return "", s.Errors[i]
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	return s.Responses[i], nil
}

// Calls reports how many invocations were made.
func (s *ScriptedClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
