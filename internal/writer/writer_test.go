package writer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docforge/internal/config"
	"git.home.luguber.info/inful/docforge/internal/governor"
	"git.home.luguber.info/inful/docforge/internal/llm"
	"git.home.luguber.info/inful/docforge/internal/outline"
)

func newTestWriter(client llm.Client, limits config.LimitsConfig) *Writer {
	gov := governor.New(client, config.GovernorConfig{RequestsPerMinute: 100, MaxAttempts: 1})
	return New(gov, limits)
}

func testLimits() config.LimitsConfig {
	return config.LimitsConfig{SectionContext: 80000, PreviousTail: 10000}
}

func TestWriteSetsContentAndFragments(t *testing.T) {
	body := "The main loop drives everything.\n\n```go\nfunc main() {}\n```\n\nMore prose."
	client := &llm.ScriptedClient{Responses: []string{body}}
	w := newTestWriter(client, testLimits())

	section := outline.NewSection(outline.Node{Title: "Core Components", Level: 1})
	require.NoError(t, w.Write(context.Background(), section, "snapshot", ""))

	assert.Equal(t, body, section.Content, "prose is stored unmodified")
	require.Len(t, section.CodeFragments, 1)
	assert.Equal(t, "func main() {}", section.CodeFragments[0])
}

func TestWriteOverwritesOnRegeneration(t *testing.T) {
	client := &llm.ScriptedClient{Responses: []string{"first body", "second body"}}
	w := newTestWriter(client, testLimits())
	section := outline.NewSection(outline.Node{Title: "Overview", Level: 1})

	require.NoError(t, w.Write(context.Background(), section, "ctx", ""))
	require.NoError(t, w.Write(context.Background(), section, "ctx", ""))
	assert.Equal(t, "second body", section.Content, "rewrite overwrites, never appends")
}

func TestWritePropagatesFailure(t *testing.T) {
	client := &llm.ScriptedClient{
		Responses: []string{""},
		Errors:    []error{errors.New("hard failure")},
	}
	w := newTestWriter(client, testLimits())
	section := outline.NewSection(outline.Node{Title: "Overview", Level: 1})

	err := w.Write(context.Background(), section, "ctx", "")
	require.Error(t, err)
	assert.Empty(t, section.Content)
}

func TestWriteCapsContextAndTail(t *testing.T) {
	client := &llm.ScriptedClient{Responses: []string{"body"}}
	w := newTestWriter(client, config.LimitsConfig{SectionContext: 100, PreviousTail: 10})
	section := outline.NewSection(outline.Node{Title: "Overview", Level: 1})

	snapshot := strings.Repeat("s", 500)
	previous := "OLD-CONTENT-" + strings.Repeat("p", 50) + "RECENT-TAIL"
	require.NoError(t, w.Write(context.Background(), section, snapshot, previous))

	require.Len(t, client.Prompts, 1)
	prompt := client.Prompts[0]
	assert.NotContains(t, prompt, strings.Repeat("s", 101), "snapshot is prefix-cut")
	assert.Contains(t, prompt, "ECENT-TAIL", "the most recent tail of prior output is kept")
	assert.NotContains(t, prompt, "OLD-CONTENT", "older prior output is dropped")
}

func TestExtractCodeFragments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			"fenced with language",
			"prose\n\n```python\nprint('hi')\n```\n",
			[]string{"print('hi')"},
		},
		{
			"sentinel block",
			"prose\nCODE_BLOCK_START\nmake build\nmake test\nCODE_BLOCK_END\nafter",
			[]string{"make build\nmake test"},
		},
		{
			"both kinds",
			"```\nfenced\n```\nCODE_BLOCK_START\nsentinel\nCODE_BLOCK_END",
			[]string{"fenced", "sentinel"},
		},
		{
			"no code",
			"just prose, nothing else",
			nil,
		},
		{
			"unterminated sentinel is dropped",
			"CODE_BLOCK_START\ndangling",
			nil,
		},
		{
			"multiple fenced",
			"```go\na()\n```\nmiddle\n```go\nb()\n```",
			[]string{"a()", "b()"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractCodeFragments(tc.in))
		})
	}
}
