package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json tag", "```json\n{\"title\": \"Test\"}\n```", `{"title": "Test"}`},
		{"bare fence", "```\n{\"title\": \"Test\"}\n```", `{"title": "Test"}`},
		{"no markers", `{"title": "No markers"}`, `{"title": "No markers"}`},
		{"extra whitespace", "  ```json  \n{\"title\": \"Test\"}  \n```  ", `{"title": "Test"}`},
		{"backticks inside value", "```json\n{\"v\": \"has ``` inside\"}\n```", "{\"v\": \"has ``` inside\"}"},
		{"no trailing fence", "```json\n{\"title\": \"Test\"}", `{"title": "Test"}`},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFence(tc.in))
		})
	}
}

// Stripping an already-unfenced text is a no-op, and stripping twice equals
// stripping once.
func TestStripFenceIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"title\": \"X\"}\n```",
		`{"title": "X"}`,
		"plain prose, no json at all",
	}
	for _, in := range inputs {
		once := StripFence(in)
		assert.Equal(t, once, StripFence(once), "input %q", in)
	}
}

func TestExtractObject(t *testing.T) {
	obj, err := ExtractObject("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, float64(1), obj["a"])

	_, err = ExtractObject("not json at all")
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Snippet, "not json")
}

func TestParseErrorSnippetTruncation(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	_, err := ExtractObject(string(long))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.LessOrEqual(t, len(pe.Snippet), 500)
}

func TestExtractArray(t *testing.T) {
	arr, err := ExtractArray("```json\n[{\"description\": \"d\"}]\n```")
	require.NoError(t, err)
	require.Len(t, arr, 1)

	_, err = ExtractArray(`{"not": "an array"}`)
	assert.Error(t, err)
}

// Raw response wrapped in a fence and a "plan" wrapper key normalizes to the
// bare outline object.
func TestExtractOutlineFencedAndWrapped(t *testing.T) {
	raw := "```json\n{\"plan\": {\"title\": \"X\", \"sections\": []}}\n```"

	obj, err := ExtractOutline(raw)
	require.NoError(t, err)
	assert.Equal(t, "X", obj["title"])
	assert.Equal(t, []any{}, obj["sections"])
}

// Unwrapping a wrapped outline yields a value identical to the same outline
// presented unwrapped.
func TestRepairUnwrapDeterminism(t *testing.T) {
	bare := map[string]any{"title": "X", "sections": []any{map[string]any{"title": "Overview", "level": float64(1)}}}
	for _, wrapper := range []string{"plan", "documentation_plan", "outline", "document"} {
		wrapped := map[string]any{wrapper: map[string]any{
			"title":    "X",
			"sections": []any{map[string]any{"title": "Overview", "level": float64(1)}},
		}}
		got, err := RepairOutline(wrapped)
		require.NoError(t, err, "wrapper %s", wrapper)
		assert.Equal(t, bare, got, "wrapper %s", wrapper)
	}
}

func TestRepairFieldSynonyms(t *testing.T) {
	obj, err := RepairOutline(map[string]any{
		"document_title": "X",
		"outline":        []any{},
	})
	require.NoError(t, err)
	assert.Equal(t, "X", obj["title"])
	assert.Equal(t, []any{}, obj["sections"])
	_, hasOld := obj["document_title"]
	assert.False(t, hasOld)
}

func TestRepairDoesNotClobberCanonicalFields(t *testing.T) {
	obj, err := RepairOutline(map[string]any{
		"title":    "Canonical",
		"name":     "Synonym",
		"sections": []any{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Canonical", obj["title"])
}

func TestRepairUnknownShapeFails(t *testing.T) {
	// Unknown wrapper key: not unwrapped, required fields absent.
	_, err := RepairOutline(map[string]any{"stuff": map[string]any{"title": "X", "sections": []any{}}})
	assert.Error(t, err)

	// Sections present but no title synonym at all.
	_, err = RepairOutline(map[string]any{"sections": []any{}})
	assert.Error(t, err)
}
