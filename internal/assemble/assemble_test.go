package assemble

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docforge/internal/outline"
)

func TestLooseMatcher(t *testing.T) {
	m := LooseMatcher{}

	tests := []struct {
		placeholder string
		description string
		want        bool
	}{
		{"main entry point", "Main entry point of the application", true},
		{"Screenshot of the main entry point", "main entry point", true},
		{"Installation steps", "installation STEPS", true},
		{"database schema", "user interface", false},
		{"", "anything", false},
		{"anything", "  ", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, m.Matches(tt.placeholder, tt.description),
			"%q vs %q", tt.placeholder, tt.description)
	}
}

func assembleToString(t *testing.T, plan *outline.Plan, meta Meta, opts ...Option) string {
	t.Helper()
	a := New(t.TempDir(), "doc.html", opts...)
	path, err := a.Assemble(plan, meta)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func singleSectionPlan(s *outline.Section) *outline.Plan {
	return &outline.Plan{Title: "Demo Documentation", Sections: []*outline.Section{s}}
}

func TestAssembleTitlePage(t *testing.T) {
	out := assembleToString(t, singleSectionPlan(outline.NewSection(outline.Node{Title: "Overview", Level: 1})), Meta{
		ProjectName: "demo",
		Description: "A demo project",
		CommitHash:  "abc12345",
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	})

	require.Contains(t, out, "<h1>Demo Documentation</h1>")
	require.Contains(t, out, "Project: demo")
	require.Contains(t, out, "Generated: March 14, 2026")
	require.Contains(t, out, "Revision: abc12345")
}

func TestAssembleRendersMarkdownBody(t *testing.T) {
	s := outline.NewSection(outline.Node{Title: "Usage", Level: 2})
	s.Content = "Run the binary.\n\n**Important:** read the config first."

	out := assembleToString(t, singleSectionPlan(s), Meta{ProjectName: "demo"})

	require.Contains(t, out, "<h2>Usage</h2>")
	require.Contains(t, out, "<strong>Important:</strong>")
}

func TestAssembleResolvesPlaceholders(t *testing.T) {
	s := outline.NewSection(outline.Node{
		Title:      "Installation",
		Level:      1,
		ImageWants: []string{"terminal showing install command"},
	})
	s.MediaItems[0].Path = "/shots/install.html"
	s.Content = "Install it:\n\n[IMAGE: terminal showing install command]\n\nDone."

	out := assembleToString(t, singleSectionPlan(s), Meta{ProjectName: "demo"})

	require.Contains(t, out, `<iframe src="/shots/install.html"`)
	require.Contains(t, out, "Figure: terminal showing install command")
	require.NotContains(t, out, "[IMAGE:")
	require.True(t, strings.Index(out, "Install it") < strings.Index(out, "<figure>"))
	require.True(t, strings.Index(out, "<figure>") < strings.Index(out, "Done."))
}

func TestAssembleOmitsUnresolvedItems(t *testing.T) {
	s := outline.NewSection(outline.Node{
		Title:      "Configuration",
		Level:      1,
		ImageWants: []string{"settings page"},
	})
	s.Content = "See the settings.\n\n[IMAGE: settings page]"

	out := assembleToString(t, singleSectionPlan(s), Meta{ProjectName: "demo"})

	require.NotContains(t, out, "<figure>", "unresolved media renders nothing")
	require.NotContains(t, out, "[IMAGE:", "placeholder is dropped either way")
}

func TestAssembleAppendsUnclaimedResolvedItems(t *testing.T) {
	s := outline.NewSection(outline.Node{
		Title:      "Overview",
		Level:      1,
		ImageWants: []string{"system architecture diagram"},
	})
	s.MediaItems[0].Path = "/shots/arch.html"
	s.Content = "No placeholder in this body."

	out := assembleToString(t, singleSectionPlan(s), Meta{ProjectName: "demo"})

	require.Contains(t, out, `<iframe src="/shots/arch.html"`)
	require.Contains(t, out, "Figure: system architecture diagram")
}

func TestAssembleAppendsCodeFragments(t *testing.T) {
	s := outline.NewSection(outline.Node{Title: "Usage", Level: 1})
	s.Content = "Run it."
	s.CodeFragments = []string{"make install && ./app <flags>"}

	out := assembleToString(t, singleSectionPlan(s), Meta{ProjectName: "demo"})

	require.Contains(t, out, `<pre class="code-fragment">`)
	require.Contains(t, out, "make install &amp;&amp; ./app &lt;flags&gt;")
}

type exactMatcher struct{}

func (exactMatcher) Matches(placeholder, description string) bool {
	return placeholder == description
}

func TestAssembleCustomMatcher(t *testing.T) {
	s := outline.NewSection(outline.Node{
		Title:      "Interface",
		Level:      1,
		ImageWants: []string{"overview"},
	})
	s.MediaItems[0].Path = "/shots/ui.html"
	s.Content = "[IMAGE: overview screenshot]"

	out := assembleToString(t, singleSectionPlan(s), Meta{ProjectName: "demo"}, WithMatcher(exactMatcher{}))

	// The exact matcher rejects the paraphrase, so the item falls through to
	// the unclaimed-figures pass instead of the placeholder position.
	require.Contains(t, out, `<iframe src="/shots/ui.html"`)
	require.Contains(t, out, "Figure: overview")
	require.NotContains(t, out, "Figure: overview screenshot")
}
