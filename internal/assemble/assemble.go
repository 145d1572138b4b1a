// Package assemble renders the finished plan to a single HTML document.
// Section bodies are markdown and go through goldmark; resolved media items
// become figure blocks, unresolved ones are silently omitted.
package assemble

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	dferrors "git.home.luguber.info/inful/docforge/internal/errors"
	"git.home.luguber.info/inful/docforge/internal/outline"
)

// Meta is the title-page information.
type Meta struct {
	ProjectName string
	Description string
	CommitHash  string
	GeneratedAt time.Time
}

// Assembler writes the final document.
type Assembler struct {
	md      goldmark.Markdown
	matcher Matcher
	outDir  string
	outFile string
}

// Option configures optional assembler behavior.
type Option func(*Assembler)

// WithMatcher replaces the default loose placeholder matcher.
func WithMatcher(m Matcher) Option {
	return func(a *Assembler) { a.matcher = m }
}

// New creates an assembler writing to dir/filename.
func New(dir, filename string, opts ...Option) *Assembler {
	a := &Assembler{
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		matcher: LooseMatcher{},
		outDir:  dir,
		outFile: filename,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var imagePlaceholder = regexp.MustCompile(`\[IMAGE:\s*([^\]]+)\]`)

// Assemble renders the plan and writes the document. The returned path is the
// written file.
func (a *Assembler) Assemble(plan *outline.Plan, meta Meta) (string, error) {
	var body strings.Builder
	body.WriteString(a.titlePage(plan.Title, meta))

	for _, section := range plan.Sections {
		sectionHTML, err := a.renderSection(section)
		if err != nil {
			return "", err
		}
		body.WriteString(sectionHTML)
	}

	doc := documentShell(plan.Title, body.String())

	if err := os.MkdirAll(a.outDir, 0o755); err != nil {
		return "", dferrors.WrapError(err, dferrors.CategoryFileSystem, "creating output directory")
	}
	path := filepath.Join(a.outDir, a.outFile)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", dferrors.WrapError(err, dferrors.CategoryFileSystem, "writing document")
	}
	return path, nil
}

func (a *Assembler) titlePage(title string, meta Meta) string {
	var sb strings.Builder
	sb.WriteString(`<header class="title-page">` + "\n")
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(title))
	fmt.Fprintf(&sb, "<p class=\"subtitle\">Project: %s</p>\n", html.EscapeString(meta.ProjectName))
	if meta.Description != "" {
		fmt.Fprintf(&sb, "<p class=\"description\">%s</p>\n", html.EscapeString(meta.Description))
	}
	fmt.Fprintf(&sb, "<p class=\"generated\">Generated: %s</p>\n", meta.GeneratedAt.Format("January 2, 2006"))
	if meta.CommitHash != "" {
		fmt.Fprintf(&sb, "<p class=\"commit\">Revision: %s</p>\n", html.EscapeString(meta.CommitHash))
	}
	sb.WriteString("</header>\n")
	return sb.String()
}

// renderSection converts one section's markdown to HTML, resolving inline
// image placeholders as it goes, then appends leftover figures and code
// fragments.
func (a *Assembler) renderSection(section *outline.Section) (string, error) {
	var sb strings.Builder
	level := section.Level
	if level < 1 || level > 6 {
		level = 1
	}
	fmt.Fprintf(&sb, "<section>\n<h%d>%s</h%d>\n", level, html.EscapeString(section.Title), level)

	used := make([]bool, len(section.MediaItems))

	rest := section.Content
	for {
		loc := imagePlaceholder.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		before, desc := rest[:loc[0]], rest[loc[2]:loc[3]]
		rest = rest[loc[1]:]

		chunk, err := a.markdown(before)
		if err != nil {
			return "", err
		}
		sb.WriteString(chunk)

		for i, item := range section.MediaItems {
			if used[i] || item.Path == "" || !a.matcher.Matches(desc, item.Description) {
				continue
			}
			sb.WriteString(figure(item.Path, desc))
			used[i] = true
			break
		}
		// Placeholders with no resolved match are dropped from the body.
	}

	chunk, err := a.markdown(rest)
	if err != nil {
		return "", err
	}
	sb.WriteString(chunk)

	// Resolved items that no placeholder claimed still get shown.
	for i, item := range section.MediaItems {
		if !used[i] && item.Path != "" {
			sb.WriteString(figure(item.Path, item.Description))
		}
	}

	for _, fragment := range section.CodeFragments {
		fmt.Fprintf(&sb, "<pre class=\"code-fragment\"><code>%s</code></pre>\n", html.EscapeString(fragment))
	}

	sb.WriteString("</section>\n")
	return sb.String(), nil
}

func (a *Assembler) markdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := a.md.Convert([]byte(src), &buf); err != nil {
		return "", dferrors.WrapError(err, dferrors.CategoryRender, "converting section markdown")
	}
	return buf.String(), nil
}

func figure(path, caption string) string {
	return fmt.Sprintf(
		"<figure>\n<iframe src=%q loading=\"lazy\"></iframe>\n<figcaption>Figure: %s</figcaption>\n</figure>\n",
		path, html.EscapeString(caption))
}

func documentShell(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 900px; margin: 0 auto; padding: 40px 20px; font-family: sans-serif; line-height: 1.6; color: #1f2328; }
.title-page { text-align: center; padding: 80px 0; border-bottom: 1px solid #d1d9e0; margin-bottom: 40px; }
.title-page h1 { font-size: 2.5em; color: #0969da; }
.title-page .generated, .title-page .commit { color: #59636e; font-style: italic; }
section { margin-bottom: 32px; }
pre { background: #f6f8fa; padding: 16px; border-radius: 6px; overflow-x: auto; }
figure { margin: 24px 0; }
figure iframe { width: 100%%; height: 420px; border: 1px solid #d1d9e0; border-radius: 6px; }
figcaption { color: #59636e; font-size: 0.9em; margin-top: 8px; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body)
}
