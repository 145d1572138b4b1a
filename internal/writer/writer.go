// Package writer generates the prose body for one section at a time,
// conditioned on the codebase snapshot and on previously written sections
// for continuity.
package writer

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docforge/internal/config"
	"git.home.luguber.info/inful/docforge/internal/governor"
	"git.home.luguber.info/inful/docforge/internal/observability"
	"git.home.luguber.info/inful/docforge/internal/outline"
)

// Writer produces section content through the governor. It has no fallback
// of its own: a failure for one section is fatal to that section and
// propagates to the scheduler.
type Writer struct {
	gov        *governor.Governor
	contextCap int
	tailCap    int
}

// New builds a writer with the configured truncation ceilings.
func New(gov *governor.Governor, limits config.LimitsConfig) *Writer {
	return &Writer{
		gov:        gov,
		contextCap: limits.SectionContext,
		tailCap:    limits.PreviousTail,
	}
}

// Write generates the body for one section and records it on the section
// along with any extracted code fragments. Re-invoking on a section
// overwrites; it never appends.
func (w *Writer) Write(ctx context.Context, section *outline.Section, snapshot, previous string) error {
	if len(snapshot) > w.contextCap {
		snapshot = snapshot[:w.contextCap]
	}
	// Keep the most recent tail of prior output: continuity without
	// unbounded prompt growth.
	if len(previous) > w.tailCap {
		previous = previous[len(previous)-w.tailCap:]
	}

	prompt := buildPrompt(section, snapshot, previous)

	content, err := w.gov.Execute(ctx, prompt, governor.CategorySectionContent, false, false)
	if err != nil {
		return err
	}

	section.Content = content
	section.CodeFragments = ExtractCodeFragments(content)
	observability.RecordSectionWritten()
	return nil
}

func buildPrompt(section *outline.Section, snapshot, previous string) string {
	return fmt.Sprintf(`Generate detailed technical documentation content for this section.

Section Title: %s
Section Level: %d

Full Project Context:
%s

Previously Written Sections (for continuity):
%s

Requirements:
1. Write comprehensive, technical content appropriate for this section
2. Use clear, professional language suitable for developers
3. Include specific code examples where relevant (wrap them in CODE_BLOCK_START and CODE_BLOCK_END)
4. Be specific and detailed based on the actual code, not generic
5. If this section needs images, write content that naturally references them with [IMAGE: description] placeholders
6. Write 400-1000 words depending on section importance
7. Use markdown formatting (**, *, lists) for structure
8. Focus on practical, actionable information

Generate ONLY the content for this section. No preamble, no "Here's the content:", just the actual documentation text.`,
		section.Title, section.Level, snapshot, previous)
}
