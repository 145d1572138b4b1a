package outline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docforge/internal/config"
	"git.home.luguber.info/inful/docforge/internal/governor"
	"git.home.luguber.info/inful/docforge/internal/normalize"
	"git.home.luguber.info/inful/docforge/internal/observability"
)

// Planner asks the generative service for a documentation outline and
// repairs it into a Plan. Outline planning must never halt a run: any
// failure, parse or otherwise, degrades to a fixed fallback outline.
type Planner struct {
	gov        *governor.Governor
	cfg        config.OutlineConfig
	contextCap int
}

// NewPlanner builds a planner.
func NewPlanner(gov *governor.Governor, cfg config.OutlineConfig, contextCap int) *Planner {
	return &Planner{gov: gov, cfg: cfg, contextCap: contextCap}
}

// Plan produces the documentation outline for a project. This is always the
// pipeline's first generative call, so the pre-call pacing delay is skipped.
func (p *Planner) Plan(ctx context.Context, snapshot, projectName string) *Plan {
	if len(snapshot) > p.contextCap {
		snapshot = snapshot[:p.contextCap]
	}

	prompt := p.buildPrompt(snapshot, projectName)

	raw, err := p.gov.Execute(ctx, prompt, governor.CategoryPlan, true, true)
	if err != nil {
		observability.ErrorContext(ctx, "Outline request failed, using fallback outline",
			slog.Any("error", err))
		return fallbackPlan(projectName)
	}

	obj, err := normalize.ExtractOutline(raw)
	if err != nil {
		observability.WarnContext(ctx, "Outline response unusable, using fallback outline",
			slog.Any("error", err))
		return fallbackPlan(projectName)
	}

	plan := planFromObject(obj, projectName)
	if len(plan.Sections) == 0 {
		observability.WarnContext(ctx, "Outline has no usable sections, using fallback outline")
		return fallbackPlan(projectName)
	}
	return plan
}

// buildPrompt constructs the planning prompt. Small projects get a narrower
// section-count range; this is purely a prompt-construction decision.
func (p *Planner) buildPrompt(snapshot, projectName string) string {
	minSections, maxSections := p.cfg.MinSections, p.cfg.MaxSections
	if len(snapshot) < p.cfg.SmallProjectThreshold {
		minSections, maxSections = p.cfg.SmallMinSections, p.cfg.SmallMaxSections
	}

	return fmt.Sprintf(`You are a technical documentation expert. Analyze this codebase and create a comprehensive documentation plan.

Project: %s

Codebase Context:
%s

Create a detailed outline for technical documentation with between %d and %d top-level sections. Return ONLY a JSON object (no markdown, no code blocks) with this exact structure:
{
    "title": "Project Documentation Title",
    "sections": [
        {
            "title": "Section Title",
            "level": 1,
            "needs_images": true,
            "image_descriptions": ["description of screenshot 1"]
        }
    ]
}

Cover the project's purpose, architecture, installation, core components, usage, and configuration as the codebase warrants. Make it comprehensive but well-organized. Return ONLY valid JSON, nothing else.`,
		projectName, snapshot, minSections, maxSections)
}

// planFromObject converts a repaired outline object into a Plan. Entries
// without a title are dropped; levels below 1 are clamped.
func planFromObject(obj map[string]any, projectName string) *Plan {
	plan := &Plan{}
	if title, ok := obj["title"].(string); ok && strings.TrimSpace(title) != "" {
		plan.Title = title
	} else {
		plan.Title = projectName + " Documentation"
	}

	rawSections, _ := obj["sections"].([]any)
	for _, rs := range rawSections {
		m, ok := rs.(map[string]any)
		if !ok {
			continue
		}
		title, _ := m["title"].(string)
		if strings.TrimSpace(title) == "" {
			continue
		}

		node := Node{Title: title, Level: 1}
		if lvl, ok := m["level"].(float64); ok && int(lvl) >= 1 {
			node.Level = int(lvl)
		}
		if wants, ok := m["needs_images"].(bool); ok {
			node.WantsImages = wants
		}
		if descs, ok := m["image_descriptions"].([]any); ok {
			for _, d := range descs {
				if s, ok := d.(string); ok && s != "" {
					node.ImageWants = append(node.ImageWants, s)
				}
			}
		}
		if len(node.ImageWants) > 0 {
			node.WantsImages = true
		}

		plan.Sections = append(plan.Sections, NewSection(node))
	}
	return plan
}

// fallbackPlan is the minimal outline used when planning fails. The three
// entries are universally applicable to any software project.
func fallbackPlan(projectName string) *Plan {
	title := cases.Title(language.English, cases.NoLower).String(projectName) + " Documentation"
	return &Plan{
		Title: title,
		Sections: []*Section{
			NewSection(Node{Title: "Overview", Level: 1}),
			NewSection(Node{Title: "Installation", Level: 1}),
			NewSection(Node{Title: "Usage", Level: 1, WantsImages: true, ImageWants: []string{"example usage"}}),
		},
	}
}
