// Package schedule drives one documentation run through its phases and
// spends the global artifact budget on the sections that deserve it most.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docforge/internal/budget"
	"git.home.luguber.info/inful/docforge/internal/config"
	"git.home.luguber.info/inful/docforge/internal/governor"
	"git.home.luguber.info/inful/docforge/internal/normalize"
	"git.home.luguber.info/inful/docforge/internal/observability"
	"git.home.luguber.info/inful/docforge/internal/outline"
	"git.home.luguber.info/inful/docforge/internal/render"
	"git.home.luguber.info/inful/docforge/internal/writer"
)

// Phase is the run state. Transitions are strictly sequential, a run never
// moves backwards.
type Phase int

const (
	PhasePlanning Phase = iota
	PhaseWriting
	PhaseMediaAllocation
	PhaseDiagramAllocation
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhaseWriting:
		return "writing"
	case PhaseMediaAllocation:
		return "media-allocation"
	case PhaseDiagramAllocation:
		return "diagram-allocation"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Scheduler owns the phase machine for one run.
type Scheduler struct {
	gov      *governor.Governor
	planner  *outline.Planner
	writer   *writer.Writer
	budget   *budget.Budget
	renderer render.Renderer
	diagrams *render.DiagramRenderer

	cfg               config.BudgetConfig
	screenshotContext int
	diagramContext    int

	recorder governor.EventRecorder
	phase    Phase
}

// Option configures optional scheduler behavior.
type Option func(*Scheduler)

// WithRecorder attaches a journal recorder for allocation events.
func WithRecorder(r governor.EventRecorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// New builds a scheduler. The budget must be freshly initialized for this
// run; counters are never reset mid-run.
func New(
	gov *governor.Governor,
	planner *outline.Planner,
	w *writer.Writer,
	bud *budget.Budget,
	renderer render.Renderer,
	diagrams *render.DiagramRenderer,
	cfg config.BudgetConfig,
	limits config.LimitsConfig,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		gov:               gov,
		planner:           planner,
		writer:            w,
		budget:            bud,
		renderer:          renderer,
		diagrams:          diagrams,
		cfg:               cfg,
		screenshotContext: limits.ScreenshotContext,
		diagramContext:    limits.DiagramContext,
		phase:             PhasePlanning,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current run phase.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// Run executes the full phase sequence. A section write failure aborts the
// run; the partially filled plan is returned alongside the error so already
// produced content and artifacts survive for inspection.
func (s *Scheduler) Run(ctx context.Context, snapshot, projectName string) (*outline.Plan, error) {
	s.phase = PhasePlanning
	planCtx := observability.WithPhase(ctx, s.phase.String())
	plan := s.planner.Plan(planCtx, snapshot, projectName)
	s.record(planCtx, "plan_created", map[string]any{
		"title":    plan.Title,
		"sections": len(plan.Sections),
	})

	s.phase = PhaseWriting
	writeCtx := observability.WithPhase(ctx, s.phase.String())
	previous := ""
	for i, section := range plan.Sections {
		sectionCtx := observability.WithSection(writeCtx, section.Title)
		observability.InfoContext(sectionCtx, "Writing section",
			slog.Int("index", i+1), slog.Int("total", len(plan.Sections)))

		if err := s.writer.Write(sectionCtx, section, snapshot, previous); err != nil {
			return plan, err
		}
		previous += fmt.Sprintf("\n\n## %s\n%s", section.Title, section.Content)

		s.allocateMedia(sectionCtx, section, snapshot)
	}

	s.phase = PhaseMediaAllocation
	s.record(ctx, "screenshot_stream_closed", map[string]any{
		"used":      s.budget.Used(budget.KindScreenshot),
		"remaining": s.budget.Remaining(budget.KindScreenshot),
	})

	s.phase = PhaseDiagramAllocation
	s.allocateDiagrams(observability.WithPhase(ctx, s.phase.String()), plan, snapshot)
	s.record(ctx, "diagram_stream_closed", map[string]any{
		"used": s.budget.Used(budget.KindDiagram),
	})

	s.phase = PhaseDone
	return plan, nil
}

// allocateMedia resolves a section's image wants right after its content is
// written. Ineligible sections and budget exhaustion leave the wants
// unresolved, never an error.
func (s *Scheduler) allocateMedia(ctx context.Context, section *outline.Section, snapshot string) {
	if len(section.MediaItems) == 0 {
		return
	}
	if !matchesAny(section.Title, s.cfg.MediaKeywords) {
		observability.DebugContext(ctx, "Section not eligible for screenshots")
		return
	}
	if s.budget.Exhausted(budget.KindScreenshot) {
		observability.DebugContext(ctx, "Screenshot budget exhausted, skipping section")
		return
	}

	targets := s.identifyTargets(ctx, section, snapshot)
	for i, target := range targets {
		if i >= len(section.MediaItems) {
			break
		}
		if s.budget.Exhausted(budget.KindScreenshot) {
			break
		}
		path, err := s.renderer.Capture(target)
		if err != nil {
			observability.WarnContext(ctx, "Capture failed",
				slog.String("target", target.TargetPath), slog.Any("error", err))
			continue
		}
		if path == "" {
			continue
		}
		if !s.budget.TryAcquire(budget.KindScreenshot) {
			break
		}
		section.MediaItems[i].Path = path
		observability.RecordArtifact("screenshot")
		s.record(ctx, "artifact_resolved", map[string]any{
			"kind":    "screenshot",
			"section": section.Title,
			"path":    path,
		})
	}
}

// identifyTargets asks the service which files or views to capture for a
// section. Any failure here resolves to no targets; targeting is ancillary
// and must not take the run down.
func (s *Scheduler) identifyTargets(ctx context.Context, section *outline.Section, snapshot string) []render.Target {
	prompt := s.targetingPrompt(section, snapshot)
	raw, err := s.gov.Execute(ctx, prompt, governor.CategoryScreenshotTargeting, true, false)
	if err != nil {
		observability.WarnContext(ctx, "Screenshot targeting failed", slog.Any("error", err))
		return nil
	}

	arr, err := normalize.ExtractArray(raw)
	if err != nil {
		observability.WarnContext(ctx, "Unparseable targeting response", slog.Any("error", err))
		return nil
	}

	// Round-trip through JSON to decode the loosely typed array.
	data, err := json.Marshal(arr)
	if err != nil {
		return nil
	}
	var targets []render.Target
	if err := json.Unmarshal(data, &targets); err != nil {
		observability.WarnContext(ctx, "Malformed targeting entries", slog.Any("error", err))
		return nil
	}
	return targets
}

func (s *Scheduler) targetingPrompt(section *outline.Section, snapshot string) string {
	if len(snapshot) > s.screenshotContext {
		snapshot = snapshot[:s.screenshotContext]
	}
	wants := make([]string, len(section.MediaItems))
	for i, item := range section.MediaItems {
		wants[i] = item.Description
	}

	return fmt.Sprintf(`For this documentation section, identify specific screenshot targets.

Section: %s
Images Needed: %s

Project Context:
%s

For each image, provide:
1. target_type: "code_file", "directory_structure", or "config_file"
2. target_path: specific file path relative to project root
3. instructions: brief note on what to capture

Return ONLY a JSON array (no markdown, no code blocks):
[
    {
        "description": "image description",
        "target_type": "code_file",
        "target_path": "src/main.py",
        "instructions": "Focus on the main function"
    }
]

Return only valid JSON.`, section.Title, strings.Join(wants, "; "), snapshot)
}

// candidate is one section eligible for a diagram, ranked by the position of
// its first matching keyword. Lower rank generates first.
type candidate struct {
	section *outline.Section
	rank    int
}

// allocateDiagrams runs the diagram stream once all sections have content.
func (s *Scheduler) allocateDiagrams(ctx context.Context, plan *outline.Plan, snapshot string) {
	var candidates []candidate
	for _, section := range plan.Sections {
		if rank, ok := keywordRank(section.Title, s.cfg.DiagramKeywords); ok {
			candidates = append(candidates, candidate{section: section, rank: rank})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rank < candidates[j].rank
	})

	for _, c := range candidates {
		if s.budget.Exhausted(budget.KindDiagram) {
			break
		}
		sectionCtx := observability.WithSection(ctx, c.section.Title)

		source, err := s.gov.Execute(sectionCtx, s.diagramPrompt(c.section, snapshot),
			governor.CategoryDiagram, false, false)
		if err != nil {
			observability.WarnContext(sectionCtx, "Diagram generation failed", slog.Any("error", err))
			continue
		}

		path, err := s.diagrams.Render(source, c.section.Title)
		if err != nil {
			observability.WarnContext(sectionCtx, "Diagram rendering failed", slog.Any("error", err))
			c.section.DiagramItems = append(c.section.DiagramItems, outline.DiagramItem{
				Description: diagramDescription(c.section.Title),
				Source:      source,
			})
			continue
		}
		if !s.budget.TryAcquire(budget.KindDiagram) {
			break
		}

		c.section.DiagramItems = append(c.section.DiagramItems, outline.DiagramItem{
			Description: diagramDescription(c.section.Title),
			Source:      source,
			Path:        path,
		})
		c.section.MediaItems = append([]outline.MediaItem{{
			Description: diagramDescription(c.section.Title),
			Path:        path,
		}}, c.section.MediaItems...)

		observability.RecordArtifact("diagram")
		s.record(sectionCtx, "artifact_resolved", map[string]any{
			"kind":    "diagram",
			"section": c.section.Title,
			"path":    path,
		})
	}
}

func (s *Scheduler) diagramPrompt(section *outline.Section, snapshot string) string {
	if len(snapshot) > s.diagramContext {
		snapshot = snapshot[:s.diagramContext]
	}
	return fmt.Sprintf(`Create a mermaid diagram for this documentation section.

Section: %s

Project Context:
%s

Produce a single mermaid diagram that best illustrates this section: a
component, flow, or architecture view as appropriate.

Return ONLY the mermaid source, no surrounding prose, no code fences.`,
		section.Title, snapshot)
}

func diagramDescription(title string) string {
	return fmt.Sprintf("Diagram: %s", title)
}

func (s *Scheduler) record(ctx context.Context, event string, fields map[string]any) {
	if s.recorder != nil {
		s.recorder.Record(ctx, event, fields)
	}
}

// matchesAny reports whether any keyword is a case-insensitive substring of
// the title.
func matchesAny(title string, keywords []string) bool {
	_, ok := keywordRank(title, keywords)
	return ok
}

// keywordRank returns the position of the first keyword, in list order, that
// the title contains.
func keywordRank(title string, keywords []string) (int, bool) {
	lower := strings.ToLower(title)
	for i, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return i, true
		}
	}
	return 0, false
}
