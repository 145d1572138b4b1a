// Package pipeline wires the run: journal, governed client, snapshot,
// scheduler, assembler. One Run call is one complete documentation
// generation; there is no partial restart.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docforge/internal/assemble"
	"git.home.luguber.info/inful/docforge/internal/budget"
	"git.home.luguber.info/inful/docforge/internal/config"
	dferrors "git.home.luguber.info/inful/docforge/internal/errors"
	"git.home.luguber.info/inful/docforge/internal/governor"
	"git.home.luguber.info/inful/docforge/internal/journal"
	"git.home.luguber.info/inful/docforge/internal/llm"
	"git.home.luguber.info/inful/docforge/internal/observability"
	"git.home.luguber.info/inful/docforge/internal/outline"
	"git.home.luguber.info/inful/docforge/internal/render"
	"git.home.luguber.info/inful/docforge/internal/schedule"
	"git.home.luguber.info/inful/docforge/internal/snapshot"
	"git.home.luguber.info/inful/docforge/internal/writer"
)

// Result is what a successful run produced.
type Result struct {
	RunID        string
	DocumentPath string
	Plan         *outline.Plan
	Screenshots  int
	Diagrams     int
}

// Pipeline holds the wired collaborators for one run.
type Pipeline struct {
	cfg      *config.Config
	client   llm.Client
	journal  *journal.Journal
	recorder *journal.Recorder
	runID    string
}

// New wires a pipeline from configuration. Close must be called when done.
func New(cfg *config.Config) (*Pipeline, error) {
	client, err := llm.NewOpenAIClient(llm.Settings{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, dferrors.WrapError(err, dferrors.CategoryConfig, "building llm client")
	}
	return newWithClient(cfg, client)
}

// NewWithClient wires a pipeline around an existing client. Tests and the
// plan-only command use this to avoid touching the network.
func NewWithClient(cfg *config.Config, client llm.Client) (*Pipeline, error) {
	return newWithClient(cfg, client)
}

func newWithClient(cfg *config.Config, client llm.Client) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, client: client, runID: uuid.NewString()}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, dferrors.WrapError(err, dferrors.CategoryConfig, "opening run journal")
		}
		p.journal = j
		p.runID = j.RunID()
	}
	p.recorder = journal.NewRecorder(p.journal)
	return p, nil
}

// RunID identifies this run in logs and the journal.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Close releases the journal.
func (p *Pipeline) Close() error {
	if p.journal != nil {
		return p.journal.Close()
	}
	return nil
}

// Run executes the full pipeline and writes the final document.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx = observability.WithRunID(ctx, p.runID)
	started := time.Now()

	observability.InfoContext(ctx, "Starting documentation generation",
		slog.String("project", p.cfg.Project.Name))
	p.recorder.Record(ctx, "run_started", map[string]any{
		"project": p.cfg.Project.Name,
	})

	snap, err := p.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	sched, err := p.buildScheduler()
	if err != nil {
		return nil, err
	}

	plan, err := sched.Run(ctx, snap.Text, p.cfg.Project.Name)
	if err != nil {
		p.recorder.Record(ctx, "run_failed", map[string]any{
			"phase": sched.Phase().String(),
			"error": err.Error(),
		})
		return nil, err
	}

	asm := assemble.New(p.cfg.Output.Directory, p.cfg.Output.Filename)
	docPath, err := asm.Assemble(plan, assemble.Meta{
		ProjectName: p.cfg.Project.Name,
		Description: p.cfg.Project.Description,
		CommitHash:  snap.CommitHash,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		p.recorder.Record(ctx, "run_failed", map[string]any{
			"phase": "assembly",
			"error": err.Error(),
		})
		return nil, err
	}

	result := &Result{
		RunID:        p.runID,
		DocumentPath: docPath,
		Plan:         plan,
		Screenshots:  plan.ResolvedMediaCount(),
		Diagrams:     plan.ResolvedDiagramCount(),
	}

	observability.InfoContext(ctx, "Documentation generation complete",
		slog.String("document", docPath),
		slog.Int("sections", len(plan.Sections)),
		slog.Int("screenshots", result.Screenshots),
		slog.Int("diagrams", result.Diagrams),
		slog.Duration("elapsed", time.Since(started)))
	p.recorder.Record(ctx, "run_completed", map[string]any{
		"document": docPath,
		"sections": len(plan.Sections),
	})
	return result, nil
}

// Plan runs only the context-and-outline part of the pipeline. Used by the
// plan command to preview what a full run would generate.
func (p *Pipeline) Plan(ctx context.Context) (*outline.Plan, error) {
	ctx = observability.WithRunID(ctx, p.runID)

	snap, err := p.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	gov := governor.New(p.client, p.cfg.Governor, governor.WithRecorder(p.recorder))
	planner := outline.NewPlanner(gov, p.cfg.Outline, p.cfg.Limits.PlanContext)
	return planner.Plan(observability.WithPhase(ctx, "planning"), snap.Text, p.cfg.Project.Name), nil
}

func (p *Pipeline) loadSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	loader := snapshot.NewLoader(p.cfg.Snapshot, p.cfg.Project.Path, p.cfg.Project.Name)
	snap, err := loader.Load()
	if err != nil {
		return nil, dferrors.WrapError(err, dferrors.CategoryFileSystem, "loading project context")
	}
	observability.InfoContext(ctx, "Loaded project context",
		slog.Int("chars", len(snap.Text)),
		slog.String("commit", snap.CommitHash))
	return snap, nil
}

func (p *Pipeline) buildScheduler() (*schedule.Scheduler, error) {
	renderer, err := render.NewHTMLRenderer(
		p.cfg.Project.Path,
		p.cfg.Output.ScreenshotDir,
		p.cfg.Output.MaxCodeLines,
		p.cfg.Snapshot.ExcludedDirs,
	)
	if err != nil {
		return nil, err
	}
	diagrams, err := render.NewDiagramRenderer(p.cfg.Output.ScreenshotDir)
	if err != nil {
		return nil, err
	}

	gov := governor.New(p.client, p.cfg.Governor, governor.WithRecorder(p.recorder))
	return schedule.New(
		gov,
		outline.NewPlanner(gov, p.cfg.Outline, p.cfg.Limits.PlanContext),
		writer.New(gov, p.cfg.Limits),
		budget.New(p.cfg.Budget.MaxScreenshots, p.cfg.Budget.MaxDiagrams),
		renderer,
		diagrams,
		p.cfg.Budget,
		p.cfg.Limits,
		schedule.WithRecorder(p.recorder),
	), nil
}
