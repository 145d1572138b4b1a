package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docforge/internal/config"
	"git.home.luguber.info/inful/docforge/internal/llm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "main.go"), []byte("package main\n"), 0o644))

	out := t.TempDir()
	return &config.Config{
		Project: config.ProjectConfig{Name: "demo", Path: project},
		LLM:     config.LLMConfig{Model: "test", APIKey: "test"},
		Governor: config.GovernorConfig{
			RequestsPerMinute: 100,
			MaxAttempts:       1,
		},
		Outline: config.OutlineConfig{
			MinSections: 4, MaxSections: 10,
			SmallMinSections: 3, SmallMaxSections: 6,
			SmallProjectThreshold: 10000,
		},
		Budget: config.BudgetConfig{
			MaxScreenshots:  6,
			MaxDiagrams:     3,
			MediaKeywords:   []string{"installation", "usage"},
			DiagramKeywords: []string{"architecture", "overview"},
		},
		Limits: config.LimitsConfig{
			PlanContext: 100000, SectionContext: 80000,
			ScreenshotContext: 30000, DiagramContext: 50000,
			PreviousTail: 10000,
		},
		Snapshot: config.SnapshotConfig{
			ExcludedDirs:  []string{".git"},
			MaxFileSizeKB: 100,
			MaxFiles:      20,
		},
		Output: config.OutputConfig{
			Directory:     filepath.Join(out, "docs"),
			Filename:      "documentation.html",
			ScreenshotDir: filepath.Join(out, "shots"),
			MaxCodeLines:  50,
		},
		Journal: config.JournalConfig{Enabled: true, Path: ":memory:"},
	}
}

const planResponse = `{"title": "Demo Docs", "sections": [
	{"title": "Overview", "level": 1, "needs_images": false, "image_descriptions": []},
	{"title": "Usage", "level": 1, "needs_images": false, "image_descriptions": []}
]}`

func TestRunProducesDocument(t *testing.T) {
	cfg := testConfig(t)
	client := &llm.ScriptedClient{Responses: []string{
		planResponse,
		"Overview body.",
		"Usage body.",
		"graph TD\n  A --> B", // diagram for Overview
	}}

	p, err := NewWithClient(cfg, client)
	require.NoError(t, err)
	defer p.Close()
	require.NotEmpty(t, p.RunID())

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, p.RunID(), result.RunID)
	require.Len(t, result.Plan.Sections, 2)
	require.Equal(t, 1, result.Diagrams)

	data, err := os.ReadFile(result.DocumentPath)
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, "Demo Docs")
	require.Contains(t, out, "Overview body.")
	require.Contains(t, out, "Usage body.")
}

func TestRunSurfacesWriterFailure(t *testing.T) {
	cfg := testConfig(t)
	client := &llm.ScriptedClient{
		Responses: []string{planResponse, "Overview body."},
	}
	client.Errors = []error{nil, nil, os.ErrDeadlineExceeded}

	p, err := NewWithClient(cfg, client)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Run(context.Background())
	require.Error(t, err)

	// An aborted run never writes the document.
	_, statErr := os.Stat(filepath.Join(cfg.Output.Directory, cfg.Output.Filename))
	require.True(t, os.IsNotExist(statErr))
}

func TestPlanOnly(t *testing.T) {
	cfg := testConfig(t)
	client := &llm.ScriptedClient{Responses: []string{planResponse}}

	p, err := NewWithClient(cfg, client)
	require.NoError(t, err)
	defer p.Close()

	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Demo Docs", plan.Title)
	require.Len(t, plan.Sections, 2)
	require.Equal(t, 1, client.Calls(), "plan mode makes exactly one call")
}

func TestNewRejectsMissingAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.APIKey = ""

	_, err := New(cfg)
	require.Error(t, err)
}
