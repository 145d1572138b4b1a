package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docforge/internal/config"
	"git.home.luguber.info/inful/docforge/internal/pipeline"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
	} `cmd:"" help:"Generate the full documentation document"`

	Plan struct {
	} `cmd:"" help:"Print the documentation outline without generating content"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch kctx.Command() {
	case "generate":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runGenerate(cfg); err != nil {
			slog.Error("Generation failed", "error", err)
			os.Exit(1)
		}
	case "plan":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runPlan(cfg); err != nil {
			slog.Error("Planning failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", CLI.Config)
	}
}

// signalContext cancels on SIGINT/SIGTERM so an interrupted run exits during
// its next governor wait instead of hanging out a full backoff.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runGenerate(cfg *config.Config) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nDocument: %s\n", result.DocumentPath)
	fmt.Printf("Sections: %d, screenshots: %d, diagrams: %d\n",
		len(result.Plan.Sections), result.Screenshots, result.Diagrams)
	return nil
}

func runPlan(cfg *config.Config) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	plan, err := p.Plan(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n", plan.Title)
	for i, section := range plan.Sections {
		indent := strings.Repeat("  ", section.Level-1)
		fmt.Printf("%s%d. %s", indent, i+1, section.Title)
		if len(section.ImageWants) > 0 {
			fmt.Printf(" (images: %d)", len(section.ImageWants))
		}
		fmt.Println()
	}
	return nil
}
