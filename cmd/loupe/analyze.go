package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/vitruves/loupe/internal/output"
	"github.com/vitruves/loupe/internal/progress"
	"github.com/vitruves/loupe/pkg/config"
	"github.com/vitruves/loupe/pkg/engine"
	"github.com/vitruves/loupe/pkg/scanner"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"an"},
		Usage:     "Analyze source files for structure, complexity, and duplicates",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Near-duplicate similarity threshold (0.0-1.0)",
			},
			&cli.IntFlag{
				Name:  "shingle-size",
				Usage: "Token window size for near-duplicate matching",
			},
			&cli.IntFlag{
				Name:  "min-tokens",
				Usage: "Skip spans with fewer canonical tokens in duplicate detection",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker pool size (0 = 2x CPU count)",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 25,
				Usage: "Show only the N most complex spans in text output",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Force a lexical family for all files: clike or generic",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := collectInputs(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := progress.NewTracker("Analyzing...", len(files))
	eng := engine.New(
		engine.WithShingleSize(cfg.Engine.ShingleSize),
		engine.WithSimilarityThreshold(cfg.Engine.SimilarityThreshold),
		engine.WithMinTokens(cfg.Engine.MinTokens),
		engine.WithWorkers(cfg.Engine.Workers),
		engine.WithProgress(tracker.Tick),
	)
	report, err := eng.Analyze(ctx, files)
	if err != nil {
		if errors.Is(err, context.Canceled) && report != nil {
			tracker.FinishError(err)
			color.Yellow("Interrupted; reporting %d completed file(s)", report.Summary.TotalFiles)
		} else {
			tracker.FinishError(err)
			return err
		}
	} else {
		tracker.FinishSuccess()
	}

	format := output.ParseFormat(cfg.Output.Format)
	if c.IsSet("format") {
		format = output.ParseFormat(c.String("format"))
	}
	formatter, err := output.NewFormatter(format, c.String("output"), cfg.Output.Color && !c.Bool("no-color"))
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&output.ReportView{Report: report, Top: c.Int("top")})
}

// resolveConfig loads the explicit config file or searches the standard
// locations.
func resolveConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// applyFlags overlays command-line flags on the loaded config.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("threshold") {
		cfg.Engine.SimilarityThreshold = c.Float64("threshold")
	}
	if c.IsSet("shingle-size") {
		cfg.Engine.ShingleSize = c.Int("shingle-size")
	}
	if c.IsSet("min-tokens") {
		cfg.Engine.MinTokens = c.Int("min-tokens")
	}
	if c.IsSet("workers") {
		cfg.Engine.Workers = c.Int("workers")
	}
	if c.IsSet("language") {
		cfg.Engine.Language = c.String("language")
	}
}

// collectInputs scans the requested paths and reads every matching file.
// Unreadable files are skipped with a note; a broken file must never stop
// the rest of the corpus.
func collectInputs(c *cli.Context, cfg *config.Config) ([]engine.FileInput, error) {
	scan := scanner.NewScanner(cfg)

	var paths []string
	for _, path := range getPaths(c) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			paths = append(paths, abs)
			continue
		}
		found, err := scan.ScanDir(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		paths = append(paths, found...)
	}

	inputs := make([]engine.FileInput, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			color.Yellow("Skipping %s: %v", path, err)
			continue
		}
		family := cfg.Engine.Language
		if !c.IsSet("language") && family == "generic" {
			family = scanner.FamilyHint(path)
		}
		inputs = append(inputs, engine.FileInput{
			ID:     path,
			Text:   string(data),
			Family: family,
		})
	}
	return inputs, nil
}
