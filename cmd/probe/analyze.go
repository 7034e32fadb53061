package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/probe/internal/output"
	"github.com/panbanda/probe/internal/progress"
	"github.com/panbanda/probe/internal/service/analysis"
	"github.com/panbanda/probe/pkg/analyzer"
	"github.com/panbanda/probe/pkg/config"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/watch"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Score files for bugs, complexity, security, coverage, performance and smells",
		ArgsUsage: "[path...]",
		Description: `Paths may be files, directories, or remote repositories given as
owner/repo[@ref], host/owner/repo[@ref] or a git URL. Remote repositories
are cloned into a temporary directory for the run.`,
		Flags: append(outputFlags(),
			&cli.IntFlag{
				Name:  "tests",
				Usage: "Number of tests already written per file, used by the coverage estimate",
			},
			&cli.BoolFlag{
				Name:  "validate",
				Usage: "Validate every result against the analysis JSON schema",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep running and re-analyze files as they change",
			},
			&cli.StringFlag{
				Name:  "fail-on",
				Usage: "Exit non-zero when any finding has this severity or higher (low, medium, high, critical)",
			},
		),
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	failOn, err := parseFailOn(c.String("fail-on"))
	if err != nil {
		return err
	}

	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	paths, cleanup, err := resolvePaths(c, log)
	if err != nil {
		return err
	}
	defer cleanup()

	files, err := scanFiles(cfg, log, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return noFiles()
	}

	svc, err := newService(cfg, log, false)
	if err != nil {
		return err
	}

	tracker := newTracker(c, "Analyzing...", len(files))
	ctx := withProgress(c.Context, tracker)
	results, errs := svc.AnalyzeFiles(ctx, files, analysis.AnalyzeOptions{TestsGenerated: c.Int("tests")})
	finishTracker(tracker, len(errs.Messages()))

	report := output.NewAnalysisReport(results, errs.Messages()...)

	if c.Bool("validate") {
		if err := validateAnalyses(report.Analyses); err != nil {
			return err
		}
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(report); err != nil {
		return err
	}

	if c.Bool("watch") {
		return watchAnalyze(c, cfg, log, svc, paths[0])
	}

	if failOn != "" {
		if n := countAtOrAbove(report.Analyses, failOn); n > 0 {
			return fmt.Errorf("%d findings at or above %s severity", n, failOn)
		}
	}
	return nil
}

// watchAnalyze re-analyzes each changed file under root until interrupted.
func watchAnalyze(c *cli.Context, cfg *config.Config, log hclog.Logger, svc *analysis.Service, root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("--watch needs a directory, got %s", root)
	}

	w, err := watch.NewWatcher(root, cfg, 0)
	if err != nil {
		return err
	}
	defer w.Stop()

	format, colored := formatSettings(c, cfg)
	w.SetOutput(c.App.Writer)
	w.SetCallback(func(ctx context.Context, path string) {
		results, errs := svc.AnalyzeFiles(ctx, []string{path}, analysis.AnalyzeOptions{TestsGenerated: c.Int("tests")})
		f := output.NewFormatterWriter(format, c.App.Writer, colored)
		if err := f.Output(output.NewAnalysisReport(results, errs.Messages()...)); err != nil {
			log.Warn("failed to render analysis", "file", path, "error", err)
		}
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// withProgress attaches a tracker that advances the bar, if any.
func withProgress(ctx context.Context, t *progress.Tracker) context.Context {
	if t == nil {
		return ctx
	}
	return analyzer.WithTracker(ctx, analyzer.NewTracker(t.Callback()))
}

func validateAnalyses(analyses []*models.Analysis) error {
	var errs []error
	for _, a := range analyses {
		if err := models.ValidateAnalysis(a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.File, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("schema validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func parseFailOn(s string) (models.Severity, error) {
	if s == "" {
		return "", nil
	}
	sev := models.Severity(s)
	if sev.Weight() == 0 {
		return "", fmt.Errorf("--fail-on must be one of low, medium, warning, high, critical (got %q)", s)
	}
	return sev, nil
}

func countAtOrAbove(analyses []*models.Analysis, min models.Severity) int {
	n := 0
	for _, a := range analyses {
		for _, f := range a.Findings() {
			if f.Severity.Weight() >= min.Weight() {
				n++
			}
		}
	}
	return n
}
