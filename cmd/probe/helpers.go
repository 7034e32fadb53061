package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/probe/internal/cache"
	"github.com/panbanda/probe/internal/llm"
	"github.com/panbanda/probe/internal/logger"
	"github.com/panbanda/probe/internal/output"
	"github.com/panbanda/probe/internal/progress"
	"github.com/panbanda/probe/internal/remote"
	"github.com/panbanda/probe/internal/service/analysis"
	scannerSvc "github.com/panbanda/probe/internal/service/scanner"
	"github.com/panbanda/probe/pkg/config"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// resolvePaths clones remote repository references (owner/repo[@ref] or a
// git URL) and returns local paths in their place. The returned cleanup
// removes the clones.
func resolvePaths(c *cli.Context, log hclog.Logger) ([]string, func(), error) {
	var clones []*remote.Source
	cleanup := func() {
		for _, src := range clones {
			src.Cleanup()
		}
	}

	var progressOut io.Writer = os.Stderr
	if c.Bool("quiet") {
		progressOut = io.Discard
	}

	paths := getPaths(c)
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		src, err := remote.Parse(p)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if src == nil {
			resolved = append(resolved, p)
			continue
		}
		log.Info("cloning repository", "url", src.URL, "ref", src.Ref)
		if err := src.Clone(c.Context, progressOut, true); err != nil {
			cleanup()
			return nil, nil, err
		}
		clones = append(clones, src)
		resolved = append(resolved, src.CloneDir)
	}
	return resolved, cleanup, nil
}

// outputFlags are shared by the commands that print reports.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown, toon, sarif (default from config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// loadConfig loads the config named by --config or found in the standard
// locations and applies the global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, hclog.Logger, error) {
	result, err := config.LoadConfig(loadOptions(c)...)
	if err != nil {
		return nil, nil, err
	}

	cfg := result.Config
	if c.Bool("verbose") {
		cfg.Logger.Level = "DEBUG"
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}

	log := logger.New(cfg, "probe")
	if result.Source != "" {
		log.Debug("loaded config", "path", result.Source)
	}
	return cfg, log, nil
}

// newService builds the analysis service. The external model is attached
// when enabled in config or forced with useModel.
func newService(cfg *config.Config, log hclog.Logger, useModel bool) (*analysis.Service, error) {
	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	opts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithCache(c),
		analysis.WithLogger(log),
	}
	if useModel || cfg.LLM.Enabled {
		client := llm.NewFromConfig(cfg.LLM, log)
		log.Debug("external model enabled", "model", client.Model())
		opts = append(opts, analysis.WithTextGenerator(client))
	}
	return analysis.New(opts...), nil
}

// scanFiles expands paths into supported source files.
func scanFiles(cfg *config.Config, log hclog.Logger, paths []string) ([]string, error) {
	result, err := scannerSvc.New(scannerSvc.WithConfig(cfg)).ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	if result.Skipped > 0 {
		log.Warn("skipped files over the size limit", "count", result.Skipped, "max_bytes", cfg.Analysis.MaxFileSize)
	}
	for lang, files := range result.LanguageGroups {
		log.Debug("found files", "language", lang, "count", len(files))
	}
	return result.Files, nil
}

// formatSettings resolves the output format and color from flags and config.
func formatSettings(c *cli.Context, cfg *config.Config) (output.Format, bool) {
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	return output.ParseFormat(format), cfg.Output.Color && !c.Bool("no-color")
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format, colored := formatSettings(c, cfg)
	return output.NewFormatter(format, c.String("output"), colored)
}

// newTracker returns a progress bar for batches of more than one file, or
// nil when progress is hidden.
func newTracker(c *cli.Context, label string, total int) *progress.Tracker {
	if c.Bool("quiet") || total < 2 {
		return nil
	}
	return progress.NewTracker(label, total)
}

func finishTracker(t *progress.Tracker, failed int) {
	if t != nil {
		t.FinishFailures(failed)
	}
}

func noFiles() error {
	color.Yellow("No supported source files found")
	return nil
}
