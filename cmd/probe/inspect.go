package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/probe/internal/output"
	"github.com/panbanda/probe/pkg/models"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Draft tests in memory, then analyze each file with the drafted test count",
		ArgsUsage: "[path...]",
		Flags: append(outputFlags(),
			&cli.BoolFlag{
				Name:  "show",
				Usage: "Print the drafted test bodies",
			},
			&cli.BoolFlag{
				Name:  "llm",
				Usage: "Use the configured external model, falling back to templates",
			},
		),
		Action: runInspectCmd,
	}
}

func runInspectCmd(c *cli.Context) error {
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

	svc, err := newService(cfg, log, c.Bool("llm"))
	if err != nil {
		return err
	}

	tracker := newTracker(c, "Inspecting...", len(files))
	results, errs := svc.Inspect(withProgress(c.Context, tracker), files)
	finishTracker(tracker, len(errs.Messages()))

	failures := errs.Messages()
	drafts := &output.DraftReport{Failures: failures, ShowContent: c.Bool("show")}
	var analyses []*models.Analysis
	for _, r := range results {
		if r == nil {
			continue
		}
		drafts.Drafts = append(drafts.Drafts, output.GeneratedDraft{Draft: r.Draft})
		analyses = append(analyses, r.Analysis)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&output.InspectionReport{
		Analyses: output.NewAnalysisReport(analyses),
		Drafts:   drafts,
	})
}
