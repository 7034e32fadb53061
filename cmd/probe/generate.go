package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/probe/internal/output"
	"github.com/panbanda/probe/internal/service/analysis"
)

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Write test skeletons for source files",
		ArgsUsage: "[path...]",
		Description: `Generates a test file per source file using the language's usual framework:
  test_<name>.py     pytest
  <Name>Test.java    JUnit 5 with Mockito
  <name>.spec.ts     Jest with Angular TestBed
  <name>.test.js     Jest with global mocks

Test files are written next to their sources unless --out-dir is given.
Existing test files are kept unless --force is given.`,
		Flags: append(outputFlags(),
			&cli.StringFlag{
				Name:    "out-dir",
				Aliases: []string{"d"},
				Usage:   "Directory for generated test files",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Generate without writing files",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing test files",
			},
			&cli.BoolFlag{
				Name:  "show",
				Usage: "Print the generated test bodies",
			},
			&cli.BoolFlag{
				Name:  "llm",
				Usage: "Use the configured external model, falling back to templates",
			},
		),
		Action: runGenerateCmd,
	}
}

func runGenerateCmd(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	files, err := scanFiles(cfg, log, getPaths(c))
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

	tracker := newTracker(c, "Generating...", len(files))
	ctx := withProgress(c.Context, tracker)
	drafts, errs, err := svc.GenerateFiles(ctx, files, analysis.GenerateOptions{
		OutDir:    c.String("out-dir"),
		DryRun:    c.Bool("dry-run"),
		Overwrite: c.Bool("force"),
	})
	finishTracker(tracker, len(errs.Messages()))
	if err != nil {
		return err
	}

	report := &output.DraftReport{
		Failures:    errs.Messages(),
		ShowContent: c.Bool("show") || c.Bool("dry-run"),
	}
	for _, d := range drafts {
		if d != nil {
			report.Drafts = append(report.Drafts, *d)
		}
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report)
}
