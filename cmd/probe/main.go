package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "probe",
		Usage:   "Heuristic code analysis and test skeleton generation",
		Version: version,
		Description: `Probe scores source files for likely bugs, complexity, security risks,
predicted test coverage, performance problems and code smells, and drafts
test files in each language's usual framework.

Supports: Python (pytest), Java (JUnit 5 + Mockito), TypeScript (Jest, Angular TestBed),
JavaScript (Jest)`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PROBE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide progress bars",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			generateCmd(),
			inspectCmd(),
			modelsCmd(),
			mcpCmd(),
			configCmd(),
			initCmd(),
		},
	}
}
