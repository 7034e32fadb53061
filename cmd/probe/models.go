package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/probe/internal/llm"
)

func modelsCmd() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "Check the external model server and list its models",
		Description: `Queries the Ollama-compatible server configured under [llm] and lists
the models it serves. The configured model is marked with *.`,
		Action: runModelsCmd,
	}
}

func runModelsCmd(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	client := llm.NewFromConfig(cfg.LLM, log)
	models, err := client.Models(c.Context)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.LLM.URL, err)
	}

	color.Green("Model server reachable: %s", cfg.LLM.URL)
	if len(models) == 0 {
		color.Yellow("No models installed")
		return nil
	}
	for _, m := range models {
		marker := " "
		if m == client.Model() {
			marker = "*"
		}
		fmt.Fprintf(c.App.Writer, "%s %s\n", marker, m)
	}
	return nil
}
