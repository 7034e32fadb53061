package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/probe/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes probe's analyzer
and test generator as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "probe": {
        "command": "probe",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_source    Bug, complexity, security, coverage, performance and smell scores
  - generate_tests    Test skeletons for pytest, JUnit 5, Jest and Angular TestBed
  - count_tests       Count test cases in test source`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(cfg, log, false)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, mcpserver.WithService(svc), mcpserver.WithLogger(log.Named("mcp")))
	return server.Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
