package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/probe/internal/output"
	"github.com/panbanda/probe/internal/service/analysis"
	scannerSvc "github.com/panbanda/probe/internal/service/scanner"
	"github.com/panbanda/probe/pkg/generator"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/parser"
	"github.com/panbanda/probe/pkg/source"
)

// SourceInput selects what a tool works on: inline source or paths.
type SourceInput struct {
	Source   string   `json:"source,omitempty" jsonschema:"Inline source code. Takes precedence over paths."`
	Filename string   `json:"filename,omitempty" jsonschema:"File name for inline source; its extension selects the language."`
	Paths    []string `json:"paths,omitempty" jsonschema:"Files or directories to process when no inline source is given. Defaults to the current directory."`
	Format   string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, markdown or sarif."`
}

// AnalyzeSourceInput adds analysis options.
type AnalyzeSourceInput struct {
	SourceInput
	TestsGenerated int `json:"tests_generated,omitempty" jsonschema:"Number of tests already written for the code; drives the coverage estimate."`
}

// GenerateTestsInput adds generation options.
type GenerateTestsInput struct {
	SourceInput
	IncludeContent *bool `json:"include_content,omitempty" jsonschema:"Include draft bodies in text and markdown output. Default true."`
}

// CountTestsInput is the input of count_tests.
type CountTestsInput struct {
	Content  string `json:"content" jsonschema:"Test source to count."`
	Language string `json:"language,omitempty" jsonschema:"python, java, typescript or javascript. Derived from filename when empty."`
	Filename string `json:"filename,omitempty" jsonschema:"Test file name used to derive the language."`
}

// CountTestsResult is the output of count_tests.
type CountTestsResult struct {
	Tests    int             `json:"tests"`
	Language parser.Language `json:"language"`
}

func getPaths(input SourceInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	case "sarif":
		return output.FormatSARIF
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewFormatterWriter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// inlineUnit returns the unit for inline source, or nil when paths apply.
func inlineUnit(input SourceInput) (*source.Unit, error) {
	if input.Source == "" {
		return nil, nil
	}
	if input.Filename == "" {
		return nil, fmt.Errorf("filename is required with inline source")
	}
	return source.New(input.Source, input.Filename), nil
}

func (s *Server) scan(input SourceInput) ([]string, error) {
	result, err := scannerSvc.New(scannerSvc.WithConfig(s.config)).ScanPaths(getPaths(input))
	if err != nil {
		return nil, err
	}
	if len(result.Files) == 0 {
		return nil, fmt.Errorf("no source files found")
	}
	return result.Files, nil
}

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeSourceInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	unit, err := inlineUnit(input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}
	if unit != nil {
		a, err := s.svc.AnalyzeUnit(ctx, unit, input.TestsGenerated)
		if err != nil {
			return toolError(err.Error())
		}
		return toolResult(output.NewAnalysisReport([]*models.Analysis{a}), format)
	}

	files, err := s.scan(input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}
	results, errs := s.svc.AnalyzeFiles(ctx, files, analysis.AnalyzeOptions{TestsGenerated: input.TestsGenerated})
	if err := ctx.Err(); err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.NewAnalysisReport(results, errs.Messages()...), format)
}

func (s *Server) handleGenerateTests(ctx context.Context, req *mcp.CallToolRequest, input GenerateTestsInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)
	showContent := input.IncludeContent == nil || *input.IncludeContent

	unit, err := inlineUnit(input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}
	if unit != nil {
		d := s.svc.GenerateUnit(ctx, unit)
		return toolResult(&output.DraftReport{
			Drafts:      []output.GeneratedDraft{{Draft: d}},
			ShowContent: showContent,
		}, format)
	}

	files, err := s.scan(input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}
	drafts, errs, err := s.svc.GenerateFiles(ctx, files, analysis.GenerateOptions{DryRun: true})
	if err != nil {
		return toolError(err.Error())
	}
	report := &output.DraftReport{Failures: errs.Messages(), ShowContent: showContent}
	for _, d := range drafts {
		if d != nil {
			report.Drafts = append(report.Drafts, *d)
		}
	}
	return toolResult(report, format)
}

func (s *Server) handleCountTests(ctx context.Context, req *mcp.CallToolRequest, input CountTestsInput) (*mcp.CallToolResult, any, error) {
	lang := parser.Language(strings.ToLower(input.Language))
	if input.Language == "" {
		lang = parser.DetectLanguage(input.Filename)
	}
	if !slices.Contains(parser.Supported(), lang) {
		return toolError("language or filename of a supported language is required")
	}
	return toolResult(CountTestsResult{
		Tests:    generator.CountTests(input.Content, lang),
		Language: lang,
	}, output.FormatTOON)
}
