package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = "unknown"
)

// Supported returns the languages the analyzer and generator understand.
func Supported() []Language {
	return []Language{LangPython, LangJava, LangTypeScript, LangJavaScript}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw":
		return LangPython
	case ".java":
		return LangJava
	case ".ts", ".tsx":
		return LangTypeScript
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	default:
		return LangUnknown
	}
}

// BraceDelimited reports whether function bodies in lang are delimited by braces.
func (l Language) BraceDelimited() bool {
	return l == LangJava || l == LangTypeScript || l == LangJavaScript
}

// Script reports whether lang belongs to the script family (JavaScript, TypeScript).
func (l Language) Script() bool {
	return l == LangTypeScript || l == LangJavaScript
}

// Parser wraps tree-sitter for the supported languages.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
	}, nil
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language enum.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), visitor)
	}
}

// SyntaxIssue is a single ERROR or MISSING node found in a parse tree.
type SyntaxIssue struct {
	Line    uint32 `json:"line"`
	Column  uint32 `json:"column"`
	Missing bool   `json:"missing,omitempty"`
}

// SyntaxReport summarizes a best-effort syntax check of generated code.
type SyntaxReport struct {
	Checked bool          `json:"checked"`
	Valid   bool          `json:"valid"`
	Issues  []SyntaxIssue `json:"issues,omitempty"`
}

// maxSyntaxIssues bounds the number of issues recorded per report.
const maxSyntaxIssues = 20

// CheckSyntax parses source with the tree-sitter grammar for lang and collects
// error nodes. Unsupported languages produce an unchecked report.
func CheckSyntax(ctx context.Context, source []byte, lang Language) SyntaxReport {
	if _, err := GetTreeSitterLanguage(lang); err != nil {
		return SyntaxReport{}
	}

	p := New()
	defer p.Close()

	result, err := p.Parse(ctx, source, lang)
	if err != nil {
		return SyntaxReport{}
	}
	defer result.Tree.Close()

	report := SyntaxReport{Checked: true}
	root := result.Tree.RootNode()
	if !root.HasError() {
		report.Valid = true
		return report
	}

	Walk(root, func(node *sitter.Node) bool {
		if len(report.Issues) >= maxSyntaxIssues {
			return false
		}
		if node.IsError() || node.IsMissing() {
			report.Issues = append(report.Issues, SyntaxIssue{
				Line:    node.StartPoint().Row + 1,
				Column:  node.StartPoint().Column + 1,
				Missing: node.IsMissing(),
			})
			return false
		}
		return node.HasError()
	})

	return report
}
