// Package source provides the immutable unit of source text that every
// analysis and generation pass reads from.
package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/probe/pkg/parser"
)

// ErrUnsupportedLanguage is returned when a file extension maps to no supported language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Unit is raw source text together with its filename, language tag and
// line list. A Unit is never mutated after construction and is safe to
// share between goroutines.
type Unit struct {
	text     string
	filename string
	lang     parser.Language
	lines    []string
}

// New creates a Unit, inferring the language from the filename extension.
func New(text, filename string) *Unit {
	return &Unit{
		text:     text,
		filename: filename,
		lang:     parser.DetectLanguage(filename),
		lines:    strings.Split(text, "\n"),
	}
}

// Load reads path from src and wraps it in a Unit.
func Load(src ContentSource, path string) (*Unit, error) {
	content, err := src.Read(path)
	if err != nil {
		return nil, err
	}
	return New(string(content), path), nil
}

// Text returns the raw source text.
func (u *Unit) Text() string { return u.text }

// Filename returns the name the unit was created with.
func (u *Unit) Filename() string { return u.filename }

// Language returns the language tag derived from the filename.
func (u *Unit) Language() parser.Language { return u.lang }

// Supported reports whether the language is one the engines understand.
func (u *Unit) Supported() bool { return u.lang != parser.LangUnknown }

// Validate returns ErrUnsupportedLanguage for units of an unknown language.
func (u *Unit) Validate() error {
	if !u.Supported() {
		return ErrUnsupportedLanguage
	}
	return nil
}

// Lines returns a copy of the line list.
func (u *Unit) Lines() []string {
	out := make([]string, len(u.lines))
	copy(out, u.lines)
	return out
}

// LineCount returns the number of lines, counting a trailing empty line.
func (u *Unit) LineCount() int { return len(u.lines) }

// Line returns the 1-based line n, or "" when out of range.
func (u *Unit) Line(n int) string {
	if n < 1 || n > len(u.lines) {
		return ""
	}
	return u.lines[n-1]
}

// NonBlankLines counts lines containing anything other than whitespace.
func (u *Unit) NonBlankLines() int {
	count := 0
	for _, line := range u.lines {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// Stem returns the base filename without its final extension.
func (u *Unit) Stem() string {
	base := filepath.Base(u.filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LineOf returns the 1-based line containing byte offset off.
func (u *Unit) LineOf(off int) int {
	if off <= 0 {
		return 1
	}
	if off > len(u.text) {
		off = len(u.text)
	}
	return strings.Count(u.text[:off], "\n") + 1
}
