package scanner

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/panbanda/probe/internal/scanner"
	"github.com/panbanda/probe/pkg/config"
	"github.com/panbanda/probe/pkg/parser"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	Files          []string
	LanguageGroups map[parser.Language][]string
	Skipped        int // Files over the size limit
}

// Service provides file scanning functionality.
type Service struct {
	config *config.Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{config: config.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	return s
}

// ScanPaths expands files and directories into the supported source files
// beneath them, dropping files over the configured size limit. No paths
// means the current directory.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	abs := make([]string, 0, len(paths))
	for _, path := range paths {
		p, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}
		abs = append(abs, p)
	}

	scan := scanner.NewScanner(s.config)
	files, err := scan.Collect(abs)
	if err != nil {
		if errors.Is(err, scanner.ErrNoSourceFiles) {
			return &ScanResult{LanguageGroups: map[parser.Language][]string{}}, nil
		}
		return nil, &ScanError{Paths: paths, Err: err}
	}

	files, skipped := scanner.FilterBySize(files, s.config.Analysis.MaxFileSize)
	return &ScanResult{
		Files:          files,
		LanguageGroups: scan.GroupByLanguage(files),
		Skipped:        skipped,
	}, nil
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Paths []string
	Err   error
}

func (e *ScanError) Error() string {
	return "failed to scan " + strings.Join(e.Paths, ", ") + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
