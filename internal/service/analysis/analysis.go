// Package analysis orchestrates batch analysis and test generation over
// many files. It wires the configuration into the analyzer engine and the
// generator, consults the result cache and writes drafts to disk.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/panbanda/probe/internal/cache"
	"github.com/panbanda/probe/internal/fileproc"
	"github.com/panbanda/probe/internal/output"
	pkganalyzer "github.com/panbanda/probe/pkg/analyzer"
	"github.com/panbanda/probe/pkg/analyzer/bugs"
	"github.com/panbanda/probe/pkg/analyzer/complexity"
	"github.com/panbanda/probe/pkg/analyzer/coverage"
	"github.com/panbanda/probe/pkg/analyzer/smells"
	"github.com/panbanda/probe/pkg/config"
	"github.com/panbanda/probe/pkg/generator"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/source"
)

// ErrTestFileExists is recorded for a file whose test file is already on
// disk and overwriting was not requested.
var ErrTestFileExists = errors.New("test file already exists")

// Service orchestrates analysis and generation operations.
type Service struct {
	config    *config.Config
	cache     *cache.Cache
	source    source.ContentSource
	model     generator.TextGenerator
	logger    hclog.Logger
	engine    *pkganalyzer.Engine
	generator *generator.Generator
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithCache enables result caching. A nil cache disables it.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithSource sets where file contents are read from.
func WithSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithTextGenerator enables the external model for drafts.
func WithTextGenerator(tg generator.TextGenerator) Option {
	return func(s *Service) {
		s.model = tg
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a service. The engine and generator are built from the
// configuration after all options are applied.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		source: source.NewFilesystem(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = pkganalyzer.New(EngineOptions(s.config)...)
	genOpts := GeneratorOptions(s.config)
	genOpts = append(genOpts, generator.WithLogger(s.logger.Named("generator")))
	if s.model != nil {
		genOpts = append(genOpts, generator.WithTextGenerator(s.model))
	}
	s.generator = generator.New(genOpts...)
	return s
}

// EngineOptions maps the threshold configuration onto the analyzer passes.
func EngineOptions(cfg *config.Config) []pkganalyzer.Option {
	t := cfg.Thresholds
	return []pkganalyzer.Option{
		pkganalyzer.WithBugOptions(bugs.WithLongFunctionLines(t.LongScriptFunction)),
		pkganalyzer.WithComplexityOptions(complexity.WithLevelThresholds(t.ComplexityMedium, t.ComplexityHigh)),
		pkganalyzer.WithCoverageOptions(coverage.WithTargetCoverage(cfg.Analysis.TargetCoverage)),
		pkganalyzer.WithSmellOptions(smells.WithThresholds(smells.Thresholds{
			LongMethod:      t.LongMethod,
			VeryLongMethod:  t.VeryLongMethod,
			LargeFile:       t.LargeFile,
			GodClass:        t.GodClass,
			ComplexFunction: t.ComplexFunction,
			HighComplexity:  t.HighComplexFunction,
		})),
	}
}

// GeneratorOptions maps the generator and model configuration onto
// generator options. The model itself is attached separately.
func GeneratorOptions(cfg *config.Config) []generator.Option {
	return []generator.Option{
		generator.WithLimits(generator.Limits{
			PythonFunctions:   cfg.Generator.MaxPythonFunctions,
			TypeScriptMethods: cfg.Generator.MaxTypeScriptMethods,
			MapKeys:           cfg.Generator.MaxMapKeys,
		}),
		generator.WithSyntaxCheck(cfg.Generator.CheckSyntax),
		generator.WithModelOptions(generator.ModelOptions{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			MinLength:   cfg.LLM.MinLength,
			SampleChars: cfg.LLM.SampleChars,
		}),
	}
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.config
}

func (s *Service) batchOptions() fileproc.Options {
	return fileproc.Options{
		Workers:     s.config.Analysis.Workers,
		MaxFileSize: s.config.Analysis.MaxFileSize,
	}
}

// fingerprint identifies the settings that change analysis results.
func (s *Service) fingerprint() string {
	return cache.HashString(fmt.Sprintf("%+v|%d|%+v",
		s.config.Thresholds, s.config.Analysis.TargetCoverage, s.config.Generator))
}

func (s *Service) analysisKey(filename string, tests int) string {
	return cache.HashString("analysis\x00" + filename + "\x00" + strconv.Itoa(tests) + "\x00" + s.fingerprint())
}

func (s *Service) draftKey(filename string) string {
	return cache.HashString("draft\x00" + filename + "\x00" + s.fingerprint())
}

// AnalyzeUnit analyzes a single unit, using the cache when enabled.
func (s *Service) AnalyzeUnit(ctx context.Context, unit *source.Unit, testsGenerated int) (*models.Analysis, error) {
	key := s.analysisKey(unit.Filename(), testsGenerated)
	hash := cache.HashString(unit.Text())
	if s.cache.Enabled() {
		if a, ok := s.cache.GetAnalysis(key, hash); ok {
			s.logger.Trace("cache hit", "file", unit.Filename())
			return a, nil
		}
	}

	a, err := s.engine.Analyze(ctx, unit, testsGenerated)
	if err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		if err := s.cache.SetAnalysis(key, hash, a); err != nil {
			s.logger.Warn("failed to cache analysis", "file", unit.Filename(), "error", err)
		}
	}
	return a, nil
}

// GenerateUnit produces a draft for a single unit. Template drafts are
// cached; model drafts are not, since the model is not deterministic.
func (s *Service) GenerateUnit(ctx context.Context, unit *source.Unit) *models.Draft {
	cacheable := s.cache.Enabled() && s.model == nil
	key := s.draftKey(unit.Filename())
	hash := cache.HashString(unit.Text())
	if cacheable {
		if d, ok := s.cache.GetDraft(key, hash); ok {
			s.logger.Trace("cache hit", "file", unit.Filename())
			return d
		}
	}

	d := s.generator.Generate(ctx, unit)

	if cacheable {
		if err := s.cache.SetDraft(key, hash, d); err != nil {
			s.logger.Warn("failed to cache draft", "file", unit.Filename(), "error", err)
		}
	}
	return d
}

// AnalyzeOptions configures AnalyzeFiles.
type AnalyzeOptions struct {
	TestsGenerated int // Fed to the coverage estimate of every file
}

// AnalyzeFiles analyzes files concurrently. Results keep input order; a
// file that could not be read leaves a nil entry and is reported in the
// returned errors, which are nil when every file succeeded.
func (s *Service) AnalyzeFiles(ctx context.Context, files []string, opts AnalyzeOptions) ([]*models.Analysis, *fileproc.ProcessingErrors) {
	runID := uuid.NewString()
	s.logger.Debug("analysis started", "run_id", runID, "files", len(files))

	results, errs := fileproc.MapUnits(ctx, files, s.source, s.batchOptions(),
		func(ctx context.Context, unit *source.Unit) (*models.Analysis, error) {
			return s.AnalyzeUnit(ctx, unit, opts.TestsGenerated)
		})

	s.logger.Debug("analysis finished", "run_id", runID, "failed", len(errs.Messages()))
	return results, errs
}

// GenerateOptions configures GenerateFiles.
type GenerateOptions struct {
	OutDir    string // Directory for test files; empty writes next to each source file
	DryRun    bool   // Generate without writing
	Overwrite bool   // Replace existing test files
}

// GenerateFiles generates and writes a draft per file, bounded by the
// configured worker count. Per-file failures are collected and the batch
// continues; cancelling ctx stops it. Results keep input order with nil
// entries for failed files.
func (s *Service) GenerateFiles(ctx context.Context, files []string, opts GenerateOptions) ([]*output.GeneratedDraft, *fileproc.ProcessingErrors, error) {
	runID := uuid.NewString()
	s.logger.Debug("generation started", "run_id", runID, "files", len(files))

	if opts.OutDir != "" && !opts.DryRun {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	tracker := pkganalyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	results := make([]*output.GeneratedDraft, len(files))
	errs := &fileproc.ProcessingErrors{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fileproc.Workers(s.config.Analysis.Workers))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			gd, err := s.generateOne(gctx, path, opts)
			if err != nil {
				errs.Add(path, err)
				if tracker != nil {
					tracker.Fail(path)
				}
				return nil
			}
			results[i] = gd
			if tracker != nil {
				tracker.Done(path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, errs, err
	}

	s.logger.Debug("generation finished", "run_id", runID, "failed", len(errs.Messages()))
	if !errs.HasErrors() {
		return results, nil, nil
	}
	return results, errs, nil
}

func (s *Service) generateOne(ctx context.Context, path string, opts GenerateOptions) (*output.GeneratedDraft, error) {
	unit, err := source.Load(s.source, path)
	if err != nil {
		return nil, err
	}
	if err := unit.Validate(); err != nil {
		return nil, err
	}

	d := s.GenerateUnit(ctx, unit)
	gd := &output.GeneratedDraft{Draft: d}
	if opts.DryRun {
		return gd, nil
	}

	dir := opts.OutDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	target := filepath.Join(dir, d.TestFile)
	if !opts.Overwrite {
		if _, err := os.Stat(target); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrTestFileExists, target)
		}
	}
	if err := os.WriteFile(target, []byte(d.Content), 0o644); err != nil {
		return nil, fmt.Errorf("writing test file: %w", err)
	}
	gd.Path = target
	return gd, nil
}

// Inspection pairs a draft with the analysis that counted its tests.
type Inspection struct {
	Draft    *models.Draft    `json:"draft"`
	Analysis *models.Analysis `json:"analysis"`
}

// Inspect generates a draft for every file, counts its tests and analyzes
// the file with that count, so the coverage estimate reflects the draft.
func (s *Service) Inspect(ctx context.Context, files []string) ([]*Inspection, *fileproc.ProcessingErrors) {
	runID := uuid.NewString()
	s.logger.Debug("inspection started", "run_id", runID, "files", len(files))

	return fileproc.MapUnits(ctx, files, s.source, s.batchOptions(),
		func(ctx context.Context, unit *source.Unit) (*Inspection, error) {
			d := s.GenerateUnit(ctx, unit)
			tests := generator.CountTests(d.Content, unit.Language())
			a, err := s.AnalyzeUnit(ctx, unit, tests)
			if err != nil {
				return nil, err
			}
			return &Inspection{Draft: d, Analysis: a}, nil
		})
}
