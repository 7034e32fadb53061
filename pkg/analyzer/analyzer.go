// Package analyzer runs the six heuristic passes over a source unit and
// assembles them into a single models.Analysis.
//
// Each pass lives in its own subpackage and reads only the shared unit and
// the extraction facts, so the engine runs them concurrently.
package analyzer

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/panbanda/probe/pkg/analyzer/bugs"
	"github.com/panbanda/probe/pkg/analyzer/complexity"
	"github.com/panbanda/probe/pkg/analyzer/coverage"
	"github.com/panbanda/probe/pkg/analyzer/performance"
	"github.com/panbanda/probe/pkg/analyzer/security"
	"github.com/panbanda/probe/pkg/analyzer/smells"
	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/source"
)

// Engine runs every analysis pass. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	bugs        *bugs.Analyzer
	complexity  *complexity.Analyzer
	security    *security.Analyzer
	coverage    *coverage.Analyzer
	performance *performance.Analyzer
	smells      *smells.Analyzer
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithBugOptions configures the bug detection pass.
func WithBugOptions(opts ...bugs.Option) Option {
	return func(e *Engine) {
		e.bugs = bugs.New(opts...)
	}
}

// WithComplexityOptions configures the complexity pass.
func WithComplexityOptions(opts ...complexity.Option) Option {
	return func(e *Engine) {
		e.complexity = complexity.New(opts...)
	}
}

// WithSecurityOptions configures the security pass.
func WithSecurityOptions(opts ...security.Option) Option {
	return func(e *Engine) {
		e.security = security.New(opts...)
	}
}

// WithCoverageOptions configures the coverage prediction pass.
func WithCoverageOptions(opts ...coverage.Option) Option {
	return func(e *Engine) {
		e.coverage = coverage.New(opts...)
	}
}

// WithSmellOptions configures the code smell pass.
func WithSmellOptions(opts ...smells.Option) Option {
	return func(e *Engine) {
		e.smells = smells.New(opts...)
	}
}

// New creates an engine with default pass configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		bugs:        bugs.New(),
		complexity:  complexity.New(),
		security:    security.New(),
		coverage:    coverage.New(),
		performance: performance.New(),
		smells:      smells.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the six passes over unit. testsGenerated is the number of
// tests the caller produced for the unit and only drives the coverage
// estimate. Java interfaces and unsupported languages take fixed
// degenerate paths. The context is checked once before work starts; the
// passes themselves are not interruptible.
func (e *Engine) Analyze(ctx context.Context, unit *source.Unit, testsGenerated int) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	testsGenerated = max(0, testsGenerated)

	if !unit.Supported() {
		return unsupportedAnalysis(unit, testsGenerated), nil
	}
	if name, ok := extract.IsInterface(unit); ok {
		return interfaceAnalysis(unit, name, testsGenerated), nil
	}

	facts := extract.Extract(unit)
	a := &models.Analysis{
		File:           unit.Filename(),
		Language:       unit.Language(),
		Supported:      true,
		FunctionsCount: facts.FunctionCount,
		ClassesCount:   facts.ClassCount,
		TestsGenerated: testsGenerated,
	}

	var wg conc.WaitGroup
	wg.Go(func() { a.Bugs = e.bugs.Analyze(unit, facts) })
	wg.Go(func() { a.Complexity = e.complexity.Analyze(unit, facts) })
	wg.Go(func() { a.Security = e.security.Analyze(unit, facts) })
	wg.Go(func() { a.Coverage = e.coverage.Analyze(unit, facts, testsGenerated) })
	wg.Go(func() { a.Performance = e.performance.Analyze(unit, facts) })
	wg.Go(func() { a.Smells = e.smells.Analyze(unit, facts) })
	wg.Wait()

	return a, nil
}
