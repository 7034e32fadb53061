package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrUnsupportedFormat is returned for config files whose extension is not
// toml, yaml, yml or json.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds all configuration options for probe.
type Config struct {
	// Batch analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Thresholds used by the analyzers
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Test draft generation
	Generator GeneratorConfig `koanf:"generator" toml:"generator"`

	// Optional external model
	LLM LLMConfig `koanf:"llm" toml:"llm"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Logging settings
	Logger LoggerConfig `koanf:"logger" toml:"logger"`
}

// AnalysisConfig controls batch processing.
type AnalysisConfig struct {
	MaxFileSize    int64 `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 disables the limit
	Workers        int   `koanf:"workers" toml:"workers"`             // 0 means 2x NumCPU
	Timeout        int   `koanf:"timeout" toml:"timeout"`             // seconds per batch, 0 disables
	TargetCoverage int   `koanf:"target_coverage" toml:"target_coverage"`
}

// ThresholdConfig defines analyzer thresholds.
type ThresholdConfig struct {
	LongMethod          int     `koanf:"long_method" toml:"long_method"`
	VeryLongMethod      int     `koanf:"very_long_method" toml:"very_long_method"`
	LargeFile           int     `koanf:"large_file" toml:"large_file"`
	GodClass            int     `koanf:"god_class" toml:"god_class"`
	ComplexFunction     int     `koanf:"complex_function" toml:"complex_function"`
	HighComplexFunction int     `koanf:"high_complex_function" toml:"high_complex_function"`
	LongScriptFunction  int     `koanf:"long_script_function" toml:"long_script_function"`
	ComplexityMedium    float64 `koanf:"complexity_medium" toml:"complexity_medium"`
	ComplexityHigh      float64 `koanf:"complexity_high" toml:"complexity_high"`
}

// GeneratorConfig caps how much of a file a draft covers.
type GeneratorConfig struct {
	MaxPythonFunctions   int  `koanf:"max_python_functions" toml:"max_python_functions"`
	MaxTypeScriptMethods int  `koanf:"max_typescript_methods" toml:"max_typescript_methods"`
	MaxMapKeys           int  `koanf:"max_map_keys" toml:"max_map_keys"`
	CheckSyntax          bool `koanf:"check_syntax" toml:"check_syntax"`
}

// LLMConfig configures the Ollama-compatible model server.
type LLMConfig struct {
	Enabled     bool    `koanf:"enabled" toml:"enabled"`
	URL         string  `koanf:"url" toml:"url"`
	Model       string  `koanf:"model" toml:"model"`
	Temperature float64 `koanf:"temperature" toml:"temperature"`
	MaxTokens   int     `koanf:"max_tokens" toml:"max_tokens"`
	MinLength   int     `koanf:"min_length" toml:"min_length"`
	SampleChars int     `koanf:"sample_chars" toml:"sample_chars"`
	Timeout     int     `koanf:"timeout" toml:"timeout"` // seconds
	RetryCount  int     `koanf:"retry_count" toml:"retry_count"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon, sarif
	Color  bool   `koanf:"color" toml:"color"`
}

// LoggerConfig controls diagnostics on stderr.
type LoggerConfig struct {
	Level string `koanf:"level" toml:"level"`
	JSON  bool   `koanf:"json" toml:"json"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MaxFileSize:    1 << 20,
			Workers:        0,
			Timeout:        0,
			TargetCoverage: 80,
		},
		Thresholds: ThresholdConfig{
			LongMethod:          30,
			VeryLongMethod:      50,
			LargeFile:           300,
			GodClass:            500,
			ComplexFunction:     10,
			HighComplexFunction: 15,
			LongScriptFunction:  50,
			ComplexityMedium:    5,
			ComplexityHigh:      10,
		},
		Generator: GeneratorConfig{
			MaxPythonFunctions:   5,
			MaxTypeScriptMethods: 8,
			MaxMapKeys:           3,
			CheckSyntax:          false,
		},
		LLM: LLMConfig{
			Enabled:     false,
			URL:         "http://localhost:11434",
			Model:       "phi",
			Temperature: 0.3,
			MaxTokens:   800,
			MinLength:   100,
			SampleChars: 400,
			Timeout:     120,
			RetryCount:  1,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.spec.ts",
				"*.test.js",
				"test_*.py",
				"*Test.java",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".probe",
				"dist",
				"build",
				"target",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".probe/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Logger: LoggerConfig{
			Level: "INFO",
			JSON:  false,
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// searchPaths are the standard config locations, in priority order.
var searchPaths = []string{
	"probe.toml",
	".probe.toml",
	filepath.Join(".probe", "probe.toml"),
	"probe.yaml",
	"probe.yml",
	"probe.json",
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			if cfg, err := Load(path); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}

// LoadResult is a loaded config and the file it came from. Source is empty
// when only defaults apply.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dir  string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches the standard locations relative to dir.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads and validates a config. Unlike LoadOrDefault it reports
// errors from a config file that exists but cannot be read.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	source := o.path
	if source == "" {
		for _, p := range searchPaths {
			candidate := filepath.Join(o.dir, p)
			if _, err := os.Stat(candidate); err == nil {
				source = candidate
				break
			}
		}
	}
	if source == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(source)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &LoadResult{Config: cfg, Source: source}, nil
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json", "markdown", "toon", "sarif"}

// Validate reports every invalid value in c.
func (c *Config) Validate() error {
	var errs []error
	positive := map[string]int{
		"thresholds.long_method":           c.Thresholds.LongMethod,
		"thresholds.very_long_method":      c.Thresholds.VeryLongMethod,
		"thresholds.large_file":            c.Thresholds.LargeFile,
		"thresholds.god_class":             c.Thresholds.GodClass,
		"thresholds.complex_function":      c.Thresholds.ComplexFunction,
		"thresholds.high_complex_function": c.Thresholds.HighComplexFunction,
		"thresholds.long_script_function":  c.Thresholds.LongScriptFunction,
		"generator.max_python_functions":   c.Generator.MaxPythonFunctions,
		"generator.max_typescript_methods": c.Generator.MaxTypeScriptMethods,
		"generator.max_map_keys":           c.Generator.MaxMapKeys,
	}
	for _, key := range slices.Sorted(maps.Keys(positive)) {
		if positive[key] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive (got %d)", key, positive[key]))
		}
	}
	if c.Thresholds.VeryLongMethod <= c.Thresholds.LongMethod {
		errs = append(errs, fmt.Errorf("thresholds.very_long_method must exceed thresholds.long_method"))
	}
	if c.Thresholds.GodClass <= c.Thresholds.LargeFile {
		errs = append(errs, fmt.Errorf("thresholds.god_class must exceed thresholds.large_file"))
	}
	if c.Thresholds.ComplexityMedium <= 0 || c.Thresholds.ComplexityHigh <= c.Thresholds.ComplexityMedium {
		errs = append(errs, fmt.Errorf("thresholds.complexity_high must exceed a positive thresholds.complexity_medium"))
	}
	if c.Analysis.TargetCoverage <= 0 || c.Analysis.TargetCoverage > 100 {
		errs = append(errs, fmt.Errorf("analysis.target_coverage must be in [1,100] (got %d)", c.Analysis.TargetCoverage))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be in [0,2] (got %g)", c.LLM.Temperature))
	}
	if c.LLM.Enabled && c.LLM.URL == "" {
		errs = append(errs, errors.New("llm.url is required when llm.enabled is set"))
	}
	if !validFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(ValidFormats, ", ")))
	}
	return errors.Join(errs...)
}

func validFormat(f string) bool {
	for _, v := range ValidFormats {
		if strings.EqualFold(f, v) {
			return true
		}
	}
	return f == "md"
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
