package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check threshold defaults
	if cfg.Thresholds.LongMethod != 30 {
		t.Errorf("Thresholds.LongMethod = %d, want 30", cfg.Thresholds.LongMethod)
	}
	if cfg.Thresholds.GodClass != 500 {
		t.Errorf("Thresholds.GodClass = %d, want 500", cfg.Thresholds.GodClass)
	}
	if cfg.Thresholds.ComplexityHigh != 10 {
		t.Errorf("Thresholds.ComplexityHigh = %f, want 10", cfg.Thresholds.ComplexityHigh)
	}

	// Check generator defaults
	if cfg.Generator.MaxPythonFunctions != 5 {
		t.Errorf("Generator.MaxPythonFunctions = %d, want 5", cfg.Generator.MaxPythonFunctions)
	}
	if cfg.Generator.MaxTypeScriptMethods != 8 {
		t.Errorf("Generator.MaxTypeScriptMethods = %d, want 8", cfg.Generator.MaxTypeScriptMethods)
	}

	// Check model defaults
	if cfg.LLM.Enabled {
		t.Error("LLM.Enabled should be false by default")
	}
	if cfg.LLM.URL != "http://localhost:11434" {
		t.Errorf("LLM.URL = %s, want http://localhost:11434", cfg.LLM.URL)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("LLM.Temperature = %f, want 0.3", cfg.LLM.Temperature)
	}

	// Check exclude defaults
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}

	// Check cache defaults
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "probe.toml")

	content := `
[thresholds]
long_method = 40
very_long_method = 80

[llm]
enabled = true
model = "llama3"

[exclude]
dirs = ["vendor", "custom_exclude"]

[cache]
enabled = false

[output]
format = "json"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Thresholds.LongMethod != 40 {
		t.Errorf("Thresholds.LongMethod = %d, want 40", cfg.Thresholds.LongMethod)
	}
	if cfg.Thresholds.LargeFile != 300 {
		t.Errorf("Thresholds.LargeFile = %d, want default 300", cfg.Thresholds.LargeFile)
	}
	if !cfg.LLM.Enabled || cfg.LLM.Model != "llama3" {
		t.Errorf("LLM = %+v, want enabled llama3", cfg.LLM)
	}
	if cfg.LLM.URL != "http://localhost:11434" {
		t.Errorf("LLM.URL = %s, want default", cfg.LLM.URL)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	assert.Equal(t, []string{"vendor", "custom_exclude"}, cfg.Exclude.Dirs)
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "probe.yaml")

	content := `
generator:
  max_python_functions: 3
  check_syntax: true

llm:
  temperature: 0.7

output:
  format: markdown
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Generator.MaxPythonFunctions != 3 {
		t.Errorf("Generator.MaxPythonFunctions = %d, want 3", cfg.Generator.MaxPythonFunctions)
	}
	if !cfg.Generator.CheckSyntax {
		t.Error("Generator.CheckSyntax should be true")
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("LLM.Temperature = %f, want 0.7", cfg.LLM.Temperature)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "probe.json")

	content := `{
  "analysis": {
    "workers": 4,
    "target_coverage": 90
  },
  "logger": {
    "level": "DEBUG",
    "json": true
  }
}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.Workers != 4 {
		t.Errorf("Analysis.Workers = %d, want 4", cfg.Analysis.Workers)
	}
	if cfg.Analysis.TargetCoverage != 90 {
		t.Errorf("Analysis.TargetCoverage = %d, want 90", cfg.Analysis.TargetCoverage)
	}
	if cfg.Logger.Level != "DEBUG" || !cfg.Logger.JSON {
		t.Errorf("Logger = %+v, want DEBUG json", cfg.Logger)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/probe.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("probe.ini")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "probe.toml")

	// Invalid TOML
	content := `[thresholds
invalid toml`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// In a directory without config files, should return defaults
	t.Chdir(t.TempDir())

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}
	if cfg.Thresholds.LongMethod != 30 {
		t.Errorf("LoadOrDefault() returned non-default LongMethod: %d", cfg.Thresholds.LongMethod)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	content := `
[thresholds]
god_class = 999
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".probe.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Chdir(tmpDir)

	cfg := LoadOrDefault()
	if cfg.Thresholds.GodClass != 999 {
		t.Errorf("LoadOrDefault() should load from file, got GodClass=%d", cfg.Thresholds.GodClass)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		res, err := LoadConfig(WithDir(t.TempDir()))
		require.NoError(t, err)
		assert.Empty(t, res.Source)
		assert.Equal(t, DefaultConfig(), res.Config)
	})

	t.Run("search order prefers probe.toml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "probe.toml"), []byte("[cache]\nttl = 1\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "probe.yaml"), []byte("cache:\n  ttl: 2\n"), 0644))

		res, err := LoadConfig(WithDir(dir))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "probe.toml"), res.Source)
		assert.Equal(t, 1, res.Config.Cache.TTL)
	})

	t.Run("nested location", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".probe"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".probe", "probe.toml"), []byte("[cache]\nttl = 5\n"), 0644))

		res, err := LoadConfig(WithDir(dir))
		require.NoError(t, err)
		assert.Equal(t, 5, res.Config.Cache.TTL)
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"output": {"format": "sarif"}}`), 0644))

		res, err := LoadConfig(WithPath(path))
		require.NoError(t, err)
		assert.Equal(t, path, res.Source)
		assert.Equal(t, "sarif", res.Config.Output.Format)
	})

	t.Run("invalid values are reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "probe.toml")
		require.NoError(t, os.WriteFile(path, []byte("[llm]\ntemperature = 3.5\n"), 0644))

		_, err := LoadConfig(WithPath(path))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.temperature")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero threshold", func(c *Config) { c.Thresholds.LargeFile = 0 }, "thresholds.large_file must be positive"},
		{"very long below long", func(c *Config) { c.Thresholds.VeryLongMethod = 20 }, "very_long_method must exceed"},
		{"god class below large file", func(c *Config) { c.Thresholds.GodClass = 200 }, "god_class must exceed"},
		{"complexity bands inverted", func(c *Config) { c.Thresholds.ComplexityHigh = 4 }, "complexity_high"},
		{"coverage target", func(c *Config) { c.Analysis.TargetCoverage = 120 }, "target_coverage"},
		{"negative temperature", func(c *Config) { c.LLM.Temperature = -0.1 }, "llm.temperature"},
		{"enabled without url", func(c *Config) { c.LLM.Enabled = true; c.LLM.URL = "" }, "llm.url"},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"zero map keys", func(c *Config) { c.Generator.MaxMapKeys = 0 }, "generator.max_map_keys"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Format = "xml"
	cfg.LLM.Temperature = 9

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
	assert.Contains(t, err.Error(), "llm.temperature")
}

func TestValidateAcceptsFormats(t *testing.T) {
	for _, f := range []string{"text", "json", "markdown", "md", "toon", "sarif", "JSON"} {
		cfg := DefaultConfig()
		cfg.Output.Format = f
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with format %q = %v", f, err)
		}
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{"vendor/pkg/File.java", true},
		{"node_modules/pkg/index.js", true},
		{"src/__pycache__/mod.py", true},

		// Excluded patterns
		{"app.min.js", true},
		{"test_cart.py", true},
		{"UserServiceTest.java", true},
		{"calculator.spec.ts", true},

		// Not excluded
		{"cart.py", false},
		{"src/main/UserService.java", false},
		{"app.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldExcludePathsWithSeparators(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join("src", "vendor", "pkg", "file.js"), true},
		{filepath.Join("vendor", "file.js"), true},
		{filepath.Join("src", "main.py"), false},
		{filepath.Join("pkg", "vendor_utils.js"), false}, // "vendor" in name, not directory
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
