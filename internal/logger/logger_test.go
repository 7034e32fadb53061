package logger

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/panbanda/probe/pkg/config"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		config string
		want   hclog.Level
	}{
		{"default", "", "", hclog.Info},
		{"from config", "", "debug", hclog.Debug},
		{"env wins over config", "error", "debug", hclog.Error},
		{"env only", "TRACE", "", hclog.Trace},
		{"off", "", "OFF", hclog.Off},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLevel, tt.env)
			cfg := config.DefaultConfig()
			cfg.Logger.Level = tt.config

			var buf bytes.Buffer
			assert.Equal(t, tt.want, determineLogLevel(cfg, &buf))
			assert.Empty(t, buf.String())
		})
	}
}

func TestDetermineLogLevel_NilConfig(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, hclog.Info, determineLogLevel(nil, &bytes.Buffer{}))
}

func TestParseLogLevel_Unrecognized(t *testing.T) {
	var buf bytes.Buffer
	level := parseLogLevel("VERBOSE", &buf)

	assert.Equal(t, hclog.Info, level)
	assert.Contains(t, buf.String(), "Unrecognized log level, defaulting to INFO")
	assert.Contains(t, buf.String(), "providedLevel=VERBOSE")
}

func TestNewWithOutput(t *testing.T) {
	t.Setenv(EnvLevel, "")
	cfg := config.DefaultConfig()
	cfg.Logger.Level = "WARN"

	var buf bytes.Buffer
	log := NewWithOutput(cfg, "probe", &buf)
	log.Info("hidden")
	log.Warn("shown", "file", "cart.py")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "probe: shown")
	assert.Contains(t, out, "file=cart.py")
}

func TestNewWithOutput_JSON(t *testing.T) {
	t.Setenv(EnvLevel, "")
	cfg := config.DefaultConfig()
	cfg.Logger.JSON = true

	var buf bytes.Buffer
	NewWithOutput(cfg, "probe", &buf).Info("analyzed", "files", 3)

	assert.Contains(t, buf.String(), `"@message":"analyzed"`)
	assert.Contains(t, buf.String(), `"files":3`)
}
