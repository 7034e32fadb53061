package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/panbanda/probe/pkg/config"
)

// EnvLevel overrides the configured log level when set.
const EnvLevel = "PROBE_LOG_LEVEL"

// New creates an hclog.Logger writing to stderr, so stdout stays reserved
// for reports and the MCP stdio transport.
func New(cfg *config.Config, name string) hclog.Logger {
	return NewWithOutput(cfg, name, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg *config.Config, name string, out io.Writer) hclog.Logger {
	var jsonFormat bool
	if cfg != nil {
		jsonFormat = cfg.Logger.JSON
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		JSONFormat:  jsonFormat,
		Output:      out,
		Level:       determineLogLevel(cfg, out),
	})
}

// determineLogLevel returns a log level determined first by the environment
// variable, then by the configuration. Neither set means INFO.
func determineLogLevel(cfg *config.Config, out io.Writer) hclog.Level {
	if env := os.Getenv(EnvLevel); env != "" {
		return parseLogLevel(strings.ToUpper(env), out)
	}
	if cfg == nil || cfg.Logger.Level == "" {
		return hclog.Info
	}
	return parseLogLevel(strings.ToUpper(cfg.Logger.Level), out)
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string, out io.Writer) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      out,
		}).Warn("Unrecognized log level, defaulting to INFO", "providedLevel", levelStr)
		return hclog.Info
	}
}
