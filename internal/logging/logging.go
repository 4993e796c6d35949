// ABOUTME: Process-wide logrus configuration
// ABOUTME: Logs go to stderr so the MCP stdio transport stays clean
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls the logger
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// Init configures the standard logrus logger and returns it
func Init(opts Options) (*logrus.Logger, error) {
	logger := logrus.StandardLogger()
	if err := Configure(logger, opts); err != nil {
		return nil, err
	}
	return logger, nil
}

// Configure applies opts to logger. An empty level means info and an empty
// format means text.
func Configure(logger *logrus.Logger, opts Options) error {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	return nil
}

// Discard returns a logger that drops everything, for tests and quiet paths
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
