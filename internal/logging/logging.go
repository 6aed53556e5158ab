// Package logging builds the structured logger shared by the CLI, the sync
// engine and the MCP server.
//
// All output goes to stderr: stdout carries the MCP stdio transport and the
// CLI's JSON results.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	Level  string // debug, info, warn, error
	Output io.Writer
	Prefix string
}

// New creates a logger from options. An empty level means info.
func New(opts Options) (*log.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "atlas"
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
		ReportCaller:    level == log.DebugLevel,
	})
	logger.SetLevel(level)

	return logger, nil
}

// ParseLevel converts a config level name to a log level.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// NewTestLogger creates a debug-level logger writing to a buffer, without
// timestamps so assertions stay stable.
func NewTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "test",
	})
	logger.SetLevel(log.DebugLevel)

	return logger, &buf
}
