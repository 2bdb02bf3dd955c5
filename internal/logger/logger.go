// Package logger builds the console logger used by the CLI and the pipeline.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures a console logger.
type Options struct {
	Debug  bool
	Writer io.Writer
}

// New creates a leveled console logger. Writer defaults to stderr.
func New(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
