// Package logging provides structured logging infrastructure for cuepoint.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config contains logger configuration options.
type Config struct {
	Verbose bool
	Output  io.Writer
	// Extra receives the same events in JSON form, e.g. a run log file.
	Extra io.Writer
}

// New creates a logger writing human-readable lines to cfg.Output.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: output, TimeFormat: time.TimeOnly}
	if cfg.Extra != nil {
		w = zerolog.MultiLevelWriter(w, cfg.Extra)
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Init sets the global logger. Verbose enables debug output.
func Init(verbose bool, extra ...io.Writer) {
	cfg := Config{Verbose: verbose}
	if len(extra) > 0 {
		cfg.Extra = zerolog.MultiLevelWriter(extra...)
	}
	log.Logger = New(cfg)
}

// WithComponent returns the global logger tagged with a component name.
func WithComponent(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
