// Package logging configures zerolog and logs agent lifecycle events through a hook.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the global logger.
type Config struct {
	// Level is one of trace, debug, info, warn, error, fatal, disabled.
	Level string

	// Format is "text" for a console writer or "json".
	Format string

	WithCaller bool
}

// Init configures the global zerolog logger. A nil w writes to stderr.
func Init(config Config, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}

	var logWriter io.Writer
	switch strings.ToLower(config.Format) {
	case "", "text":
		logWriter = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	case "json":
		logWriter = w
	default:
		return fmt.Errorf("unknown log format %q (json, text)", config.Format)
	}

	level := zerolog.InfoLevel
	if config.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return fmt.Errorf("unknown log level %q: %w", config.Level, err)
		}
	}

	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	if config.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger
	zerolog.SetGlobalLevel(level)
	return nil
}
