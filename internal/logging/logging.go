package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gkhcrm/gkhcrm/internal/config"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. When a log file is
// configured, output goes to a daily-rotated file kept for a week;
// otherwise to stderr, optionally through the console writer.
func Setup(cfg config.LoggingConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		rl, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(7*24*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = rl
	} else if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}
