package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// FRAMEKIT_LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
// FRAMEKIT_LOG_FORMAT=json switches from the console writer to raw JSON, which is
// what CloudWatch wants from the Lambda.
func Init() {
	InitWith(os.Stderr, os.Getenv("FRAMEKIT_LOG_LEVEL"), os.Getenv("FRAMEKIT_LOG_FORMAT"))
}

// InitWith configures the global logger to write to w.
func InitWith(w io.Writer, level, format string) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if strings.EqualFold(format, "json") {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
