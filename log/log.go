package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger so applications can hand the embedded logger
// to components while keeping a single construction point.
type Logger struct {
	zerolog.Logger
}

// New builds the root logger. Unknown levels fall back to info. When pretty
// is set, output goes through the console writer instead of raw JSON.
func New(level string, pretty bool) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return Logger{logger}
}

// Discard returns a logger that drops everything; used in tests.
func Discard() Logger {
	return Logger{zerolog.New(io.Discard).Level(zerolog.Disabled)}
}
