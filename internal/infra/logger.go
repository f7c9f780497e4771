package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the service logger: console output at debug level in
// development, JSON at info level elsewhere.
func NewLogger(appEnv string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, appEnv, appEnv == "development")
}

// NewLoggerTo builds a logger writing to w. Console formatting is used when
// console is set, colored only in development.
func NewLoggerTo(w io.Writer, appEnv string, console bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: appEnv != "development"}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "themegen").
		Logger()
}

// Logger aliases zerolog.Logger for packages that only pass it along.
type Logger = zerolog.Logger
