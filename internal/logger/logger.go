package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Setup builds the process logger.
//   - level: trace, debug, info, warn, error, fatal or panic (info when unparsable)
//   - format: "json" for production, "pretty" for console output
//
// Pretty output drops colors when stdout is not a terminal.
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer = os.Stdout
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    !term.IsTerminal(int(os.Stdout.Fd())),
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)
	zerolog.DurationFieldUnit = time.Millisecond

	ctx := zerolog.New(writer).With().Timestamp().Str("service", "trainhub")
	if host, err := os.Hostname(); err == nil {
		ctx = ctx.Str("host", host)
	}
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Nop returns a disabled logger for tools and tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
