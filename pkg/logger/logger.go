package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Loggers struct {
	InfoLogger  *slog.Logger
	ErrorLogger *slog.Logger
}

func SetupLogger(level string) (*Loggers, error) {
	return newLoggers(level, os.Stdout, os.Stderr)
}

func newLoggers(level string, infoOut, errorOut io.Writer) (*Loggers, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	return &Loggers{
		InfoLogger:  slog.New(slog.NewJSONHandler(infoOut, opts)),
		ErrorLogger: slog.New(slog.NewJSONHandler(errorOut, opts)),
	}, nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// Discard returns loggers that drop everything. Used by tests.
func Discard() *Loggers {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Loggers{InfoLogger: l, ErrorLogger: l}
}
