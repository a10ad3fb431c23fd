package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
)

// ParseLevel accepts debug, info, warn and error.
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
		return slog.LevelInfo, fmt.Errorf("unknown log level '%s'", level)
	}
}

// Setup installs a charmbracelet/log handler writing to w as the default slog logger.
func Setup(level string, w io.Writer) (*slog.Logger, error) {

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           log.Level(lvl),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "rethinking",
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

var (
	errorLine  = color.New(color.FgRed, color.Bold)
	headerLine = color.New(color.FgCyan, color.Bold)
)

// PrintError writes a red error line, used by the CLI for fatal errors.
func PrintError(w io.Writer, err error) {
	errorLine.Fprintf(w, "error: %s\n", err.Error())
}

func PrintHeader(w io.Writer, format string, args ...any) {
	headerLine.Fprintf(w, format+"\n", args...)
}
