package common

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger. format "text" gives colored,
// human-oriented output on stderr; anything else is JSON. quiet raises the
// level to Error.
func NewLogger(format string, quiet bool) *slog.Logger {
	return newLogger(os.Stderr, format, quiet)
}

func newLogger(w io.Writer, format string, quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	if strings.EqualFold(format, "text") {
		return slog.New(tint.NewHandler(w, &tint.Options{Level: logLevel}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
