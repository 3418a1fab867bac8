package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var Log *slog.Logger

func init() {
	// tests and `discuss status` run with these; serve re-initializes from config
	Initialize("info", false)
}

// Initialize points the global logger at stdout.
func Initialize(level string, useJSON bool) {
	InitializeTo(os.Stdout, level, useJSON)
}

// InitializeTo replaces Log and the slog default with a logger writing to w.
// Source locations are reduced to file:line.
func InitializeTo(w io.Writer, level string, useJSON bool) {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		AddSource:   true,
		ReplaceAttr: shortSource,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if useJSON {
		handler = slog.NewJSONHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}
	return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
}

// parseLevel accepts the config's log_level values; anything else is info.
func parseLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
