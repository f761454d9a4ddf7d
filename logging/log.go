package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the global logger instance. Initialized by Init before the
// transport starts; tests may swap in slog.Default().
var Logger *slog.Logger

type Options struct {
	// Level below which records are dropped.
	Level slog.Level
	// Path of the log file. Defaults to phplsp.log in the OS temp dir.
	// Logs cannot go to stdout: stdout carries the JSON-RPC stream.
	Path string
}

func Init(opts Options) {
	path := opts.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), "phplsp.log")
	}

	var w io.Writer
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		// Fall back to stderr, which LSP clients ignore.
		w = os.Stderr
	} else {
		w = f
	}

	Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level}))
}

func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
