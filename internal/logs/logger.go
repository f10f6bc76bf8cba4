// Package logs builds the operational logger shared by the CLI and the
// interpreter facade.
package logs

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

type Logger = *slog.Logger

// Options selects the logger sinks.
type Options struct {
	// Writer receives human-readable text records; nil means stderr.
	Writer io.Writer
	Level  slog.Level
	// File, when set, additionally receives JSON records at the same level.
	File string
}

// New builds a logger fanning out to a text handler and an optional JSON
// file handler. The returned level can be adjusted later; closeFn releases
// the log file.
func New(opts Options) (logger Logger, level *slog.LevelVar, closeFn func() error, err error) {
	level = new(slog.LevelVar)
	level.Set(opts.Level)

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}

	closeFn = func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), level, closeFn, nil
}

// Discard returns a logger that drops every record.
func Discard() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
