// Package logger: one process-wide slog logger for the server and the offline
// tools; LOG_LEVEL and LOG_FORMAT pick level and encoding.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

func level() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Setup: build the default logger and install it.
// Background: the server, boundary-fetch and records-import share one config.
// Constraint: output is stderr; no file handles, no shipping.
func Setup() *slog.Logger {
	opts := &slog.HandlerOptions{Level: level()}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	l := slog.New(h)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// L: the default logger; falls back to Setup when nothing installed one.
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup()
	}
	return l
}

// With: the default logger tagged with a component, e.g. "svgmap".
func With(component string) *slog.Logger {
	return L().With("component", component)
}
