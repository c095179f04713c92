// Package logging provides structured logging setup for nearby.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the default slog logger on stderr, keeping stdout free
// for command output. Dev mode uses human-readable text at debug level;
// otherwise JSON at warn level so routine requests stay quiet.
func Setup(devMode bool) {
	SetupWriter(os.Stderr, devMode)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, devMode bool) {
	var handler slog.Handler
	if devMode {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})
	}
	slog.SetDefault(slog.New(handler))
}
