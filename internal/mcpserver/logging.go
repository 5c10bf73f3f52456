package mcpserver

import (
	"log/slog"
	"os"
)

// newLogger builds the process-wide structured logger. It always
// writes to stderr: stdout is reserved exclusively for the JSON-RPC
// transport.
func newLogger(jsonLogs bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}
	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
