package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger on stdout as the process-wide default.
// main calls this before anything else so that even startup failures come
// out structured.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}
