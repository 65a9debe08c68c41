package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default slog handler for the process. Debug mode
// lowers the level and adds source locations.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(handler))
}
