package observability

import (
	"log/slog"
	"os"
)

func NewLogger(env string, withTrace bool) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	if withTrace {
		handler = NewTraceHandler(handler)
	}

	return slog.New(handler)
}
