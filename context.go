package trialrun

import (
	"context"
	"log/slog"
)

type ctxLoggerKey struct{}

func ctxWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// LoggerFromContext returns the logger of the Runner driving ctx. Trace
// handlers receive it through the contexts passed to their methods. Outside a
// run it returns slog.Default().
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
