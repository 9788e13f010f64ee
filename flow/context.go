package flow

import (
	"context"

	"go.uber.org/zap"
)

type runIDKeyT struct{}

var runIDKey runIDKeyT

type loggerKeyT struct{}

var loggerKey loggerKeyT

// WithRunID tags ctx with the identifier of the current top-level run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the run identifier carried by ctx, or "".
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ret, _ := ctx.Value(runIDKey).(string)
	return ret
}

// ContextWithLogger embeds a logger used by units that have none of their own.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func loggerFrom(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return nil
	}
	ret, _ := ctx.Value(loggerKey).(*zap.Logger)
	return ret
}
