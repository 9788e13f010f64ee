package flow

import "go.uber.org/zap"

var defaultLogger = newDefaultLogger()

// newDefaultLogger writes warnings and above to stderr in JSON.
func newDefaultLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	config.Sampling = nil
	config.DisableStacktrace = true
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("pocketflow")
}
