package logging

import "go.uber.org/zap"

// New creates a sugared zap logger for components that take one explicitly.
// "local" and "development" get the development preset, anything else the
// production JSON logger.
func New(env string) *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	switch env {
	case "local", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	return logger.Sugar()
}
