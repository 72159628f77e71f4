package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// setLogger picks the zap configuration for env. local logs everything at
// debug, development uses zap's development preset, anything else is the
// production JSON logger.
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
