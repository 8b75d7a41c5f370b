// Package observability provides logging utilities and HTTP request
// instrumentation for the meal battle service.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/mealmax/internal/config"
)

// serviceName tags every JSON log line so aggregated logs can be filtered
// down to this service.
const serviceName = "mealmax"

// NewLogger builds the service logger. The "json" format is the production
// shape with a service field on every entry; "console" is the human-readable
// development shape.
//
// Precondition: cfg must have passed config validation.
// Postcondition: Returns a ready logger at the configured level, or a
// non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		zapCfg.InitialFields = map[string]any{"service": serviceName}
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q, must be json or console", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("unsupported log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
