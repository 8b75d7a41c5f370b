package random

import (
	"context"

	"go.uber.org/zap"
)

// LoggedSource wraps a Source and logs every draw at debug level.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a Source that draws from src and logs each value.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Draw delegates to the wrapped source and logs the result.
func (l *LoggedSource) Draw(ctx context.Context) (float64, error) {
	value, err := l.src.Draw(ctx)
	if err != nil {
		l.logger.Warn("random draw failed", zap.Error(err))
		return 0, err
	}
	l.logger.Debug("random draw", zap.Float64("value", value))
	return value, nil
}
