package logger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
)

// NewMongoMonitor returns a command monitor that logs every MongoDB command
// at debug level, failures at error level and slow commands at warn level.
func NewMongoMonitor(zapLogger *zap.Logger, slowQuerySeconds float64) *event.CommandMonitor {
	log := zapLogger.Named("mongo")
	slowThreshold := time.Duration(slowQuerySeconds * float64(time.Second))

	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, e *event.CommandSucceededEvent) {
			fields := []zap.Field{
				zap.String("command", e.CommandName),
				zap.Int64("mongo_request_id", e.RequestID),
				zap.Duration("elapsed", e.Duration),
			}
			if slowThreshold > 0 && e.Duration > slowThreshold {
				WithContext(ctx, log).Warn("slow mongo command", append(fields, zap.Duration("threshold", slowThreshold))...)
				return
			}
			WithContext(ctx, log).Debug("mongo command", fields...)
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			WithContext(ctx, log).Error("mongo command failed",
				zap.String("command", e.CommandName),
				zap.Int64("mongo_request_id", e.RequestID),
				zap.Duration("elapsed", e.Duration),
				zap.String("failure", e.Failure),
			)
		},
	}
}
