package modelapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoggingMiddleware logs every blocking call with a correlation id, the
// provider, the model type, and the outcome. Provider clients themselves do
// not log; observability is layered on here, at the registry.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(ctx context.Context, provider string, args CallArguments, modelType ModelType, next CallFunc) (any, error) {
		callID := uuid.New().String()
		start := time.Now()
		logger.Debug("model call started",
			zap.String("call_id", callID),
			zap.String("provider", provider),
			zap.String("model_type", modelType.String()),
		)

		resp, err := next(ctx, args, modelType)

		fields := []zap.Field{
			zap.String("call_id", callID),
			zap.String("provider", provider),
			zap.String("model_type", modelType.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.Warn("model call failed", append(fields, zap.Error(err))...)
			return nil, err
		}
		logger.Info("model call completed", fields...)
		return resp, nil
	}
}

// AsyncLoggingMiddleware is the asynchronous-path counterpart of
// LoggingMiddleware. The completion log is emitted when the downstream
// channel delivers its result.
func AsyncLoggingMiddleware(logger *zap.Logger) AsyncMiddleware {
	return func(ctx context.Context, provider string, args CallArguments, modelType ModelType, next AsyncCallFunc) <-chan CallResult {
		callID := uuid.New().String()
		start := time.Now()
		logger.Debug("model call started",
			zap.String("call_id", callID),
			zap.String("provider", provider),
			zap.String("model_type", modelType.String()),
		)

		inner := next(ctx, args, modelType)
		out := make(chan CallResult, 1)
		go func() {
			defer close(out)
			res, ok := <-inner
			if !ok {
				return
			}
			fields := []zap.Field{
				zap.String("call_id", callID),
				zap.String("provider", provider),
				zap.String("model_type", modelType.String()),
				zap.Duration("duration", time.Since(start)),
			}
			if res.Err != nil {
				logger.Warn("model call failed", append(fields, zap.Error(res.Err))...)
			} else {
				logger.Info("model call completed", fields...)
			}
			out <- res
		}()
		return out
	}
}
