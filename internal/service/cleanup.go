package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper удаляет сессии, не обновлявшиеся дольше ttl.
type Sweeper interface {
	DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error)
}

// StartSessionCleanup периодически удаляет просроченные сессии до отмены контекста.
func StartSessionCleanup(ctx context.Context, sweeper Sweeper, ttl, interval time.Duration, logger *zap.Logger) {
	if sweeper == nil || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.DeleteExpired(ctx, ttl)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("session cleanup failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", zap.Int64("values", n))
			}
		}
	}
}
