package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/service"
)

// StartSessionSweeper periodically deactivates expired sessions. Validation
// already sweeps synchronously; this keeps the table tidy between logins.
// Stops when ctx is cancelled.
func StartSessionSweeper(ctx context.Context, sessions *service.SessionService, interval time.Duration, logger *zap.Logger) {
	if sessions == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := sessions.SweepExpired(ctx); err != nil {
					logger.Warn("session sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
