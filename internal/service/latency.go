package service

import (
	"context"
	"time"
)

// simulateLatency waits d before a slow operation proceeds. A cancelled context aborts the wait
// so the operation never reaches its write.
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
