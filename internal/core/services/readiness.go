package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// WaitForEngine blocks until available reports true, the timeout elapses or
// ctx is done. It checks once immediately, then every interval.
// A timeout returns domain.ErrEngineTimeout; cancellation returns ctx.Err().
func WaitForEngine(ctx context.Context, available func() bool, interval, timeout time.Duration) error {
	if available() {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w after %s", domain.ErrEngineTimeout, timeout)
		case <-ticker.C:
			if available() {
				return nil
			}
		}
	}
}
