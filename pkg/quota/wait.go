package quota

import (
	"context"
	"time"
)

const defaultRetryAfter = 250 * time.Millisecond

// Wait reserves capacity, sleeping out denials until the limiter allows the
// lease or the context ends. Limiter transport errors propagate immediately.
func Wait(ctx context.Context, limiter Limiter, req ReserveRequest) error {
	for {
		resp, err := limiter.Reserve(ctx, req)
		if err != nil {
			return err
		}
		if resp.Allowed {
			return nil
		}
		delay := time.Duration(resp.RetryAfterMs) * time.Millisecond
		if delay <= 0 {
			delay = defaultRetryAfter
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
