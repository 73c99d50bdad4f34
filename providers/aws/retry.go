package aws

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds the exponential backoff applied to throttled
// calls.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryConfig returns the retry policy used in production.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// backoffFor computes the sleep before the given retry attempt
// (attempt is 1-based over completed attempts).
func (rc RetryConfig) backoffFor(attempt int) time.Duration {
	d := rc.InitialBackoff
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * rc.Multiplier)
		if d >= rc.MaxBackoff {
			return rc.MaxBackoff
		}
	}
	if d > rc.MaxBackoff {
		return rc.MaxBackoff
	}
	return d
}

// callWithRetry runs fn under the per-call timeout, retrying transient
// failures with exponential backoff. A transient failure that survives
// every attempt escalates to a permanent APIError.
func (c *Client) callWithRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if c.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		err := fn(callCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return &APIError{Op: op, Profile: c.profile, Region: c.region, Err: err}
		}

		lastErr = err
		if attempt == c.retry.MaxAttempts {
			break
		}

		backoff := c.retry.backoffFor(attempt)
		c.logger.Warn().
			Str("op", op).
			Str("profile", c.profile).
			Str("region", c.region).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("throttled, retrying")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return &APIError{Op: op, Profile: c.profile, Region: c.region, Err: ctx.Err()}
		}
	}

	return &APIError{
		Op:      op,
		Profile: c.profile,
		Region:  c.region,
		Err:     fmt.Errorf("retries exhausted after %d attempts: %w", c.retry.MaxAttempts, lastErr),
	}
}
