package model

import "context"

// QueryRetryLimit bounds per-query retries for transient provider failures.
const QueryRetryLimit = 3

// Client provisions, queries, and disposes one model instance. Managed
// variants materialize a local instance per handle; hosted variants address
// a fixed remote model and treat Create/Dispose as no-ops. Dispose must be
// idempotent on every implementation.
type Client interface {
	Create(ctx context.Context, handle Handle) error
	Query(ctx context.Context, handle Handle, prompt string) (string, error)
	Dispose(ctx context.Context, handle Handle) error
}

// Factory builds the client responsible for a handle. The pipeline holds a
// Factory so provider variants can be added without touching task logic.
type Factory func(handle Handle) (Client, error)

// withRetries runs fn up to attempts times and returns the last error.
func withRetries(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
