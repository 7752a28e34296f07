// Package quota guards hosted model providers with a reserve/complete query
// budget. The runner reserves one unit per hosted query and completes the
// lease afterwards; backends enforce a rolling-window capacity per key.
package quota

import "context"

// Limiter is the client-facing API for reserve and complete operations.
type Limiter interface {
	Reserve(ctx context.Context, req ReserveRequest) (ReserveResponse, error)
	Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error)
}
