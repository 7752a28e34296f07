package quota

import "context"

// NoopLimiter is a Limiter implementation that always allows requests.
var NoopLimiter Limiter = noopLimiter{}

// noopLimiter satisfies Limiter without enforcing limits.
type noopLimiter struct{}

// Reserve accepts every reservation.
func (noopLimiter) Reserve(context.Context, ReserveRequest) (ReserveResponse, error) {
	return ReserveResponse{Allowed: true}, nil
}

// Complete accepts every completion.
func (noopLimiter) Complete(context.Context, CompleteRequest) (CompleteResponse, error) {
	return CompleteResponse{Ok: true}, nil
}
