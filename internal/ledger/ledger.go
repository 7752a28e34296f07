// Package ledger defines the server-side storage contract for quotad.
package ledger

import (
	"context"
	"time"

	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

// Backend provides server-side quota operations.
type Backend interface {
	ApplyDefinition(ctx context.Context, def quota.LimitDefinition) error
	Reserve(ctx context.Context, req quota.ReserveRequest, now time.Time) (quota.ReserveResponse, error)
	Complete(ctx context.Context, req quota.CompleteRequest) (quota.CompleteResponse, error)
	Definitions() []quota.LimitDefinition
}
