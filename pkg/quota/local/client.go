// Package local implements Limiter in process, without a quotad server.
package local

import (
	"context"
	"fmt"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/ledger"
	"github.com/Brandon7CC/MODELFORGE/internal/ledger/memory"
	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

// Client implements Limiter against an in-process ledger backend.
type Client struct {
	backend ledger.Backend
	now     func() time.Time
}

// New wraps a ledger backend as a Limiter.
func New(backend ledger.Backend) *Client {
	return &Client{backend: backend, now: time.Now}
}

// NewMemoryLimiterFromFile loads limit definitions from a YAML file into a
// fresh in-memory ledger.
func NewMemoryLimiterFromFile(path string) (*Client, error) {
	defs, err := quota.LoadDefinitions(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryLimiter(defs)
}

// NewMemoryLimiter applies definitions to a fresh in-memory ledger.
func NewMemoryLimiter(defs []quota.LimitDefinition) (*Client, error) {
	backend := memory.New()
	for _, def := range defs {
		if err := backend.ApplyDefinition(context.Background(), def); err != nil {
			return nil, fmt.Errorf("apply limit %q: %w", def.Key, err)
		}
	}
	return New(backend), nil
}

// Reserve forwards reserve requests to the backend.
func (c *Client) Reserve(ctx context.Context, req quota.ReserveRequest) (quota.ReserveResponse, error) {
	return c.backend.Reserve(ctx, req, c.now())
}

// Complete forwards completion requests to the backend.
func (c *Client) Complete(ctx context.Context, req quota.CompleteRequest) (quota.CompleteResponse, error) {
	return c.backend.Complete(ctx, req)
}
