package model

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

// FactoryConfig selects how clients are built for resolved providers.
type FactoryConfig struct {
	Resolver   Resolver
	OllamaHost string
	// Limiter guards hosted-provider queries. Nil means unmetered.
	Limiter quota.Limiter
}

// NewFactory returns a Factory that resolves the provider from the handle's
// base model and builds the matching client. Hosted clients are wrapped with
// the quota limiter when one is configured.
func NewFactory(cfg FactoryConfig) Factory {
	resolver := cfg.Resolver
	if len(resolver.Rules) == 0 && resolver.Default == "" {
		resolver = DefaultResolver()
	}
	return func(handle Handle) (Client, error) {
		provider := resolver.Resolve(handle.BaseModel)
		var client Client
		switch provider {
		case ProviderOpenAI:
			client = NewOpenAIClient()
		case ProviderGoogle:
			client = NewGoogleClient()
		case ProviderOllama:
			client = NewOllamaClient(cfg.OllamaHost)
		default:
			return nil, fmt.Errorf("unknown provider %q for model %q", provider, handle.BaseModel)
		}
		if provider.Hosted() && cfg.Limiter != nil {
			client = &limitedClient{inner: client, limiter: cfg.Limiter, key: quota.LimitKey(provider)}
		}
		return client, nil
	}
}

// limitedClient meters queries through a quota reservation per call.
type limitedClient struct {
	inner   Client
	limiter quota.Limiter
	key     quota.LimitKey
}

func (c *limitedClient) Create(ctx context.Context, handle Handle) error {
	return c.inner.Create(ctx, handle)
}

func (c *limitedClient) Query(ctx context.Context, handle Handle, prompt string) (string, error) {
	leaseID := uuid.NewString()
	err := quota.Wait(ctx, c.limiter, quota.ReserveRequest{LeaseID: leaseID, Key: c.key, Units: 1})
	if err != nil {
		return "", &QueryError{Name: handle.EphemeralName, Err: fmt.Errorf("quota reserve: %w", err)}
	}
	out, queryErr := c.inner.Query(ctx, handle, prompt)
	// Completion is advisory; the reservation expires with its window anyway.
	_, _ = c.limiter.Complete(context.WithoutCancel(ctx), quota.CompleteRequest{LeaseID: leaseID, Key: c.key, UnitsUsed: 1})
	return out, queryErr
}

func (c *limitedClient) Dispose(ctx context.Context, handle Handle) error {
	return c.inner.Dispose(ctx, handle)
}
