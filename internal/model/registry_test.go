package model

import (
	"context"
	"sync"
	"testing"
)

// fakeClient counts calls and returns scripted output.
type fakeClient struct {
	mu       sync.Mutex
	output   string
	queries  []string
	creates  int
	disposes int
}

func (c *fakeClient) Create(context.Context, Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates++
	return nil
}

func (c *fakeClient) Query(_ context.Context, _ Handle, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, prompt)
	return c.output, nil
}

func (c *fakeClient) Dispose(context.Context, Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposes++
	return nil
}

func TestRegistryTracksLiveHandles(t *testing.T) {
	registry := NewRegistry()
	client := &fakeClient{}
	a := Handle{EphemeralName: "MODELFORGE-b-x"}
	b := Handle{EphemeralName: "MODELFORGE-a-y"}

	registry.Add(a, client)
	registry.Add(b, client)
	names := registry.Names()
	if len(names) != 2 || names[0] != "MODELFORGE-a-y" || names[1] != "MODELFORGE-b-x" {
		t.Fatalf("unexpected names: %v", names)
	}

	registry.Remove(a)
	names = registry.Names()
	if len(names) != 1 || names[0] != "MODELFORGE-a-y" {
		t.Fatalf("unexpected names after remove: %v", names)
	}
}

func TestRegistryDisposeAll(t *testing.T) {
	registry := NewRegistry()
	client := &fakeClient{}
	registry.Add(Handle{EphemeralName: "MODELFORGE-one"}, client)
	registry.Add(Handle{EphemeralName: "MODELFORGE-two"}, client)

	count := registry.DisposeAll(context.Background())
	if count != 2 {
		t.Fatalf("expected 2 disposed, got %d", count)
	}
	if client.disposes != 2 {
		t.Fatalf("expected 2 dispose calls, got %d", client.disposes)
	}
	if len(registry.Names()) != 0 {
		t.Fatalf("registry should be empty after DisposeAll")
	}

	if again := registry.DisposeAll(context.Background()); again != 0 {
		t.Fatalf("expected idempotent DisposeAll, got %d", again)
	}
}
