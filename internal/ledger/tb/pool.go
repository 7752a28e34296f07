package tb

import (
	"context"
	"fmt"

	tigerbeetle "github.com/tigerbeetle/tigerbeetle-go"
	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

// clientPool manages a fixed set of TigerBeetle client sessions.
type clientPool struct {
	clients   []tigerbeetle.Client
	available chan tigerbeetle.Client
}

func newClientPool(clusterID uint32, addresses []string, sessions int) (*clientPool, error) {
	if sessions <= 0 {
		sessions = 1
	}
	clients := make([]tigerbeetle.Client, 0, sessions)
	available := make(chan tigerbeetle.Client, sessions)
	cluster := tbtypes.ToUint128(uint64(clusterID))
	for i := 0; i < sessions; i++ {
		client, err := tigerbeetle.NewClient(cluster, addresses)
		if err != nil {
			for _, c := range clients {
				c.Close()
			}
			return nil, fmt.Errorf("create TB client: %w", err)
		}
		clients = append(clients, client)
		available <- client
	}
	return &clientPool{clients: clients, available: available}, nil
}

// acquire returns a client from the pool or an error on context cancellation.
func (p *clientPool) acquire(ctx context.Context) (tigerbeetle.Client, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case client := <-p.available:
		return client, nil
	}
}

func (p *clientPool) release(client tigerbeetle.Client) {
	if client == nil {
		return
	}
	p.available <- client
}

func (p *clientPool) close() error {
	for _, client := range p.clients {
		client.Close()
	}
	return nil
}
