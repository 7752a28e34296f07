// Package memory implements the quota ledger in process memory with a
// rolling-window reservation heap per limit key.
package memory

import (
	"container/heap"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

const invalidRequestError = "invalid_request"

var errInvalidDefinition = errors.New("limit definition needs a key, a capacity, and a window")

// Backend stores quota state in memory.
type Backend struct {
	mu     sync.Mutex
	defs   map[quota.LimitKey]quota.LimitDefinition
	limits map[quota.LimitKey]*rollingLimit
	leases map[string]leaseState
}

type leaseState struct {
	key   quota.LimitKey
	units uint64
}

// New creates an empty memory backend.
func New() *Backend {
	return &Backend{
		defs:   map[quota.LimitKey]quota.LimitDefinition{},
		limits: map[quota.LimitKey]*rollingLimit{},
		leases: map[string]leaseState{},
	}
}

// ApplyDefinition installs or replaces a limit definition. Existing
// reservations survive a capacity change.
func (b *Backend) ApplyDefinition(_ context.Context, def quota.LimitDefinition) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if def.Key == "" || def.Capacity == 0 || def.WindowSeconds <= 0 {
		return errInvalidDefinition
	}
	b.defs[def.Key] = def
	limit, ok := b.limits[def.Key]
	if !ok {
		b.limits[def.Key] = newRollingLimit(def.Capacity)
		return nil
	}
	limit.cap = def.Capacity
	return nil
}

// Reserve reserves units inside the key's rolling window. Re-reserving a
// known lease with the same shape is idempotent.
func (b *Backend) Reserve(_ context.Context, req quota.ReserveRequest, now time.Time) (quota.ReserveResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if req.LeaseID == "" || req.Key == "" || req.Units == 0 {
		return quota.ReserveResponse{Allowed: false, Error: invalidRequestError}, nil
	}
	if prior, ok := b.leases[req.LeaseID]; ok {
		if prior.key == req.Key && prior.units == req.Units {
			return quota.ReserveResponse{Allowed: true}, nil
		}
		return quota.ReserveResponse{Allowed: false, Error: invalidRequestError}, nil
	}
	def, ok := b.defs[req.Key]
	if !ok {
		return quota.ReserveResponse{Allowed: false, Error: "unknown_limit_key:" + string(req.Key)}, nil
	}

	limit := b.limits[req.Key]
	cleanupRolling(limit, now)
	if limit.used+req.Units > limit.cap {
		return quota.ReserveResponse{Allowed: false, RetryAfterMs: retryAfterMs(limit, def, now)}, nil
	}

	addRollingReservation(limit, req.LeaseID, req.Units, now.Add(time.Duration(def.WindowSeconds)*time.Second))
	b.leases[req.LeaseID] = leaseState{key: req.Key, units: req.Units}
	return quota.ReserveResponse{Allowed: true}, nil
}

// Complete reconciles a lease with actual usage. The reservation itself stays
// until its window expires; only over-reserved units are released early.
func (b *Backend) Complete(_ context.Context, req quota.CompleteRequest) (quota.CompleteResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.leases[req.LeaseID]
	if !ok {
		return quota.CompleteResponse{Ok: false, Error: "unknown_lease"}, nil
	}
	if req.Key != "" && req.Key != state.key {
		return quota.CompleteResponse{Ok: false, Error: invalidRequestError}, nil
	}
	if limit, found := b.limits[state.key]; found && req.UnitsUsed < state.units {
		reduceRollingReservation(limit, req.LeaseID, req.UnitsUsed)
		state.units = req.UnitsUsed
		b.leases[req.LeaseID] = state
	}
	return quota.CompleteResponse{Ok: true}, nil
}

// Definitions returns installed limit definitions sorted by key.
func (b *Backend) Definitions() []quota.LimitDefinition {
	b.mu.Lock()
	defs := make([]quota.LimitDefinition, 0, len(b.defs))
	for _, def := range b.defs {
		defs = append(defs, def)
	}
	b.mu.Unlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

// retryAfterMs estimates when capacity returns: when the oldest reservation
// expires, or a full window if nothing is outstanding.
func retryAfterMs(limit *rollingLimit, def quota.LimitDefinition, now time.Time) int {
	if limit.heap.Len() > 0 {
		wait := limit.heap[0].expiresAt.Sub(now)
		if wait > 0 {
			return int(wait.Milliseconds()) + 1
		}
	}
	return def.WindowSeconds * 1000
}

type rollingLimit struct {
	cap  uint64
	used uint64
	heap reservationHeap
	byID map[string]*reservation
}

type reservation struct {
	id        string
	units     uint64
	expiresAt time.Time
	heapIndex int
}

func newRollingLimit(capacity uint64) *rollingLimit {
	return &rollingLimit{cap: capacity, heap: reservationHeap{}, byID: map[string]*reservation{}}
}

func cleanupRolling(limit *rollingLimit, now time.Time) {
	for limit.heap.Len() > 0 {
		res := limit.heap[0]
		if res.expiresAt.After(now) {
			break
		}
		heap.Pop(&limit.heap)
		delete(limit.byID, res.id)
		if limit.used >= res.units {
			limit.used -= res.units
		} else {
			limit.used = 0
		}
	}
}

func addRollingReservation(limit *rollingLimit, leaseID string, units uint64, expiresAt time.Time) {
	res := &reservation{id: leaseID, units: units, expiresAt: expiresAt}
	limit.byID[leaseID] = res
	limit.used += units
	heap.Push(&limit.heap, res)
}

func reduceRollingReservation(limit *rollingLimit, leaseID string, newUnits uint64) {
	res, ok := limit.byID[leaseID]
	if !ok || newUnits >= res.units {
		return
	}
	diff := res.units - newUnits
	if limit.used >= diff {
		limit.used -= diff
	} else {
		limit.used = 0
	}
	res.units = newUnits
}

type reservationHeap []*reservation

func (h reservationHeap) Len() int { return len(h) }

func (h reservationHeap) Less(i, j int) bool {
	return h[i].expiresAt.Before(h[j].expiresAt)
}

func (h reservationHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *reservationHeap) Push(x interface{}) {
	res := x.(*reservation)
	res.heapIndex = len(*h)
	*h = append(*h, res)
}

func (h *reservationHeap) Pop() interface{} {
	old := *h
	n := len(old)
	res := old[n-1]
	res.heapIndex = -1
	*h = old[:n-1]
	return res
}
