// Package tb implements the quota ledger on TigerBeetle. Each limit key is a
// debit-capped account funded by an operator account; reservations are
// pending transfers whose timeout equals the remaining rolling window, so
// expiry returns capacity without any bookkeeping on our side.
package tb

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"time"

	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"

	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

const (
	ledgerLimits uint32 = 1
	codeLimit    uint16 = 1

	invalidRequestError = "invalid_request"
)

// Config defines connection settings for the TB ledger.
type Config struct {
	ClusterID uint32
	Addresses []string
	Sessions  int
	Now       func() time.Time
}

// Backend implements ledger.Backend on a TigerBeetle cluster.
type Backend struct {
	pool  *clientPool
	nowFn func() time.Time

	mu     sync.Mutex
	defs   map[quota.LimitKey]quota.LimitDefinition
	leases map[string]leaseState
}

type leaseState struct {
	key            quota.LimitKey
	units          uint64
	reservedAtUnix int64
}

// New connects to the cluster and returns a ready backend.
func New(cfg Config) (*Backend, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("tb backend needs at least one address")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	pool, err := newClientPool(cfg.ClusterID, cfg.Addresses, cfg.Sessions)
	if err != nil {
		return nil, err
	}
	return &Backend{
		pool:   pool,
		nowFn:  cfg.Now,
		defs:   map[quota.LimitKey]quota.LimitDefinition{},
		leases: map[string]leaseState{},
	}, nil
}

// Close shuts down the client sessions.
func (b *Backend) Close() error {
	return b.pool.close()
}

// ApplyDefinition provisions the limit account and tops up its capacity.
// Lowering capacity is not supported; re-create the cluster to shrink.
func (b *Backend) ApplyDefinition(ctx context.Context, def quota.LimitDefinition) error {
	if def.Key == "" || def.Capacity == 0 || def.WindowSeconds <= 0 {
		return fmt.Errorf("limit definition needs a key, a capacity, and a window")
	}
	b.mu.Lock()
	prev, known := b.defs[def.Key]
	b.mu.Unlock()
	if known && def.Capacity < prev.Capacity {
		return fmt.Errorf("capacity decrease for %q is not supported", def.Key)
	}

	if err := b.ensureAccounts(ctx, def); err != nil {
		return err
	}
	if err := b.ensureCapacity(ctx, def); err != nil {
		return err
	}
	b.mu.Lock()
	b.defs[def.Key] = def
	b.mu.Unlock()
	return nil
}

// Reserve attempts a pending transfer against the limit account. A replayed
// lease with the same shape is answered from local state.
func (b *Backend) Reserve(ctx context.Context, req quota.ReserveRequest, now time.Time) (quota.ReserveResponse, error) {
	if req.LeaseID == "" || req.Key == "" || req.Units == 0 {
		return quota.ReserveResponse{Allowed: false, Error: invalidRequestError}, nil
	}
	if now.IsZero() {
		now = b.nowFn()
	}

	b.mu.Lock()
	if prior, ok := b.leases[req.LeaseID]; ok {
		b.mu.Unlock()
		if prior.key == req.Key && prior.units == req.Units {
			return quota.ReserveResponse{Allowed: true}, nil
		}
		return quota.ReserveResponse{Allowed: false, Error: invalidRequestError}, nil
	}
	def, ok := b.defs[req.Key]
	b.mu.Unlock()
	if !ok {
		return quota.ReserveResponse{Allowed: false, Error: "unknown_limit_key:" + string(req.Key)}, nil
	}

	transfer := tbtypes.Transfer{
		ID:              reserveTransferID(req.LeaseID, req.Key),
		DebitAccountID:  limitAccountID(req.Key),
		CreditAccountID: operatorAccountID(),
		Amount:          tbtypes.ToUint128(req.Units),
		Ledger:          ledgerLimits,
		Code:            codeLimit,
		Flags:           tbtypes.TransferFlags{Pending: true}.ToUint16(),
		Timeout:         uint32(def.WindowSeconds),
	}
	results, err := b.createTransfers(ctx, []tbtypes.Transfer{transfer})
	if err != nil {
		return quota.ReserveResponse{}, err
	}
	allowed, err := evaluateReserveResults(results)
	if err != nil {
		return quota.ReserveResponse{}, err
	}
	if !allowed {
		return quota.ReserveResponse{Allowed: false, RetryAfterMs: def.WindowSeconds * 1000}, nil
	}

	b.mu.Lock()
	b.leases[req.LeaseID] = leaseState{key: req.Key, units: req.Units, reservedAtUnix: now.UnixMilli()}
	b.mu.Unlock()
	return quota.ReserveResponse{Allowed: true}, nil
}

// Complete reconciles a lease with actual usage. Over-reserved units are
// released by voiding the pending transfer and re-reserving the smaller
// amount for the remainder of the window.
func (b *Backend) Complete(ctx context.Context, req quota.CompleteRequest) (quota.CompleteResponse, error) {
	if req.LeaseID == "" {
		return quota.CompleteResponse{Ok: false, Error: invalidRequestError}, nil
	}

	b.mu.Lock()
	state, ok := b.leases[req.LeaseID]
	if !ok {
		b.mu.Unlock()
		return quota.CompleteResponse{Ok: false, Error: "unknown_lease"}, nil
	}
	if req.Key != "" && req.Key != state.key {
		b.mu.Unlock()
		return quota.CompleteResponse{Ok: false, Error: invalidRequestError}, nil
	}
	def := b.defs[state.key]
	b.mu.Unlock()

	if req.UnitsUsed >= state.units {
		return quota.CompleteResponse{Ok: true}, nil
	}

	void := tbtypes.Transfer{
		ID:              voidTransferID(req.LeaseID, state.key),
		DebitAccountID:  limitAccountID(state.key),
		CreditAccountID: operatorAccountID(),
		Amount:          tbtypes.ToUint128(state.units),
		Ledger:          ledgerLimits,
		Code:            codeLimit,
		Flags:           tbtypes.TransferFlags{VoidPendingTransfer: true, Linked: req.UnitsUsed != 0}.ToUint16(),
		PendingID:       reserveTransferID(req.LeaseID, state.key),
	}
	transfers := []tbtypes.Transfer{void}
	if req.UnitsUsed != 0 {
		transfers = append(transfers, tbtypes.Transfer{
			ID:              rereserveTransferID(req.LeaseID, state.key),
			DebitAccountID:  limitAccountID(state.key),
			CreditAccountID: operatorAccountID(),
			Amount:          tbtypes.ToUint128(req.UnitsUsed),
			Ledger:          ledgerLimits,
			Code:            codeLimit,
			Flags:           tbtypes.TransferFlags{Pending: true}.ToUint16(),
			Timeout:         uint32(remainingWindowSeconds(state.reservedAtUnix, b.nowFn(), def.WindowSeconds)),
		})
	}
	results, err := b.createTransfers(ctx, transfers)
	if err != nil {
		return quota.CompleteResponse{Ok: false, Error: "backend_error"}, err
	}
	if err := firstTransferError(results); err != nil {
		return quota.CompleteResponse{Ok: false, Error: "backend_error"}, err
	}

	b.mu.Lock()
	state.units = req.UnitsUsed
	b.leases[req.LeaseID] = state
	b.mu.Unlock()
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

// ensureAccounts creates the operator and limit accounts as needed.
func (b *Backend) ensureAccounts(ctx context.Context, def quota.LimitDefinition) error {
	accounts := []tbtypes.Account{
		{
			ID:     operatorAccountID(),
			Ledger: ledgerLimits,
			Code:   codeLimit,
		},
		{
			ID:     limitAccountID(def.Key),
			Ledger: ledgerLimits,
			Code:   codeLimit,
			Flags:  tbtypes.AccountFlags{DebitsMustNotExceedCredits: true}.ToUint16(),
		},
	}
	client, err := b.pool.acquire(ctx)
	if err != nil {
		return err
	}
	results, err := client.CreateAccounts(accounts)
	b.pool.release(client)
	if err != nil {
		return err
	}
	for _, result := range results {
		if result.Result == tbtypes.AccountExists {
			continue
		}
		return fmt.Errorf("create account error: %s", result.Result)
	}
	return nil
}

// ensureCapacity credits the limit account up to the target capacity.
func (b *Backend) ensureCapacity(ctx context.Context, def quota.LimitDefinition) error {
	account, err := b.lookupAccount(ctx, limitAccountID(def.Key))
	if err != nil {
		return err
	}
	balance := accountBalance(account)
	if def.Capacity <= balance {
		return nil
	}
	transfer := tbtypes.Transfer{
		ID:              capacityTransferID(def.Key, def.Capacity),
		DebitAccountID:  operatorAccountID(),
		CreditAccountID: limitAccountID(def.Key),
		Amount:          tbtypes.ToUint128(def.Capacity - balance),
		Ledger:          ledgerLimits,
		Code:            codeLimit,
	}
	results, err := b.createTransfers(ctx, []tbtypes.Transfer{transfer})
	if err != nil {
		return err
	}
	return firstTransferError(results)
}

func (b *Backend) createTransfers(ctx context.Context, transfers []tbtypes.Transfer) ([]tbtypes.TransferEventResult, error) {
	client, err := b.pool.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer b.pool.release(client)
	return client.CreateTransfers(transfers)
}

func (b *Backend) lookupAccount(ctx context.Context, id tbtypes.Uint128) (tbtypes.Account, error) {
	client, err := b.pool.acquire(ctx)
	if err != nil {
		return tbtypes.Account{}, err
	}
	defer b.pool.release(client)
	accounts, err := client.LookupAccounts([]tbtypes.Uint128{id})
	if err != nil {
		return tbtypes.Account{}, err
	}
	if len(accounts) == 0 {
		return tbtypes.Account{}, fmt.Errorf("account not found")
	}
	return accounts[0], nil
}

// evaluateReserveResults maps per-transfer results to an allow/deny decision.
func evaluateReserveResults(results []tbtypes.TransferEventResult) (bool, error) {
	for _, result := range results {
		switch result.Result {
		case tbtypes.TransferExceedsCredits, tbtypes.TransferExceedsDebits:
			return false, nil
		case tbtypes.TransferExists:
		default:
			return false, fmt.Errorf("reserve transfer error: %s", result.Result)
		}
	}
	return true, nil
}

// firstTransferError returns the first result that is not safely ignorable.
func firstTransferError(results []tbtypes.TransferEventResult) error {
	for _, result := range results {
		switch result.Result {
		case tbtypes.TransferExists,
			tbtypes.TransferPendingTransferAlreadyVoided,
			tbtypes.TransferPendingTransferExpired:
		default:
			return fmt.Errorf("transfer error: %s", result.Result)
		}
	}
	return nil
}

func accountBalance(account tbtypes.Account) uint64 {
	credits := uint128ToUint64(account.CreditsPosted)
	debits := uint128ToUint64(account.DebitsPosted)
	if credits < debits {
		return 0
	}
	return credits - debits
}

func uint128ToUint64(value tbtypes.Uint128) uint64 {
	bytes := value.Bytes()
	if binary.LittleEndian.Uint64(bytes[8:]) != 0 {
		panic(fmt.Errorf("uint128 overflows uint64"))
	}
	return binary.LittleEndian.Uint64(bytes[:8])
}

// remainingWindowSeconds computes the rolling seconds left for a re-reserve.
func remainingWindowSeconds(reservedAtUnix int64, now time.Time, windowSeconds int) int {
	if windowSeconds <= 0 {
		return 1
	}
	elapsed := int(now.Sub(time.UnixMilli(reservedAtUnix)).Seconds())
	remaining := windowSeconds - elapsed
	if remaining < 1 {
		return 1
	}
	return remaining
}
