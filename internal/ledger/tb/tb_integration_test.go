//go:build integration

package tb

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Brandon7CC/MODELFORGE/internal/testutil"
	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

// newBackendForTest connects to the cluster named by MODELFORGE_TB_ADDRESSES
// or skips the test when no cluster is reachable from the environment.
func newBackendForTest(t *testing.T) *Backend {
	t.Helper()
	addresses := os.Getenv("MODELFORGE_TB_ADDRESSES")
	if addresses == "" {
		t.Skip("MODELFORGE_TB_ADDRESSES not set")
	}
	clusterID := uint64(0)
	if raw := os.Getenv("MODELFORGE_TB_CLUSTER"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			t.Fatalf("parse MODELFORGE_TB_CLUSTER: %v", err)
		}
		clusterID = parsed
	}
	backend, err := New(Config{
		ClusterID: uint32(clusterID),
		Addresses: strings.Split(addresses, ","),
		Sessions:  1,
	})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return backend
}

// freshKey returns a limit key unique to this test run so reruns against a
// persistent cluster start from clean accounts.
func freshKey(t *testing.T) quota.LimitKey {
	t.Helper()
	return quota.LimitKey(t.Name() + "-" + uuid.NewString())
}

func applyDefinition(t *testing.T, backend *Backend, def quota.LimitDefinition) {
	t.Helper()
	ctx := testutil.Context(t, 4*time.Second)
	if err := backend.ApplyDefinition(ctx, def); err != nil {
		t.Fatalf("apply definition: %v", err)
	}
}

func reserveTB(t *testing.T, backend *Backend, leaseID string, key quota.LimitKey, units uint64) quota.ReserveResponse {
	t.Helper()
	ctx := testutil.Context(t, 4*time.Second)
	res, err := backend.Reserve(ctx, quota.ReserveRequest{LeaseID: leaseID, Key: key, Units: units}, time.Now())
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	return res
}

func TestTB_ReserveDeniesBeyondCapacity(t *testing.T) {
	backend := newBackendForTest(t)
	key := freshKey(t)
	applyDefinition(t, backend, quota.LimitDefinition{Key: key, Capacity: 1, WindowSeconds: 60})

	if !reserveTB(t, backend, uuid.NewString(), key, 1).Allowed {
		t.Fatalf("expected initial allow")
	}
	res := reserveTB(t, backend, uuid.NewString(), key, 1)
	if res.Allowed {
		t.Fatalf("expected deny")
	}
	if res.RetryAfterMs <= 0 {
		t.Fatalf("expected retry_after_ms > 0")
	}
}

func TestTB_ReserveIdempotentReplay(t *testing.T) {
	backend := newBackendForTest(t)
	key := freshKey(t)
	applyDefinition(t, backend, quota.LimitDefinition{Key: key, Capacity: 1, WindowSeconds: 60})

	leaseID := uuid.NewString()
	if !reserveTB(t, backend, leaseID, key, 1).Allowed {
		t.Fatalf("expected allow")
	}
	if !reserveTB(t, backend, leaseID, key, 1).Allowed {
		t.Fatalf("expected idempotent allow")
	}
	if reserveTB(t, backend, uuid.NewString(), key, 1).Allowed {
		t.Fatalf("expected deny for second lease")
	}
}

func TestTB_ExpiryReleasesCapacity(t *testing.T) {
	backend := newBackendForTest(t)
	key := freshKey(t)
	applyDefinition(t, backend, quota.LimitDefinition{Key: key, Capacity: 1, WindowSeconds: 2})

	if !reserveTB(t, backend, uuid.NewString(), key, 1).Allowed {
		t.Fatalf("expected allow")
	}
	deadline := time.Now().Add(6 * time.Second)
	for {
		if reserveTB(t, backend, uuid.NewString(), key, 1).Allowed {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("capacity never returned after window expiry")
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func TestTB_CompleteReleasesSlack(t *testing.T) {
	backend := newBackendForTest(t)
	key := freshKey(t)
	applyDefinition(t, backend, quota.LimitDefinition{Key: key, Capacity: 100, WindowSeconds: 60})

	leaseID := uuid.NewString()
	if !reserveTB(t, backend, leaseID, key, 100).Allowed {
		t.Fatalf("expected allow")
	}
	ctx := testutil.Context(t, 4*time.Second)
	res, err := backend.Complete(ctx, quota.CompleteRequest{LeaseID: leaseID, Key: key, UnitsUsed: 10})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !res.Ok {
		t.Fatalf("complete returned ok=false: %s", res.Error)
	}
	if !reserveTB(t, backend, uuid.NewString(), key, 90).Allowed {
		t.Fatalf("expected allow after reconcile")
	}
}
