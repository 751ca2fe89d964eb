package params

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

func newTestContext(t *testing.T) types.Context {
	t.Helper()
	ms := rootmulti.NewStore()
	if err := ms.MountStore(StoreKey, iavl.NewMemNodeDB()); err != nil {
		t.Fatalf("mount params store: %v", err)
	}
	return types.NewInitContext(ms, "test-chain")
}

func TestGetUnsetKeyReturnsFalse(t *testing.T) {
	ctx := newTestContext(t)
	sub := NewSubspace("baseapp")
	var v uint64
	if sub.Get(ctx, "max_gas", &v) {
		t.Fatalf("Get on an unset key returned true")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	sub := NewSubspace("baseapp")
	if err := sub.Set(ctx, "max_gas", uint64(5_000_000)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := sub.GetUint64(ctx, "max_gas", 0); got != 5_000_000 {
		t.Fatalf("GetUint64 = %d, want 5000000", got)
	}
}

func TestGetUint64FallsBackToDefaultWhenUnset(t *testing.T) {
	ctx := newTestContext(t)
	sub := NewSubspace("auth")
	if got := sub.GetUint64(ctx, "max_gas", 42); got != 42 {
		t.Fatalf("GetUint64 default = %d, want 42", got)
	}
}

func TestSubspacesAreIsolatedByName(t *testing.T) {
	ctx := newTestContext(t)
	a := NewSubspace("auth")
	b := NewSubspace("bank")
	if err := a.Set(ctx, "max_memo_characters", 256); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var v int
	if b.Get(ctx, "max_memo_characters", &v) {
		t.Fatalf("bank subspace saw a key set under the auth subspace")
	}
}

func TestWithValidatorRejectsMalformedWrite(t *testing.T) {
	ctx := newTestContext(t)
	sub := NewSubspace("auth").WithValidator("max_memo_characters", func(raw []byte) error {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil || n <= 0 {
			return fmt.Errorf("max_memo_characters must be a positive integer")
		}
		return nil
	})
	if err := sub.Set(ctx, "max_memo_characters", -1); err == nil {
		t.Fatalf("Set accepted a value its validator should have rejected")
	}
	if err := sub.Set(ctx, "max_memo_characters", 256); err != nil {
		t.Fatalf("Set rejected a value the validator should accept: %v", err)
	}
}
