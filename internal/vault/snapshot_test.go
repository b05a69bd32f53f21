package vault_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"rewardVault/internal/assets"
	"rewardVault/internal/randomness"
	"rewardVault/internal/vault"
)

func TestSnapshotRoundTrip(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()

	// Freeze mid-lifecycle: alice fulfilled but unclaimed, bob still waiting
	// on the oracle.
	f.openAndDeliver(t, alice, 3)
	bobID, err := f.vault.OpenPublic(ctx, bob, 2, fee(2))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	snap := f.vault.Snapshot()
	bank, err := assets.RestoreBank(f.bank.Snapshot())
	if err != nil {
		t.Fatalf("restore bank: %v", err)
	}
	oracle := randomness.RestoreOracle(f.oracle.Snapshot())
	bridge := randomness.NewBridge(oracle, randomness.RequestParams{Words: 1}, nil)

	restored, err := vault.Restore(snap, bridge, bank, nil)
	if err != nil {
		t.Fatalf("restore vault: %v", err)
	}
	restored.SetNowFunc(func() int64 { return 1_000 })

	if restored.RemainingSupply() != f.vault.RemainingSupply() {
		t.Fatalf("supply mismatch: %d != %d", restored.RemainingSupply(), f.vault.RemainingSupply())
	}
	if restored.CollectedFees().Cmp(f.vault.CollectedFees()) != 0 {
		t.Fatalf("fees mismatch")
	}
	if !restored.CanClaim(alice) {
		t.Fatalf("alice's fulfilled request lost")
	}
	if restored.CanClaim(bob) {
		t.Fatalf("bob's request fulfilled out of nowhere")
	}

	// The bridge index survives the round trip: bob's outstanding id still
	// resolves exactly once.
	if !restored.Deliver(bobID, oracle.WordFor(bobID)) {
		t.Fatalf("delivery dropped after restore")
	}
	if restored.Deliver(bobID, oracle.WordFor(bobID)) {
		t.Fatalf("duplicate delivery accepted after restore")
	}

	if _, err := restored.Claim(ctx, alice); err != nil {
		t.Fatalf("claim alice: %v", err)
	}
	if _, err := restored.Claim(ctx, bob); err != nil {
		t.Fatalf("claim bob: %v", err)
	}
}

func TestSnapshotPrivateModeSurvives(t *testing.T) {
	cfg := defaultConfig()
	root := crypto.Keccak256Hash([]byte("whitelist-root"))
	cfg.Root = &root
	f := newFixture(t, cfg)

	snap := f.vault.Snapshot()
	bank, err := assets.RestoreBank(f.bank.Snapshot())
	if err != nil {
		t.Fatalf("restore bank: %v", err)
	}
	bridge := randomness.NewBridge(randomness.RestoreOracle(f.oracle.Snapshot()), randomness.RequestParams{Words: 1}, nil)

	restored, err := vault.Restore(snap, bridge, bank, nil)
	if err != nil {
		t.Fatalf("restore vault: %v", err)
	}
	if !restored.PrivateMode() {
		t.Fatalf("private mode lost in round trip")
	}
}

func TestSnapshotRejectsBadNumbers(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap := f.vault.Snapshot()
	snap.Slots[0].Remaining = "not-a-number"

	bridge := randomness.NewBridge(randomness.NewLocalOracle(), randomness.RequestParams{Words: 1}, nil)
	if _, err := vault.Restore(snap, bridge, assets.NewBank(), nil); err == nil {
		t.Fatalf("expected restore to reject malformed quantity")
	}
}
