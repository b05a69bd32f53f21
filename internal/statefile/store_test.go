package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"rewardVault/internal/randomness"
	"rewardVault/internal/vault"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	_, found, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatalf("missing file reported as found")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewStore(path)

	in := State{
		Vault: vault.Snapshot{
			Owner:           "0x1000000000000000000000000000000000000001",
			BatchSize:       2,
			RemainingSupply: 7,
			FeePerUnit:      "5",
			CollectedFees:   "35",
		},
		Bank:    map[string]string{"0/0xAB/7/0xCD": "100"},
		Oracle:  randomness.OracleSnapshot{Seed: "0x01", Seeded: true, Issued: 3},
		LastSeq: 9,
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, found, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatalf("saved state not found")
	}
	if out.Vault.RemainingSupply != 7 || out.Vault.BatchSize != 2 {
		t.Fatalf("vault state mismatch: %+v", out.Vault)
	}
	if out.Bank["0/0xAB/7/0xCD"] != "100" {
		t.Fatalf("bank state mismatch: %+v", out.Bank)
	}
	if out.Oracle.Issued != 3 || !out.Oracle.Seeded {
		t.Fatalf("oracle state mismatch: %+v", out.Oracle)
	}
	if out.LastSeq != 9 {
		t.Fatalf("last seq mismatch: %d", out.LastSeq)
	}
	if out.UpdatedAt == "" {
		t.Fatalf("updated-at not stamped")
	}

	// No temp file is left behind after a successful save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := NewStore(path).Load(); err == nil {
		t.Fatalf("expected malformed state to fail")
	}
}
