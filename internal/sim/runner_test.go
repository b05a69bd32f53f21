package sim

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"rewardVault/internal/assets"
	"rewardVault/internal/eligibility"
	"rewardVault/internal/randomness"
	"rewardVault/internal/report"
	"rewardVault/internal/storage"
	"rewardVault/internal/vault"
)

func runSlots() []vault.AssetSlot {
	return []vault.AssetSlot{
		{
			Class:     vault.Fungible,
			Token:     common.HexToAddress("0xaaaa000000000000000000000000000000000001"),
			Remaining: big.NewInt(100),
			UnitSize:  big.NewInt(10),
		},
		{
			Class:     vault.SemiFungible,
			Token:     common.HexToAddress("0xcccc000000000000000000000000000000000003"),
			TokenID:   big.NewInt(3),
			Remaining: big.NewInt(10),
			UnitSize:  big.NewInt(5),
		},
	}
}

func runRequesters(n int) []common.Address {
	out := make([]common.Address, 0, n)
	for i := 0; i < n; i++ {
		hash := crypto.Keccak256([]byte{0x40, byte(i)})
		out = append(out, common.BytesToAddress(hash[12:]))
	}
	return out
}

func buildRun(t *testing.T, requesters []common.Address, root *common.Hash) (*vault.Vault, *randomness.LocalOracle, *Recorder, *assets.Bank) {
	t.Helper()

	funder := common.HexToAddress("0x1000000000000000000000000000000000000002")
	slots := runSlots()

	oracle := randomness.NewSeededOracle(crypto.Keccak256Hash([]byte("run-seed")))
	bridge := randomness.NewBridge(oracle, randomness.RequestParams{Words: 1}, nil)
	recorder := NewRecorder()

	bank := assets.NewBank()
	for i := range slots {
		bank.Mint(slots[i].Class, slots[i].Token, slots[i].TokenID, funder, slots[i].Remaining)
	}

	v, err := vault.New(context.Background(), vault.Config{
		Owner:      common.HexToAddress("0x1000000000000000000000000000000000000001"),
		Funder:     funder,
		Address:    common.HexToAddress("0x1000000000000000000000000000000000000003"),
		Slots:      slots,
		BatchSize:  1,
		FeePerUnit: big.NewInt(2),
		Root:       root,
	}, bridge, nil, bank, recorder)
	if err != nil {
		t.Fatalf("new vault: %v", err)
	}
	return v, oracle, recorder, bank
}

func TestRunnerDrivesFullLifecycle(t *testing.T) {
	requesters := runRequesters(3)
	v, oracle, recorder, _ := buildRun(t, requesters, nil)
	memory := storage.NewMemory()

	runner := NewRunner(RunConfig{Requesters: requesters, UnitsPerOpen: 4}, v, oracle, recorder, memory, nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// Three requesters, three records each: requested, fulfilled, claimed.
	records := memory.Records()
	if len(records) != 9 {
		t.Fatalf("record count mismatch: got %d, want 9", len(records))
	}
	for i, record := range records {
		if record.Seq != uint64(i+1) {
			t.Fatalf("record %d has seq %d", i, record.Seq)
		}
	}

	summary, err := report.Accumulate(records)
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if summary.Opens != 3 || summary.Fulfilled != 3 || summary.Claims != 3 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
	if summary.UnitsOpened != 12 {
		t.Fatalf("units opened mismatch: %d", summary.UnitsOpened)
	}
	if err := summary.CheckConservation(runSlots(), v.PoolState()); err != nil {
		t.Fatalf("conservation: %v", err)
	}

	if v.RemainingSupply() != 0 {
		t.Fatalf("supply left: %d", v.RemainingSupply())
	}
	if got := v.CollectedFees(); got.Cmp(big.NewInt(24)) != 0 {
		t.Fatalf("fees mismatch: %s", got)
	}
}

func TestRunnerPrivateMode(t *testing.T) {
	requesters := runRequesters(2)
	tree, err := eligibility.NewTree(requesters)
	if err != nil {
		t.Fatalf("new tree: %v", err)
	}
	root := tree.Root()

	proofs := make(map[common.Address][]common.Hash, len(requesters))
	for _, requester := range requesters {
		proof, err := tree.ProofFor(requester)
		if err != nil {
			t.Fatalf("proof: %v", err)
		}
		proofs[requester] = proof
	}

	v, oracle, recorder, _ := buildRun(t, requesters, &root)
	memory := storage.NewMemory()

	runner := NewRunner(RunConfig{Requesters: requesters, UnitsPerOpen: 1, Proofs: proofs}, v, oracle, recorder, memory, nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(memory.Records()) != 6 {
		t.Fatalf("record count mismatch: got %d, want 6", len(memory.Records()))
	}
}

func TestRunnerValidation(t *testing.T) {
	requesters := runRequesters(1)
	v, oracle, recorder, _ := buildRun(t, requesters, nil)

	runner := NewRunner(RunConfig{Requesters: requesters, UnitsPerOpen: 0}, v, oracle, recorder, nil, nil)
	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected zero units per open to fail")
	}

	runner = NewRunner(RunConfig{UnitsPerOpen: 1}, v, oracle, recorder, nil, nil)
	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected empty requester set to fail")
	}
}

func TestSlotStates(t *testing.T) {
	states := SlotStates(runSlots())
	if len(states) != 2 {
		t.Fatalf("state count mismatch: %d", len(states))
	}
	if states[0].Class != "fungible" || states[0].Remaining != "100" || states[0].TokenID != "" {
		t.Fatalf("slot 0 state mismatch: %+v", states[0])
	}
	if states[1].Class != "semi_fungible" || states[1].TokenID != "3" {
		t.Fatalf("slot 1 state mismatch: %+v", states[1])
	}
}
