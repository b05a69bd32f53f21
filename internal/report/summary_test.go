package report

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"rewardVault/internal/model"
	"rewardVault/internal/vault"
)

func sampleRecords() []model.EventRecord {
	return []model.EventRecord{
		{Seq: 1, EventName: vault.EventTypeOpenRequested, Decoded: model.OpenRequestedData{
			Requester: "0x2000000000000000000000000000000000000001",
			Units:     3,
			RequestID: "0x01",
		}},
		{Seq: 2, EventName: vault.EventTypeOpenFulfilled, Decoded: model.OpenFulfilledData{
			RequestID:  "0x01",
			Randomness: "0x02",
		}},
		{Seq: 3, EventName: vault.EventTypeRewardsClaimed, Decoded: model.RewardsClaimedData{
			Requester: "0x2000000000000000000000000000000000000001",
			Units:     3,
			Picks: []model.PickData{
				{Slot: 0, Class: "fungible", Quantity: "20"},
				{Slot: 0, Class: "fungible", Quantity: "10"},
				{Slot: 2, Class: "semi_fungible", Quantity: "5"},
			},
		}},
	}
}

func TestAccumulate(t *testing.T) {
	summary, err := Accumulate(sampleRecords())
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	if summary.Opens != 1 || summary.Fulfilled != 1 || summary.Claims != 1 {
		t.Fatalf("counter mismatch: %+v", summary)
	}
	if summary.UnitsOpened != 3 {
		t.Fatalf("units opened mismatch: %d", summary.UnitsOpened)
	}
	if summary.Distributed[0].Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("slot 0 distribution mismatch: %s", summary.Distributed[0])
	}
	if summary.Distributed[2].Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("slot 2 distribution mismatch: %s", summary.Distributed[2])
	}
}

func TestAccumulateRejectsUnknownPayload(t *testing.T) {
	records := []model.EventRecord{{Seq: 1, Decoded: "not a payload"}}
	if _, err := Accumulate(records); err == nil {
		t.Fatalf("expected unknown payload to fail")
	}
}

func TestAccumulateRejectsBadQuantity(t *testing.T) {
	records := []model.EventRecord{{Seq: 1, Decoded: model.RewardsClaimedData{
		Picks: []model.PickData{{Slot: 0, Quantity: "ten"}},
	}}}
	if _, err := Accumulate(records); err == nil {
		t.Fatalf("expected malformed quantity to fail")
	}
}

func conservationSlots(remaining ...int64) []vault.AssetSlot {
	token := common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	out := make([]vault.AssetSlot, 0, len(remaining))
	for _, r := range remaining {
		out = append(out, vault.AssetSlot{
			Class:     vault.Fungible,
			Token:     token,
			Remaining: big.NewInt(r),
			UnitSize:  big.NewInt(1),
		})
	}
	return out
}

func TestCheckConservation(t *testing.T) {
	summary, err := Accumulate(sampleRecords())
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	initial := conservationSlots(100, 1, 10)
	final := conservationSlots(70, 1, 5)
	if err := summary.CheckConservation(initial, final); err != nil {
		t.Fatalf("conservation check failed: %v", err)
	}

	// One extra unit remaining means quantity was created somewhere.
	broken := conservationSlots(71, 1, 5)
	if err := summary.CheckConservation(initial, broken); err == nil {
		t.Fatalf("expected conservation violation")
	}

	if err := summary.CheckConservation(initial, conservationSlots(70, 1)); err == nil {
		t.Fatalf("expected slot count mismatch")
	}
}
