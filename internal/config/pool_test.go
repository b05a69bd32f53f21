package config

import (
	"math/big"
	"testing"

	"rewardVault/internal/vault"
)

func TestBuildSlots(t *testing.T) {
	slots, err := BuildSlots([]SlotConfig{
		{Class: "erc20", Token: "0xaaaa000000000000000000000000000000000001", Quantity: "100", UnitSize: "10"},
		{Class: "non_fungible", Token: "0xbbbb000000000000000000000000000000000002", TokenID: "7", Quantity: "1", UnitSize: "1"},
		{Class: "erc1155", Token: "0xcccc000000000000000000000000000000000003", TokenID: "3", Quantity: "10", UnitSize: "5"},
	})
	if err != nil {
		t.Fatalf("build slots: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("slot count mismatch: %d", len(slots))
	}

	if slots[0].Class != vault.Fungible || slots[0].TokenID != nil {
		t.Fatalf("slot 0 mismatch: %+v", slots[0])
	}
	if slots[0].Remaining.Cmp(big.NewInt(100)) != 0 || slots[0].UnitSize.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("slot 0 amounts mismatch: %+v", slots[0])
	}
	if slots[1].Class != vault.NonFungible || slots[1].TokenID.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("slot 1 mismatch: %+v", slots[1])
	}
	if slots[2].Class != vault.SemiFungible || slots[2].TokenID.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("slot 2 mismatch: %+v", slots[2])
	}
}

func TestBuildSlotsRejectsBadInput(t *testing.T) {
	cases := []SlotConfig{
		{Class: "mystery", Token: "0xaaaa000000000000000000000000000000000001", Quantity: "1", UnitSize: "1"},
		{Class: "erc20", Token: "not-an-address", Quantity: "1", UnitSize: "1"},
		{Class: "erc20", Token: "0xaaaa000000000000000000000000000000000001", Quantity: "ten", UnitSize: "1"},
		{Class: "erc20", Token: "0xaaaa000000000000000000000000000000000001", Quantity: "1", UnitSize: ""},
		{Class: "erc721", Token: "0xbbbb000000000000000000000000000000000002", TokenID: "seven", Quantity: "1", UnitSize: "1"},
	}
	for i, sc := range cases {
		if _, err := BuildSlots([]SlotConfig{sc}); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, sc)
		}
	}
}

func TestParseAddresses(t *testing.T) {
	addrs, err := ParseAddresses([]string{
		" 0xaaaa000000000000000000000000000000000001 ",
		"0xBBBB000000000000000000000000000000000002",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("address count mismatch: %d", len(addrs))
	}

	if _, err := ParseAddresses([]string{"0x123"}); err == nil {
		t.Fatalf("expected short address to fail")
	}
}
