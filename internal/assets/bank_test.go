package assets

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"rewardVault/internal/vault"
)

var (
	tokenA = common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	nftB   = common.HexToAddress("0xbbbb000000000000000000000000000000000002")
	holder = common.HexToAddress("0x2000000000000000000000000000000000000001")
	other  = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func TestMintAndTransfer(t *testing.T) {
	bank := NewBank()
	bank.Mint(vault.Fungible, tokenA, nil, holder, big.NewInt(100))

	err := bank.TransferBatch(context.Background(), []vault.Transfer{
		{Class: vault.Fungible, Token: tokenA, From: holder, To: other, Quantity: big.NewInt(40)},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := bank.BalanceOf(vault.Fungible, tokenA, nil, holder); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("sender balance mismatch: %s", got)
	}
	if got := bank.BalanceOf(vault.Fungible, tokenA, nil, other); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("receiver balance mismatch: %s", got)
	}
}

func TestBatchIsAllOrNothing(t *testing.T) {
	bank := NewBank()
	bank.Mint(vault.Fungible, tokenA, nil, holder, big.NewInt(100))

	// The second transfer overdraws, so the first must not land either.
	err := bank.TransferBatch(context.Background(), []vault.Transfer{
		{Class: vault.Fungible, Token: tokenA, From: holder, To: other, Quantity: big.NewInt(40)},
		{Class: vault.Fungible, Token: tokenA, From: holder, To: other, Quantity: big.NewInt(70)},
	})
	if err == nil {
		t.Fatalf("expected overdraw to fail")
	}

	if got := bank.BalanceOf(vault.Fungible, tokenA, nil, holder); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("failed batch moved funds: holder has %s", got)
	}
	if got := bank.BalanceOf(vault.Fungible, tokenA, nil, other); got.Sign() != 0 {
		t.Fatalf("failed batch credited receiver: %s", got)
	}
}

func TestBatchSpendsEarlierCredits(t *testing.T) {
	bank := NewBank()
	bank.Mint(vault.Fungible, tokenA, nil, holder, big.NewInt(10))

	// The second leg spends what the first leg delivered.
	err := bank.TransferBatch(context.Background(), []vault.Transfer{
		{Class: vault.Fungible, Token: tokenA, From: holder, To: other, Quantity: big.NewInt(10)},
		{Class: vault.Fungible, Token: tokenA, From: other, To: holder, Quantity: big.NewInt(4)},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := bank.BalanceOf(vault.Fungible, tokenA, nil, other); got.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("receiver balance mismatch: %s", got)
	}
}

func TestNonFungibleQuantityRule(t *testing.T) {
	bank := NewBank()
	bank.Mint(vault.NonFungible, nftB, big.NewInt(7), holder, big.NewInt(1))

	err := bank.TransferBatch(context.Background(), []vault.Transfer{
		{Class: vault.NonFungible, Token: nftB, TokenID: big.NewInt(7), From: holder, To: other, Quantity: big.NewInt(2)},
	})
	if err == nil {
		t.Fatalf("expected non-fungible quantity 2 to fail")
	}

	err = bank.TransferBatch(context.Background(), []vault.Transfer{
		{Class: vault.NonFungible, Token: nftB, TokenID: big.NewInt(7), From: holder, To: other, Quantity: big.NewInt(1)},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := bank.BalanceOf(vault.NonFungible, nftB, big.NewInt(7), other); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("nft not delivered: %s", got)
	}
}

func TestRejectsNonPositiveQuantity(t *testing.T) {
	bank := NewBank()
	bank.Mint(vault.Fungible, tokenA, nil, holder, big.NewInt(10))

	for _, qty := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
		err := bank.TransferBatch(context.Background(), []vault.Transfer{
			{Class: vault.Fungible, Token: tokenA, From: holder, To: other, Quantity: qty},
		})
		if err == nil {
			t.Fatalf("expected quantity %v to fail", qty)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	bank := NewBank()
	bank.Mint(vault.Fungible, tokenA, nil, holder, big.NewInt(55))
	bank.Mint(vault.NonFungible, nftB, big.NewInt(7), other, big.NewInt(1))

	restored, err := RestoreBank(bank.Snapshot())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := restored.BalanceOf(vault.Fungible, tokenA, nil, holder); got.Cmp(big.NewInt(55)) != 0 {
		t.Fatalf("fungible balance mismatch: %s", got)
	}
	if got := restored.BalanceOf(vault.NonFungible, nftB, big.NewInt(7), other); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("nft balance mismatch: %s", got)
	}

	if _, err := RestoreBank(map[string]string{"bad": "xyz"}); err == nil {
		t.Fatalf("expected malformed snapshot to fail")
	}
}
