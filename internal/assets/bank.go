package assets

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rewardVault/internal/vault"
)

// Bank is an in-memory implementation of the asset-transfer capability,
// backing the CLI lifecycle and the tests. Balances are tracked per asset
// per holder; non-fungible assets are balances capped at one.
type Bank struct {
	balances map[string]*big.Int
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[string]*big.Int)}
}

func assetKey(class vault.AssetClass, token common.Address, tokenID *big.Int, holder common.Address) string {
	id := ""
	if tokenID != nil {
		id = tokenID.String()
	}
	return fmt.Sprintf("%d/%s/%s/%s", uint8(class), token.Hex(), id, holder.Hex())
}

// Mint credits a holder, used to seed pools and fee payers.
func (b *Bank) Mint(class vault.AssetClass, token common.Address, tokenID *big.Int, holder common.Address, quantity *big.Int) {
	key := assetKey(class, token, tokenID, holder)
	if bal, ok := b.balances[key]; ok {
		bal.Add(bal, quantity)
		return
	}
	b.balances[key] = new(big.Int).Set(quantity)
}

// BalanceOf returns the holder's balance for an asset.
func (b *Bank) BalanceOf(class vault.AssetClass, token common.Address, tokenID *big.Int, holder common.Address) *big.Int {
	if bal, ok := b.balances[assetKey(class, token, tokenID, holder)]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// TransferBatch implements vault.Transferor. The whole batch is applied to a
// working copy first, so a failing transfer anywhere leaves every balance
// untouched.
func (b *Bank) TransferBatch(_ context.Context, batch []vault.Transfer) error {
	work := make(map[string]*big.Int, len(b.balances))
	for key, bal := range b.balances {
		work[key] = new(big.Int).Set(bal)
	}

	for i, t := range batch {
		if t.Quantity == nil || t.Quantity.Sign() <= 0 {
			return fmt.Errorf("transfer %d: non-positive quantity", i)
		}
		if t.Class == vault.NonFungible && t.Quantity.Cmp(big.NewInt(1)) != 0 {
			return fmt.Errorf("transfer %d: non-fungible quantity must be one", i)
		}

		fromKey := assetKey(t.Class, t.Token, t.TokenID, t.From)
		bal, ok := work[fromKey]
		if !ok || bal.Cmp(t.Quantity) < 0 {
			return fmt.Errorf("transfer %d: %s holds %s of %s, needs %s",
				i, t.From.Hex(), balString(bal), t.Token.Hex(), t.Quantity)
		}
		bal.Sub(bal, t.Quantity)

		toKey := assetKey(t.Class, t.Token, t.TokenID, t.To)
		if toBal, ok := work[toKey]; ok {
			toBal.Add(toBal, t.Quantity)
		} else {
			work[toKey] = new(big.Int).Set(t.Quantity)
		}
	}

	b.balances = work
	return nil
}

func balString(b *big.Int) string {
	if b == nil {
		return "0"
	}
	return b.String()
}

// Snapshot returns the bank's balances in JSON form. Zero balances are
// dropped.
func (b *Bank) Snapshot() map[string]string {
	out := make(map[string]string, len(b.balances))
	for key, bal := range b.balances {
		if bal.Sign() == 0 {
			continue
		}
		out[key] = bal.String()
	}
	return out
}

// RestoreBank rebuilds a bank from a snapshot.
func RestoreBank(snap map[string]string) (*Bank, error) {
	b := NewBank()
	for key, val := range snap {
		bal, ok := new(big.Int).SetString(val, 10)
		if !ok {
			return nil, fmt.Errorf("bank snapshot: invalid balance %q for %s", val, key)
		}
		b.balances[key] = bal
	}
	return b, nil
}
