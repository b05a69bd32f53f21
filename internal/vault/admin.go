package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SetFeePerUnit replaces the per-unit open fee. Owner only.
func (v *Vault) SetFeePerUnit(caller common.Address, fee *big.Int) error {
	if caller != v.owner {
		return ErrUnauthorized
	}
	if fee == nil {
		fee = big.NewInt(0)
	}
	v.feePerUnit = new(big.Int).Set(fee)
	return nil
}

// SetOpeningStart moves the opening window start. Owner only.
func (v *Vault) SetOpeningStart(caller common.Address, start int64) error {
	if caller != v.owner {
		return ErrUnauthorized
	}
	v.openStart = start
	return nil
}

// SetEligibilityRoot rotates the whitelist root; nil switches the vault to
// public mode. Owner only.
func (v *Vault) SetEligibilityRoot(caller common.Address, root *common.Hash) error {
	if caller != v.owner {
		return ErrUnauthorized
	}
	v.gate.SetRoot(root)
	return nil
}

// WithdrawFees drains the treasury accumulator and returns the amount. Owner
// only.
func (v *Vault) WithdrawFees(caller common.Address) (*big.Int, error) {
	if caller != v.owner {
		return nil, ErrUnauthorized
	}
	out := v.collectedFees
	v.collectedFees = big.NewInt(0)
	return out, nil
}
