package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetClass identifies the transfer shape of a pool slot.
type AssetClass uint8

const (
	Fungible AssetClass = iota
	NonFungible
	SemiFungible
)

// String returns the canonical lowercase name of the class.
func (c AssetClass) String() string {
	switch c {
	case Fungible:
		return "fungible"
	case NonFungible:
		return "non_fungible"
	case SemiFungible:
		return "semi_fungible"
	default:
		return fmt.Sprintf("asset_class(%d)", uint8(c))
	}
}

// Valid reports whether the class is one of the supported values.
func (c AssetClass) Valid() bool {
	switch c {
	case Fungible, NonFungible, SemiFungible:
		return true
	default:
		return false
	}
}

// ParseAssetClass maps a config string to an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	switch s {
	case "fungible", "erc20":
		return Fungible, nil
	case "non_fungible", "erc721":
		return NonFungible, nil
	case "semi_fungible", "erc1155":
		return SemiFungible, nil
	default:
		return 0, fmt.Errorf("unknown asset class %q", s)
	}
}

// AssetSlot is one configured asset line item in the pool. Remaining is
// always an exact multiple of UnitSize; for NonFungible slots UnitSize is 1
// and Remaining is 0 or 1. Slots persist at zero quantity.
type AssetSlot struct {
	Class     AssetClass
	Token     common.Address
	TokenID   *big.Int
	Remaining *big.Int
	UnitSize  *big.Int
}

// Clone returns a deep copy so callers can mutate it without touching the
// stored slot.
func (s *AssetSlot) Clone() AssetSlot {
	clone := *s
	if s.TokenID != nil {
		clone.TokenID = new(big.Int).Set(s.TokenID)
	}
	if s.Remaining != nil {
		clone.Remaining = new(big.Int).Set(s.Remaining)
	}
	if s.UnitSize != nil {
		clone.UnitSize = new(big.Int).Set(s.UnitSize)
	}
	return clone
}

// Units returns the slot's remaining reward-unit count. The slot must have
// passed ComputeSupply validation first.
func (s *AssetSlot) Units() uint64 {
	if s.Remaining == nil || s.UnitSize == nil || s.UnitSize.Sign() == 0 {
		return 0
	}
	return new(big.Int).Div(s.Remaining, s.UnitSize).Uint64()
}

func cloneSlots(slots []AssetSlot) []AssetSlot {
	out := make([]AssetSlot, len(slots))
	for i := range slots {
		out[i] = slots[i].Clone()
	}
	return out
}

// Pick is one allocated reward unit.
type Pick struct {
	Slot     int
	Class    AssetClass
	Token    common.Address
	TokenID  *big.Int
	Quantity *big.Int
}

// OpenRequest is the pending entry for a requester. Fulfilled distinguishes
// a delivered zero word from an undelivered request, so zero randomness is a
// legal oracle output.
type OpenRequest struct {
	Requester  common.Address
	Units      uint64
	RequestID  common.Hash
	Randomness common.Hash
	Fulfilled  bool
}

// Clone returns a copy of the request.
func (r *OpenRequest) Clone() *OpenRequest {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
