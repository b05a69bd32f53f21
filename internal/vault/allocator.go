package vault

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Allocate draws count reward units from slots without replacement and
// mutates slots in place as it goes. Each draw hashes (seed, i) and reduces
// the result modulo the units still remaining at that iteration, so
// uniformity holds over the current pool, not the original one. The walk
// order over slots is the configured slot order and never changes.
//
// Callers guarantee count does not exceed the remaining unit total; the
// supply check at open time reserves eagerly, so this only trips on a
// programming error upstream.
func Allocate(seed common.Hash, count uint64, slots []AssetSlot) ([]Pick, error) {
	remaining := remainingUnits(slots)
	if count > remaining {
		return nil, fmt.Errorf("%w: allocate %d of %d units", ErrSupplyExceeded, count, remaining)
	}

	picks := make([]Pick, 0, count)
	for i := uint64(0); i < count; i++ {
		target := drawIndex(seed, i, remaining)

		var cum uint64
		for j := range slots {
			units := slots[j].Units()
			if units == 0 {
				continue
			}
			cum += units
			if target < cum {
				slots[j].Remaining.Sub(slots[j].Remaining, slots[j].UnitSize)
				picks = append(picks, Pick{
					Slot:     j,
					Class:    slots[j].Class,
					Token:    slots[j].Token,
					TokenID:  slots[j].TokenID,
					Quantity: new(big.Int).Set(slots[j].UnitSize),
				})
				break
			}
		}
		remaining--
	}
	return picks, nil
}

// drawIndex derives the i-th draw from the seed: keccak256(seed || uint256(i))
// reduced modulo the live unit count. The counter makes every per-unit hash
// input distinct for a single seed.
func drawIndex(seed common.Hash, i, mod uint64) uint64 {
	var counter [32]byte
	binary.BigEndian.PutUint64(counter[24:], i)
	h := crypto.Keccak256Hash(seed[:], counter[:])
	return new(big.Int).Mod(h.Big(), new(big.Int).SetUint64(mod)).Uint64()
}
