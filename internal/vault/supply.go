package vault

import (
	"fmt"
	"math/big"
)

// ComputeSupply validates the pool partition and returns the number of opens
// the pool supports: sum over slots of remaining/unitSize, divided by
// batchSize. It is pure; callers use it both at construction and to check
// candidate pool configurations.
func ComputeSupply(slots []AssetSlot, batchSize uint64) (uint64, error) {
	if batchSize == 0 {
		return 0, fmt.Errorf("%w: batch size is zero", ErrInvalidSupply)
	}
	if len(slots) == 0 {
		return 0, ErrEmptyPool
	}

	var total uint64
	for i := range slots {
		units, err := slotUnits(&slots[i])
		if err != nil {
			return 0, fmt.Errorf("slot %d: %w", i, err)
		}
		total += units
	}

	if total%batchSize != 0 {
		return 0, fmt.Errorf("%w: %d units, batch size %d", ErrInvalidSupply, total, batchSize)
	}
	return total / batchSize, nil
}

func slotUnits(s *AssetSlot) (uint64, error) {
	if !s.Class.Valid() {
		return 0, fmt.Errorf("%w: class %d", ErrInvalidUnitSize, uint8(s.Class))
	}
	if s.Remaining == nil || s.Remaining.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	if s.UnitSize == nil || s.UnitSize.Sign() <= 0 {
		return 0, fmt.Errorf("%w: unit size is zero", ErrInvalidUnitSize)
	}
	if s.Class == NonFungible {
		if s.UnitSize.Cmp(big.NewInt(1)) != 0 || s.Remaining.Cmp(big.NewInt(1)) != 0 {
			return 0, fmt.Errorf("%w: non-fungible slot must hold exactly one", ErrInvalidUnitSize)
		}
		return 1, nil
	}

	units, rem := new(big.Int).DivMod(s.Remaining, s.UnitSize, new(big.Int))
	if rem.Sign() != 0 {
		return 0, fmt.Errorf("%w: %s not a multiple of %s", ErrInvalidUnitSize, s.Remaining, s.UnitSize)
	}
	if !units.IsUint64() {
		return 0, fmt.Errorf("%w: unit count overflows", ErrInvalidUnitSize)
	}
	return units.Uint64(), nil
}

// remainingUnits sums the per-slot reward-unit counts of an already-validated
// pool. Depleted slots contribute zero.
func remainingUnits(slots []AssetSlot) uint64 {
	var total uint64
	for i := range slots {
		total += slots[i].Units()
	}
	return total
}
