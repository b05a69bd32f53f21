package report

import (
	"fmt"
	"math/big"

	"rewardVault/internal/model"
	"rewardVault/internal/vault"
)

// Summary aggregates a run's event records into per-slot distribution totals.
type Summary struct {
	Opens       uint64
	Fulfilled   uint64
	Claims      uint64
	UnitsOpened uint64
	Distributed map[int]*big.Int
}

// Accumulate folds event records into a Summary. Records must carry the
// typed payloads the recorder produces.
func Accumulate(records []model.EventRecord) (*Summary, error) {
	s := &Summary{Distributed: make(map[int]*big.Int)}
	for _, record := range records {
		switch data := record.Decoded.(type) {
		case model.OpenRequestedData:
			s.Opens++
			s.UnitsOpened += data.Units
		case model.OpenFulfilledData:
			s.Fulfilled++
		case model.RewardsClaimedData:
			s.Claims++
			for _, pick := range data.Picks {
				qty, ok := new(big.Int).SetString(pick.Quantity, 10)
				if !ok {
					return nil, fmt.Errorf("record %d: invalid pick quantity %q", record.Seq, pick.Quantity)
				}
				if total, exists := s.Distributed[pick.Slot]; exists {
					total.Add(total, qty)
				} else {
					s.Distributed[pick.Slot] = qty
				}
			}
		default:
			return nil, fmt.Errorf("record %d: unknown payload %T", record.Seq, record.Decoded)
		}
	}
	return s, nil
}

// CheckConservation verifies that, slot by slot, the initial quantity equals
// what was distributed plus what remains. Any created or destroyed quantity
// is an engine bug.
func (s *Summary) CheckConservation(initial, final []vault.AssetSlot) error {
	if len(initial) != len(final) {
		return fmt.Errorf("slot count changed: %d -> %d", len(initial), len(final))
	}
	for i := range initial {
		distributed := s.Distributed[i]
		if distributed == nil {
			distributed = big.NewInt(0)
		}
		expect := new(big.Int).Add(final[i].Remaining, distributed)
		if expect.Cmp(initial[i].Remaining) != 0 {
			return fmt.Errorf("slot %d: started %s, remaining %s + distributed %s",
				i, initial[i].Remaining, final[i].Remaining, distributed)
		}
	}
	return nil
}
