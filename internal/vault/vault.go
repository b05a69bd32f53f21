package vault

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"rewardVault/internal/eligibility"
	"rewardVault/internal/randomness"
)

// Transfer is one asset movement handed to the transfer capability.
type Transfer struct {
	Class    AssetClass
	Token    common.Address
	TokenID  *big.Int
	From     common.Address
	To       common.Address
	Quantity *big.Int
}

// Transferor is the external asset-transfer capability. A batch is
// all-or-nothing: either every transfer lands or the implementation returns
// an error having moved nothing.
type Transferor interface {
	TransferBatch(ctx context.Context, batch []Transfer) error
}

// Config describes a vault at construction time.
type Config struct {
	Owner      common.Address
	Funder     common.Address
	Address    common.Address
	Slots      []AssetSlot
	BatchSize  uint64
	FeePerUnit *big.Int
	OpenStart  int64
	Root       *common.Hash
}

// Vault custodies the reward pool and runs the open/fulfill/claim lifecycle.
// The host serializes calls; there is no internal locking.
type Vault struct {
	owner           common.Address
	funder          common.Address
	address         common.Address
	slots           []AssetSlot
	batchSize       uint64
	remainingSupply uint64
	feePerUnit      *big.Int
	collectedFees   *big.Int
	openStart       int64

	requests map[common.Address]*OpenRequest

	bridge   *randomness.Bridge
	gate     *eligibility.Gate
	transfer Transferor
	emitter  Emitter
	nowFn    func() int64
}

// New validates the pool partition, takes custody of every slot from the
// funder, and returns the live vault. Validation runs before any transfer,
// so a bad configuration never moves assets; a failed custody batch moves
// nothing either.
func New(ctx context.Context, cfg Config, bridge *randomness.Bridge, gate *eligibility.Gate, transfer Transferor, emitter Emitter) (*Vault, error) {
	supply, err := ComputeSupply(cfg.Slots, cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	if bridge == nil {
		return nil, fmt.Errorf("vault: randomness bridge is required")
	}
	if transfer == nil {
		return nil, fmt.Errorf("vault: transfer capability is required")
	}

	v := newVault(cfg, bridge, gate, transfer, emitter)
	v.remainingSupply = supply

	custody := make([]Transfer, 0, len(v.slots))
	for i := range v.slots {
		custody = append(custody, Transfer{
			Class:    v.slots[i].Class,
			Token:    v.slots[i].Token,
			TokenID:  v.slots[i].TokenID,
			From:     cfg.Funder,
			To:       cfg.Address,
			Quantity: new(big.Int).Set(v.slots[i].Remaining),
		})
	}
	if err := transfer.TransferBatch(ctx, custody); err != nil {
		return nil, fmt.Errorf("take custody: %w", err)
	}
	return v, nil
}

func newVault(cfg Config, bridge *randomness.Bridge, gate *eligibility.Gate, transfer Transferor, emitter Emitter) *Vault {
	if gate == nil {
		gate = eligibility.NewGate(nil, cfg.Root)
	}
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	fee := big.NewInt(0)
	if cfg.FeePerUnit != nil {
		fee = new(big.Int).Set(cfg.FeePerUnit)
	}
	return &Vault{
		owner:         cfg.Owner,
		funder:        cfg.Funder,
		address:       cfg.Address,
		slots:         cloneSlots(cfg.Slots),
		batchSize:     cfg.BatchSize,
		feePerUnit:    fee,
		collectedFees: big.NewInt(0),
		openStart:     cfg.OpenStart,
		requests:      make(map[common.Address]*OpenRequest),
		bridge:        bridge,
		gate:          gate,
		transfer:      transfer,
		emitter:       emitter,
		nowFn:         func() int64 { return time.Now().Unix() },
	}
}

// SetNowFunc overrides the time source; tests use it for deterministic
// opening windows. Passing nil restores the wall clock.
func (v *Vault) SetNowFunc(now func() int64) {
	if now == nil {
		v.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	v.nowFn = now
}

// OpenPublic opens units against the pool in public mode.
func (v *Vault) OpenPublic(ctx context.Context, requester common.Address, units uint64, paid *big.Int) (common.Hash, error) {
	if v.gate.PrivateMode() {
		return common.Hash{}, ErrNotAllowed
	}
	return v.open(ctx, requester, units, paid)
}

// OpenPrivate opens units in private mode; the proof must connect the
// requester to the whitelist root.
func (v *Vault) OpenPrivate(ctx context.Context, requester common.Address, units uint64, paid *big.Int, proof []common.Hash) (common.Hash, error) {
	if !v.gate.PrivateMode() {
		return common.Hash{}, ErrNotAllowed
	}
	if !v.gate.IsEligible(requester, proof) {
		return common.Hash{}, ErrNotEligible
	}
	return v.open(ctx, requester, units, paid)
}

// open runs the request-acceptance checks in ledger order, issues the
// randomness request, and only then reserves supply and records the pending
// entry. An oracle failure therefore leaves the ledger untouched.
func (v *Vault) open(ctx context.Context, requester common.Address, units uint64, paid *big.Int) (common.Hash, error) {
	if _, exists := v.requests[requester]; exists {
		return common.Hash{}, ErrPendingOpenRequest
	}
	if v.nowFn() < v.openStart {
		return common.Hash{}, ErrOpeningNotStarted
	}
	if units == 0 {
		return common.Hash{}, ErrZeroAmount
	}
	if units > v.remainingSupply {
		return common.Hash{}, fmt.Errorf("%w: %d requested, %d available", ErrSupplyExceeded, units, v.remainingSupply)
	}
	required := new(big.Int).Mul(v.feePerUnit, new(big.Int).SetUint64(units))
	if paid == nil {
		paid = big.NewInt(0)
	}
	if paid.Cmp(required) < 0 {
		return common.Hash{}, fmt.Errorf("%w: need %s, got %s", ErrInsufficientValue, required, paid)
	}

	id, err := v.bridge.Request(ctx, requester)
	if err != nil {
		return common.Hash{}, err
	}

	v.remainingSupply -= units
	v.collectedFees.Add(v.collectedFees, paid)
	v.requests[requester] = &OpenRequest{
		Requester: requester,
		Units:     units,
		RequestID: id,
	}
	v.emitter.Emit(OpenRequested{Requester: requester, Units: units, RequestID: id})
	return id, nil
}

// Deliver consumes one oracle fulfillment. Unknown or already-consumed ids
// are dropped (the bridge logs them); a zero word is a legal delivery and
// marks the request fulfilled like any other.
func (v *Vault) Deliver(requestID, word common.Hash) bool {
	requester, ok := v.bridge.Resolve(requestID)
	if !ok {
		return false
	}
	req, ok := v.requests[requester]
	if !ok || req.RequestID != requestID {
		return false
	}
	req.Randomness = word
	req.Fulfilled = true
	v.emitter.Emit(OpenFulfilled{RequestID: requestID, Randomness: word})
	return true
}

// Claim converts the requester's fulfilled request into concrete transfers.
// Anyone may call it; rewards always flow to the requester. Allocation runs
// on a cloned slot arena and the ledger commits only after the transfer
// batch succeeds, so a rejected transfer leaves every ledger unchanged.
func (v *Vault) Claim(ctx context.Context, requester common.Address) ([]Pick, error) {
	req, ok := v.requests[requester]
	if !ok {
		return nil, ErrNoPendingRequest
	}
	if !req.Fulfilled {
		return nil, ErrRandomnessNotFulfilled
	}

	work := cloneSlots(v.slots)
	picks, err := Allocate(req.Randomness, req.Units*v.batchSize, work)
	if err != nil {
		return nil, err
	}

	if err := v.transfer.TransferBatch(ctx, v.payout(requester, picks)); err != nil {
		return nil, fmt.Errorf("claim transfers: %w", err)
	}

	v.slots = work
	delete(v.requests, requester)
	v.emitter.Emit(RewardsClaimed{Requester: requester, Units: req.Units, Picks: picks})
	return picks, nil
}

// payout folds picks into one transfer per touched slot, preserving slot
// order.
func (v *Vault) payout(to common.Address, picks []Pick) []Transfer {
	totals := make(map[int]*big.Int)
	order := make([]int, 0, len(picks))
	for _, p := range picks {
		if total, ok := totals[p.Slot]; ok {
			total.Add(total, p.Quantity)
			continue
		}
		totals[p.Slot] = new(big.Int).Set(p.Quantity)
		order = append(order, p.Slot)
	}

	batch := make([]Transfer, 0, len(order))
	for _, slot := range order {
		batch = append(batch, Transfer{
			Class:    v.slots[slot].Class,
			Token:    v.slots[slot].Token,
			TokenID:  v.slots[slot].TokenID,
			From:     v.address,
			To:       to,
			Quantity: totals[slot],
		})
	}
	return batch
}

// CanClaim reports whether the requester holds a fulfilled pending request.
func (v *Vault) CanClaim(requester common.Address) bool {
	req, ok := v.requests[requester]
	return ok && req.Fulfilled
}

// PendingRequest returns a copy of the requester's pending entry, if any.
func (v *Vault) PendingRequest(requester common.Address) (*OpenRequest, bool) {
	req, ok := v.requests[requester]
	if !ok {
		return nil, false
	}
	return req.Clone(), true
}

// PoolState returns a copy of the slot arena.
func (v *Vault) PoolState() []AssetSlot { return cloneSlots(v.slots) }

// RemainingSupply returns the opens still available after eager
// reservations.
func (v *Vault) RemainingSupply() uint64 { return v.remainingSupply }

// BatchSize returns the reward units granted per open.
func (v *Vault) BatchSize() uint64 { return v.batchSize }

// FeePerUnit returns the current per-unit open fee.
func (v *Vault) FeePerUnit() *big.Int { return new(big.Int).Set(v.feePerUnit) }

// PrivateMode reports whether opens are whitelist-gated.
func (v *Vault) PrivateMode() bool { return v.gate.PrivateMode() }

// CollectedFees returns the accrued treasury balance.
func (v *Vault) CollectedFees() *big.Int { return new(big.Int).Set(v.collectedFees) }

// Address returns the vault's custody account.
func (v *Vault) Address() common.Address { return v.address }
