package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rewardVault/internal/randomness"
)

// SlotSnapshot is the JSON form of one slot.
type SlotSnapshot struct {
	Class     string `json:"class"`
	Token     string `json:"token"`
	TokenID   string `json:"token_id,omitempty"`
	Remaining string `json:"remaining"`
	UnitSize  string `json:"unit_size"`
}

// RequestSnapshot is the JSON form of one pending request.
type RequestSnapshot struct {
	Requester  string `json:"requester"`
	Units      uint64 `json:"units"`
	RequestID  string `json:"request_id"`
	Randomness string `json:"randomness,omitempty"`
	Fulfilled  bool   `json:"fulfilled"`
}

// Snapshot captures the whole vault state, including the bridge's
// outstanding request-id index, for persistence across CLI invocations.
type Snapshot struct {
	Owner           string            `json:"owner"`
	Funder          string            `json:"funder"`
	Address         string            `json:"address"`
	BatchSize       uint64            `json:"batch_size"`
	RemainingSupply uint64            `json:"remaining_supply"`
	FeePerUnit      string            `json:"fee_per_unit"`
	CollectedFees   string            `json:"collected_fees"`
	OpenStart       int64             `json:"open_start"`
	Root            string            `json:"root,omitempty"`
	Slots           []SlotSnapshot    `json:"slots"`
	Requests        []RequestSnapshot `json:"requests"`
	BridgeIndex     map[string]string `json:"bridge_index"`
}

// Snapshot serializes the vault state.
func (v *Vault) Snapshot() Snapshot {
	snap := Snapshot{
		Owner:           v.owner.Hex(),
		Funder:          v.funder.Hex(),
		Address:         v.address.Hex(),
		BatchSize:       v.batchSize,
		RemainingSupply: v.remainingSupply,
		FeePerUnit:      v.feePerUnit.String(),
		CollectedFees:   v.collectedFees.String(),
		OpenStart:       v.openStart,
		Slots:           make([]SlotSnapshot, 0, len(v.slots)),
		Requests:        make([]RequestSnapshot, 0, len(v.requests)),
		BridgeIndex:     make(map[string]string),
	}
	if root := v.gate.Root(); root != nil {
		snap.Root = root.Hex()
	}
	for i := range v.slots {
		s := &v.slots[i]
		slot := SlotSnapshot{
			Class:     s.Class.String(),
			Token:     s.Token.Hex(),
			Remaining: s.Remaining.String(),
			UnitSize:  s.UnitSize.String(),
		}
		if s.TokenID != nil {
			slot.TokenID = s.TokenID.String()
		}
		snap.Slots = append(snap.Slots, slot)
	}
	for _, req := range v.requests {
		rs := RequestSnapshot{
			Requester: req.Requester.Hex(),
			Units:     req.Units,
			RequestID: req.RequestID.Hex(),
			Fulfilled: req.Fulfilled,
		}
		if req.Fulfilled {
			rs.Randomness = req.Randomness.Hex()
		}
		snap.Requests = append(snap.Requests, rs)
	}
	for id, requester := range v.bridge.Entries() {
		snap.BridgeIndex[id.Hex()] = requester.Hex()
	}
	return snap
}

// Restore rebuilds a vault from a snapshot without re-taking custody. The
// bridge's outstanding index is restored alongside the pending requests.
func Restore(snap Snapshot, bridge *randomness.Bridge, transfer Transferor, emitter Emitter) (*Vault, error) {
	if bridge == nil {
		return nil, fmt.Errorf("vault: randomness bridge is required")
	}
	if transfer == nil {
		return nil, fmt.Errorf("vault: transfer capability is required")
	}

	cfg := Config{
		Owner:     common.HexToAddress(snap.Owner),
		Funder:    common.HexToAddress(snap.Funder),
		Address:   common.HexToAddress(snap.Address),
		BatchSize: snap.BatchSize,
		OpenStart: snap.OpenStart,
	}
	if snap.Root != "" {
		root := common.HexToHash(snap.Root)
		cfg.Root = &root
	}

	slots := make([]AssetSlot, 0, len(snap.Slots))
	for i, s := range snap.Slots {
		class, err := ParseAssetClass(s.Class)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		remaining, err := parseBig(s.Remaining)
		if err != nil {
			return nil, fmt.Errorf("slot %d remaining: %w", i, err)
		}
		unitSize, err := parseBig(s.UnitSize)
		if err != nil {
			return nil, fmt.Errorf("slot %d unit size: %w", i, err)
		}
		slot := AssetSlot{
			Class:     class,
			Token:     common.HexToAddress(s.Token),
			Remaining: remaining,
			UnitSize:  unitSize,
		}
		if s.TokenID != "" {
			id, err := parseBig(s.TokenID)
			if err != nil {
				return nil, fmt.Errorf("slot %d token id: %w", i, err)
			}
			slot.TokenID = id
		}
		slots = append(slots, slot)
	}
	cfg.Slots = slots

	fee, err := parseBig(snap.FeePerUnit)
	if err != nil {
		return nil, fmt.Errorf("fee per unit: %w", err)
	}
	cfg.FeePerUnit = fee

	v := newVault(cfg, bridge, nil, transfer, emitter)
	v.remainingSupply = snap.RemainingSupply

	collected, err := parseBig(snap.CollectedFees)
	if err != nil {
		return nil, fmt.Errorf("collected fees: %w", err)
	}
	v.collectedFees = collected

	for _, rs := range snap.Requests {
		req := &OpenRequest{
			Requester: common.HexToAddress(rs.Requester),
			Units:     rs.Units,
			RequestID: common.HexToHash(rs.RequestID),
			Fulfilled: rs.Fulfilled,
		}
		if rs.Fulfilled {
			req.Randomness = common.HexToHash(rs.Randomness)
		}
		v.requests[req.Requester] = req
	}

	index := make(map[common.Hash]common.Address, len(snap.BridgeIndex))
	for id, requester := range snap.BridgeIndex {
		index[common.HexToHash(id)] = common.HexToAddress(requester)
	}
	bridge.Restore(index)

	return v, nil
}

func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	out, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return out, nil
}
