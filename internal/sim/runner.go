package sim

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rewardVault/internal/model"
	"rewardVault/internal/randomness"
	"rewardVault/internal/storage"
	"rewardVault/internal/vault"
)

// RunConfig holds runtime settings for a scripted lifecycle run.
type RunConfig struct {
	Requesters   []common.Address
	UnitsPerOpen uint64
	Proofs       map[common.Address][]common.Hash
}

// Runner drives the open -> deliver -> claim lifecycle for each requester
// and writes the emitted event records to storage.
type Runner struct {
	cfg      RunConfig
	vault    *vault.Vault
	oracle   *randomness.LocalOracle
	recorder *Recorder
	storage  storage.Storage
	logger   *zap.Logger
}

// NewRunner builds a Runner with its dependencies. The recorder must be the
// vault's emitter, otherwise the runner has nothing to flush.
func NewRunner(cfg RunConfig, v *vault.Vault, oracle *randomness.LocalOracle, recorder *Recorder, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		vault:    v,
		oracle:   oracle,
		recorder: recorder,
		storage:  storageSink,
		logger:   logger,
	}
}

// Run executes the scripted lifecycle.
func (r *Runner) Run(ctx context.Context) error {
	if r.vault == nil {
		return fmt.Errorf("vault is nil")
	}
	if r.oracle == nil {
		return fmt.Errorf("oracle is nil")
	}
	if r.recorder == nil {
		return fmt.Errorf("recorder is nil")
	}
	if r.cfg.UnitsPerOpen == 0 {
		return fmt.Errorf("units per open must be greater than zero")
	}
	if len(r.cfg.Requesters) == 0 {
		return fmt.Errorf("at least one requester is required")
	}

	for _, requester := range r.cfg.Requesters {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		paid := new(big.Int).Mul(r.vault.FeePerUnit(), new(big.Int).SetUint64(r.cfg.UnitsPerOpen))

		var id common.Hash
		var err error
		if r.vault.PrivateMode() {
			id, err = r.vault.OpenPrivate(ctx, requester, r.cfg.UnitsPerOpen, paid, r.cfg.Proofs[requester])
		} else {
			id, err = r.vault.OpenPublic(ctx, requester, r.cfg.UnitsPerOpen, paid)
		}
		if err != nil {
			return fmt.Errorf("open for %s: %w", requester.Hex(), err)
		}
		r.logger.Info("open accepted",
			zap.String("requester", requester.Hex()),
			zap.Uint64("units", r.cfg.UnitsPerOpen),
			zap.String("request_id", id.Hex()),
		)

		word := r.oracle.WordFor(id)
		if !r.vault.Deliver(id, word) {
			return fmt.Errorf("delivery dropped for %s", id.Hex())
		}

		picks, err := r.vault.Claim(ctx, requester)
		if err != nil {
			return fmt.Errorf("claim for %s: %w", requester.Hex(), err)
		}
		r.logger.Info("claim settled",
			zap.String("requester", requester.Hex()),
			zap.Int("picks", len(picks)),
			zap.Uint64("supply_left", r.vault.RemainingSupply()),
		)

		if err := r.flush(); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) flush() error {
	records := r.recorder.Drain()
	if r.storage == nil || len(records) == 0 {
		return nil
	}
	if err := r.storage.PutEventBatch(records); err != nil {
		return fmt.Errorf("store events: %w", err)
	}
	return nil
}

// SlotStates converts the vault's pool into persistable slot rows.
func SlotStates(slots []vault.AssetSlot) []model.SlotState {
	out := make([]model.SlotState, 0, len(slots))
	for i := range slots {
		s := &slots[i]
		state := model.SlotState{
			Slot:      i,
			Class:     s.Class.String(),
			Token:     s.Token.Hex(),
			Remaining: s.Remaining.String(),
			UnitSize:  s.UnitSize.String(),
		}
		if s.TokenID != nil {
			state.TokenID = s.TokenID.String()
		}
		out = append(out, state)
	}
	return out
}
