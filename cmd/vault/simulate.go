package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rewardVault/internal/assets"
	"rewardVault/internal/config"
	"rewardVault/internal/eligibility"
	"rewardVault/internal/model"
	"rewardVault/internal/randomness"
	"rewardVault/internal/report"
	"rewardVault/internal/sim"
	"rewardVault/internal/statefile"
	"rewardVault/internal/storage"
	"rewardVault/internal/storage/postgres"
	"rewardVault/internal/vault"
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	owner, err := config.ParseAddress(cfg.Owner)
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	funder, err := config.ParseAddress(cfg.Funder)
	if err != nil {
		return fmt.Errorf("funder: %w", err)
	}
	vaultAddr, err := config.ParseAddress(cfg.VaultAddress)
	if err != nil {
		return fmt.Errorf("vault address: %w", err)
	}

	initial, err := config.BuildSlots(cfg.Slots)
	if err != nil {
		return err
	}

	fee, err := parseWei(cfg.FeePerUnit)
	if err != nil {
		return fmt.Errorf("fee per unit: %w", err)
	}

	vcfg := vault.Config{
		Owner:      owner,
		Funder:     funder,
		Address:    vaultAddr,
		Slots:      initial,
		BatchSize:  cfg.BatchSize,
		FeePerUnit: fee,
		OpenStart:  cfg.OpenStart,
	}

	requesters, err := config.ParseAddresses(cfg.Requesters)
	if err != nil {
		return fmt.Errorf("requesters: %w", err)
	}
	proofs := make(map[common.Address][]common.Hash)

	if len(cfg.Whitelist) > 0 {
		listed, err := config.ParseAddresses(cfg.Whitelist)
		if err != nil {
			return fmt.Errorf("whitelist: %w", err)
		}
		tree, err := eligibility.NewTree(listed)
		if err != nil {
			return err
		}
		root := tree.Root()
		vcfg.Root = &root
		if len(requesters) == 0 {
			requesters = listed
		}
		for _, requester := range requesters {
			proof, err := tree.ProofFor(requester)
			if err != nil {
				return err
			}
			proofs[requester] = proof
		}
	}
	if len(requesters) == 0 {
		return fmt.Errorf("at least one requester is required")
	}

	oracle := newOracle(cfg.OracleSeed)
	bridge := randomness.NewBridge(oracle, oracleParams, logger)
	recorder := sim.NewRecorder()

	bank := assets.NewBank()
	for i := range initial {
		bank.Mint(initial[i].Class, initial[i].Token, initial[i].TokenID, funder, initial[i].Remaining)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := vault.New(ctx, vcfg, bridge, nil, bank, recorder)
	if err != nil {
		return err
	}

	memory := storage.NewMemory()
	sinks := []storage.Storage{memory}
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}

	var pgStore *postgres.Store
	if cfg.PGDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		sinks = append(sinks, pgSink{ctx: ctx, store: pgStore})
	}

	runner := sim.NewRunner(sim.RunConfig{
		Requesters:   requesters,
		UnitsPerOpen: cfg.UnitsPerOpen,
		Proofs:       proofs,
	}, v, oracle, recorder, storage.NewMulti(sinks...), logger)

	logger.Info("simulation start",
		zap.Int("requesters", len(requesters)),
		zap.Uint64("units_per_open", cfg.UnitsPerOpen),
		zap.Uint64("opens_available", v.RemainingSupply()),
		zap.Bool("private_mode", v.PrivateMode()),
	)

	if err := runner.Run(ctx); err != nil {
		return err
	}

	summary, err := report.Accumulate(memory.Records())
	if err != nil {
		return err
	}
	if err := summary.CheckConservation(initial, v.PoolState()); err != nil {
		return fmt.Errorf("conservation check: %w", err)
	}

	if pgStore != nil {
		if err := pgStore.UpsertSlotStates(ctx, sim.SlotStates(v.PoolState())); err != nil {
			return fmt.Errorf("persist slot states: %w", err)
		}
		if err := pgStore.SaveState(ctx, cfg.RunName, recorder.Seq()); err != nil {
			return fmt.Errorf("persist run state: %w", err)
		}
	}

	if cfg.StateFile != "" {
		store := statefile.NewStore(cfg.StateFile)
		if err := store.Save(statefile.State{
			Vault:   v.Snapshot(),
			Bank:    bank.Snapshot(),
			Oracle:  oracle.Snapshot(),
			LastSeq: recorder.Seq(),
		}); err != nil {
			return err
		}
	}

	logger.Info("simulation complete",
		zap.Uint64("opens", summary.Opens),
		zap.Uint64("claims", summary.Claims),
		zap.Uint64("units_opened", summary.UnitsOpened),
		zap.Uint64("supply_left", v.RemainingSupply()),
		zap.String("fees_collected", v.CollectedFees().String()),
	)
	return nil
}

// pgSink adapts the Postgres store to the event sink interface.
type pgSink struct {
	ctx   context.Context
	store *postgres.Store
}

func (s pgSink) PutEventBatch(events []model.EventRecord) error {
	return s.store.InsertEvents(s.ctx, events)
}
