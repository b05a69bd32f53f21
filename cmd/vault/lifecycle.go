package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rewardVault/internal/assets"
	"rewardVault/internal/chain"
	"rewardVault/internal/config"
	"rewardVault/internal/eligibility"
	"rewardVault/internal/randomness"
	"rewardVault/internal/sim"
	"rewardVault/internal/statefile"
	"rewardVault/internal/storage"
	"rewardVault/internal/vault"
)

// oracleParams is the request shape handed to the randomness oracle; the
// vault consumes a single word.
var oracleParams = randomness.RequestParams{
	KeyHash:          crypto.Keccak256Hash([]byte("rewardVault/oracle-key")),
	Confirmations:    3,
	CallbackGasLimit: 200_000,
	Words:            1,
}

func runSupply(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	slots, err := config.BuildSlots(cfg.Slots)
	if err != nil {
		return err
	}

	supply, err := vault.ComputeSupply(slots, cfg.BatchSize)
	if err != nil {
		return err
	}

	fmt.Printf("slots=%d batch_size=%d opens=%d\n", len(slots), cfg.BatchSize, supply)
	return nil
}

func runInit(cmd *cobra.Command, _ []string) error {
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

	slots, err := config.BuildSlots(cfg.Slots)
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
		Slots:      slots,
		BatchSize:  cfg.BatchSize,
		FeePerUnit: fee,
		OpenStart:  cfg.OpenStart,
	}

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
	}

	oracle := newOracle(cfg.OracleSeed)
	bridge := randomness.NewBridge(oracle, oracleParams, logger)

	bank := assets.NewBank()
	for i := range slots {
		bank.Mint(slots[i].Class, slots[i].Token, slots[i].TokenID, funder, slots[i].Remaining)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := vault.New(ctx, vcfg, bridge, nil, bank, nil)
	if err != nil {
		return err
	}

	store := statefile.NewStore(cfg.StateFile)
	if err := store.Save(statefile.State{
		Vault:  v.Snapshot(),
		Bank:   bank.Snapshot(),
		Oracle: oracle.Snapshot(),
	}); err != nil {
		return err
	}

	logger.Info("vault initialized",
		zap.String("state_file", cfg.StateFile),
		zap.Int("slots", len(slots)),
		zap.Uint64("opens", v.RemainingSupply()),
		zap.Bool("private_mode", v.PrivateMode()),
	)
	return nil
}

// lifecycle bundles the components restored from a state file.
type lifecycle struct {
	cfg      config.Config
	store    *statefile.Store
	vault    *vault.Vault
	bank     *assets.Bank
	oracle   *randomness.LocalOracle
	recorder *sim.Recorder
	logger   *zap.Logger
}

func loadLifecycle(cmd *cobra.Command) (*lifecycle, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store := statefile.NewStore(cfg.StateFile)
	state, ok, err := store.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no state file at %s, run init first", cfg.StateFile)
	}

	oracle := randomness.RestoreOracle(state.Oracle)
	bridge := randomness.NewBridge(oracle, oracleParams, logger)
	bank, err := assets.RestoreBank(state.Bank)
	if err != nil {
		return nil, err
	}
	recorder := sim.NewRecorderAt(state.LastSeq)

	v, err := vault.Restore(state.Vault, bridge, bank, recorder)
	if err != nil {
		return nil, err
	}

	return &lifecycle{
		cfg:      cfg,
		store:    store,
		vault:    v,
		bank:     bank,
		oracle:   oracle,
		recorder: recorder,
		logger:   logger,
	}, nil
}

func (l *lifecycle) save() error {
	records := l.recorder.Drain()
	if l.cfg.Out != "" && len(records) > 0 {
		if err := storage.NewJsonlStorage(l.cfg.Out).PutEventBatch(records); err != nil {
			return err
		}
	}
	return l.store.Save(statefile.State{
		Vault:   l.vault.Snapshot(),
		Bank:    l.bank.Snapshot(),
		Oracle:  l.oracle.Snapshot(),
		LastSeq: l.recorder.Seq(),
	})
}

func runOpen(cmd *cobra.Command, _ []string) error {
	l, err := loadLifecycle(cmd)
	if err != nil {
		return err
	}
	defer l.logger.Sync()

	requesterFlag, _ := cmd.Flags().GetString("requester")
	requester, err := config.ParseAddress(requesterFlag)
	if err != nil {
		return fmt.Errorf("requester: %w", err)
	}
	units, _ := cmd.Flags().GetUint64("units")

	paid := new(big.Int).Mul(l.vault.FeePerUnit(), new(big.Int).SetUint64(units))
	if valueFlag, _ := cmd.Flags().GetString("value"); valueFlag != "" {
		paid, err = parseWei(valueFlag)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var id common.Hash
	if l.vault.PrivateMode() {
		proof, err := whitelistProof(l.cfg, requester)
		if err != nil {
			return err
		}
		id, err = l.vault.OpenPrivate(ctx, requester, units, paid, proof)
		if err != nil {
			return err
		}
	} else {
		id, err = l.vault.OpenPublic(ctx, requester, units, paid)
		if err != nil {
			return err
		}
	}

	if err := l.save(); err != nil {
		return err
	}
	l.logger.Info("open accepted",
		zap.String("requester", requester.Hex()),
		zap.Uint64("units", units),
		zap.String("request_id", id.Hex()),
		zap.Uint64("supply_left", l.vault.RemainingSupply()),
	)
	return nil
}

// whitelistProof rebuilds the whitelist tree from config and proves the
// requester against it.
func whitelistProof(cfg config.Config, requester common.Address) ([]common.Hash, error) {
	if len(cfg.Whitelist) == 0 {
		return nil, fmt.Errorf("vault is in private mode but no whitelist is configured")
	}
	listed, err := config.ParseAddresses(cfg.Whitelist)
	if err != nil {
		return nil, fmt.Errorf("whitelist: %w", err)
	}
	tree, err := eligibility.NewTree(listed)
	if err != nil {
		return nil, err
	}
	return tree.ProofFor(requester)
}

func runDeliver(cmd *cobra.Command, _ []string) error {
	l, err := loadLifecycle(cmd)
	if err != nil {
		return err
	}
	defer l.logger.Sync()

	idFlag, _ := cmd.Flags().GetString("request-id")
	if strings.TrimSpace(idFlag) == "" {
		return fmt.Errorf("request-id is required")
	}
	id := common.HexToHash(idFlag)

	word := l.oracle.WordFor(id)
	if wordFlag, _ := cmd.Flags().GetString("word"); wordFlag != "" {
		word = common.HexToHash(wordFlag)
	}

	delivered := l.vault.Deliver(id, word)
	if err := l.save(); err != nil {
		return err
	}
	if !delivered {
		l.logger.Warn("delivery dropped", zap.String("request_id", id.Hex()))
		return nil
	}
	l.logger.Info("randomness delivered", zap.String("request_id", id.Hex()), zap.String("word", word.Hex()))
	return nil
}

func runClaim(cmd *cobra.Command, _ []string) error {
	l, err := loadLifecycle(cmd)
	if err != nil {
		return err
	}
	defer l.logger.Sync()

	requesterFlag, _ := cmd.Flags().GetString("requester")
	requester, err := config.ParseAddress(requesterFlag)
	if err != nil {
		return fmt.Errorf("requester: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	picks, err := l.vault.Claim(ctx, requester)
	if err != nil {
		return err
	}
	if err := l.save(); err != nil {
		return err
	}
	l.logger.Info("claim settled",
		zap.String("requester", requester.Hex()),
		zap.Int("picks", len(picks)),
		zap.Uint64("supply_left", l.vault.RemainingSupply()),
	)
	return nil
}

// poolRow is one line of pool output, optionally annotated with on-chain
// token metadata.
type poolRow struct {
	Slot      int               `json:"slot"`
	Class     string            `json:"class"`
	Token     string            `json:"token"`
	TokenID   string            `json:"token_id,omitempty"`
	Remaining string            `json:"remaining"`
	UnitSize  string            `json:"unit_size"`
	Meta      *assets.TokenMeta `json:"meta,omitempty"`
}

func runPool(cmd *cobra.Command, _ []string) error {
	l, err := loadLifecycle(cmd)
	if err != nil {
		return err
	}
	defer l.logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var chainClient *chain.Client
	if l.cfg.RPCURL != "" {
		chainClient, err = chain.NewClient(ctx, l.cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
	}

	rows := make([]poolRow, 0)
	for _, state := range sim.SlotStates(l.vault.PoolState()) {
		row := poolRow{
			Slot:      state.Slot,
			Class:     state.Class,
			Token:     state.Token,
			TokenID:   state.TokenID,
			Remaining: state.Remaining,
			UnitSize:  state.UnitSize,
		}
		if chainClient != nil && state.Class == vault.Fungible.String() {
			meta, err := assets.FetchTokenMeta(ctx, chainClient, common.HexToAddress(state.Token), l.cfg.MaxRetries, l.cfg.RetryBackoff, l.logger)
			if err != nil {
				l.logger.Warn("token metadata fetch failed", zap.String("token", state.Token), zap.Error(err))
			} else {
				row.Meta = &meta
			}
		}
		rows = append(rows, row)
	}

	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newOracle(seed string) *randomness.LocalOracle {
	if strings.TrimSpace(seed) == "" {
		return randomness.NewLocalOracle()
	}
	return randomness.NewSeededOracle(crypto.Keccak256Hash([]byte(seed)))
}

func parseWei(input string) (*big.Int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	out, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid wei amount %q", input)
	}
	return out, nil
}
