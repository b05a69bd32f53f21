package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "vault",
		Short:        "Reward-distribution vault lifecycle tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	supplyCmd := &cobra.Command{
		Use:   "supply",
		Short: "Validate the configured pool and print its open supply",
		RunE:  runSupply,
	}
	supplyCmd.Flags().Uint64("batch-size", 1, "reward units granted per open")
	supplyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(supplyCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the vault state file and take custody of the pool",
		RunE:  runInit,
	}
	initCmd.Flags().String("owner", "", "owner address")
	initCmd.Flags().String("funder", "", "address funding the pool")
	initCmd.Flags().String("vault-address", "", "vault custody address")
	initCmd.Flags().Uint64("batch-size", 1, "reward units granted per open")
	initCmd.Flags().String("fee-per-unit", "0", "fee per opened unit (wei)")
	initCmd.Flags().Int64("open-start", 0, "opening window start (unix seconds)")
	initCmd.Flags().String("oracle-seed", "", "seed for the local oracle (empty means uuid ids)")
	initCmd.Flags().String("state-file", "./data/vault_state.json", "state file path")
	initCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(initCmd)

	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open reward units against the pool",
		RunE:  runOpen,
	}
	openCmd.Flags().String("requester", "", "requester address")
	openCmd.Flags().Uint64("units", 1, "units to open")
	openCmd.Flags().String("value", "", "fee value paid (wei, defaults to the exact fee)")
	openCmd.Flags().String("state-file", "./data/vault_state.json", "state file path")
	openCmd.Flags().String("out", "./data/vault_events.jsonl", "event output JSONL path")
	openCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(openCmd)

	deliverCmd := &cobra.Command{
		Use:   "deliver",
		Short: "Deliver oracle randomness for a pending request",
		RunE:  runDeliver,
	}
	deliverCmd.Flags().String("request-id", "", "oracle request id")
	deliverCmd.Flags().String("word", "", "random word (hex, defaults to the local oracle's word)")
	deliverCmd.Flags().String("state-file", "./data/vault_state.json", "state file path")
	deliverCmd.Flags().String("out", "./data/vault_events.jsonl", "event output JSONL path")
	deliverCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(deliverCmd)

	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim a fulfilled request and transfer rewards",
		RunE:  runClaim,
	}
	claimCmd.Flags().String("requester", "", "requester address")
	claimCmd.Flags().String("state-file", "./data/vault_state.json", "state file path")
	claimCmd.Flags().String("out", "./data/vault_events.jsonl", "event output JSONL path")
	claimCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(claimCmd)

	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Print the pool state, optionally annotated with token metadata",
		RunE:  runPool,
	}
	poolCmd.Flags().String("rpc", "", "RPC URL for token metadata annotation")
	poolCmd.Flags().String("state-file", "./data/vault_state.json", "state file path")
	poolCmd.Flags().Int("max-retries", 5, "maximum retry attempts for metadata calls")
	poolCmd.Flags().Duration("retry-backoff", 0, "initial retry backoff for metadata calls")
	poolCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(poolCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a full open/deliver/claim lifecycle in memory",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().Uint64("units-per-open", 1, "units each requester opens")
	simulateCmd.Flags().Uint64("batch-size", 1, "reward units granted per open")
	simulateCmd.Flags().String("fee-per-unit", "0", "fee per opened unit (wei)")
	simulateCmd.Flags().String("oracle-seed", "", "seed for the local oracle")
	simulateCmd.Flags().String("out", "./data/vault_events.jsonl", "event output JSONL path")
	simulateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	simulateCmd.Flags().String("run-name", "default", "name for Postgres run state")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(simulateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
