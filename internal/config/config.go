package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SlotConfig describes one pool slot as written in the config file.
type SlotConfig struct {
	Class    string `mapstructure:"class"`
	Token    string `mapstructure:"token"`
	TokenID  string `mapstructure:"token_id"`
	Quantity string `mapstructure:"quantity"`
	UnitSize string `mapstructure:"unit_size"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	StateFile    string
	Out          string
	PGDSN        string
	RPCURL       string
	LogLevel     string
	Owner        string
	Funder       string
	VaultAddress string
	BatchSize    uint64
	FeePerUnit   string
	OpenStart    int64
	OracleSeed   string
	UnitsPerOpen uint64
	RunName      string
	Whitelist    []string
	Requesters   []string
	Slots        []SlotConfig
	MaxRetries   int
	RetryBackoff time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("state-file", "./data/vault_state.json")
	v.SetDefault("out", "./data/vault_events.jsonl")
	v.SetDefault("batch-size", uint64(1))
	v.SetDefault("fee-per-unit", "0")
	v.SetDefault("units-per-open", uint64(1))
	v.SetDefault("run-name", "default")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		StateFile:    v.GetString("state-file"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		RPCURL:       v.GetString("rpc"),
		LogLevel:     v.GetString("log-level"),
		Owner:        v.GetString("owner"),
		Funder:       v.GetString("funder"),
		VaultAddress: v.GetString("vault-address"),
		BatchSize:    v.GetUint64("batch-size"),
		FeePerUnit:   v.GetString("fee-per-unit"),
		OpenStart:    v.GetInt64("open-start"),
		OracleSeed:   v.GetString("oracle-seed"),
		UnitsPerOpen: v.GetUint64("units-per-open"),
		RunName:      v.GetString("run-name"),
		Whitelist:    getStringSlice(v, "whitelist"),
		Requesters:   getStringSlice(v, "requesters"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
	}

	if v.IsSet("slots") {
		if err := v.UnmarshalKey("slots", &cfg.Slots); err != nil {
			return Config{}, fmt.Errorf("parse slots: %w", err)
		}
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
