package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rewardVault/internal/randomness"
	"rewardVault/internal/vault"
)

// State is everything the CLI lifecycle needs across invocations: the vault
// ledger, the bank balances, and the oracle's replay state.
type State struct {
	Vault     vault.Snapshot            `json:"vault"`
	Bank      map[string]string         `json:"bank"`
	Oracle    randomness.OracleSnapshot `json:"oracle"`
	LastSeq   uint64                    `json:"last_seq"`
	UpdatedAt string                    `json:"updated_at"`
}

// Store persists lifecycle state to disk.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the state file. The second return is false when no state file
// exists yet.
func (s *Store) Load() (State, bool, error) {
	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("stat state file: %w", err)
	}
	if stat.IsDir() {
		return State{}, false, fmt.Errorf("state path is a directory")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return State{}, false, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, false, fmt.Errorf("parse state file: %w", err)
	}

	return state, true, nil
}

// Save writes the state atomically via a temp file rename.
func (s *Store) Save(state State) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	state.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}

	return nil
}
