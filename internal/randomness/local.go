package randomness

import (
	"context"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// LocalOracle is an in-process stand-in for the external randomness oracle,
// used by the CLI lifecycle and the tests. With a seed it issues ids and
// words from a deterministic keccak chain so whole runs are replayable;
// unseeded it derives ids from fresh UUIDs.
type LocalOracle struct {
	seed   common.Hash
	seeded bool
	issued uint64
}

// NewLocalOracle returns an unseeded oracle with UUID-derived request ids.
func NewLocalOracle() *LocalOracle {
	return &LocalOracle{}
}

// NewSeededOracle returns a deterministic oracle for the given seed.
func NewSeededOracle(seed common.Hash) *LocalOracle {
	return &LocalOracle{seed: seed, seeded: true}
}

// RequestRandomness implements Oracle.
func (o *LocalOracle) RequestRandomness(_ context.Context, _ RequestParams) (common.Hash, error) {
	if !o.seeded {
		id := uuid.New()
		return crypto.Keccak256Hash(id[:]), nil
	}
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], o.issued)
	o.issued++
	return crypto.Keccak256Hash(o.seed[:], []byte("request"), counter[:]), nil
}

// WordFor derives the random word this oracle delivers for a request id. The
// word is a function of the seed and the id only, so a replayed run delivers
// the same words.
func (o *LocalOracle) WordFor(id common.Hash) common.Hash {
	return crypto.Keccak256Hash(o.seed[:], []byte("word"), id[:])
}

// OracleSnapshot captures the oracle's replayable state.
type OracleSnapshot struct {
	Seed   string `json:"seed"`
	Seeded bool   `json:"seeded"`
	Issued uint64 `json:"issued"`
}

// Snapshot returns the oracle state for persistence.
func (o *LocalOracle) Snapshot() OracleSnapshot {
	return OracleSnapshot{Seed: o.seed.Hex(), Seeded: o.seeded, Issued: o.issued}
}

// RestoreOracle rebuilds a LocalOracle from a snapshot.
func RestoreOracle(snap OracleSnapshot) *LocalOracle {
	return &LocalOracle{
		seed:   common.HexToHash(snap.Seed),
		seeded: snap.Seeded,
		issued: snap.Issued,
	}
}
