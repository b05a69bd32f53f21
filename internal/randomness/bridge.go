package randomness

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Bridge correlates oracle request ids with the requester each one was
// issued for. One request is issued per accepted open, and each id resolves
// at most once: the first delivery consumes the entry, so a duplicate or
// orphaned delivery resolves to nothing.
type Bridge struct {
	oracle Oracle
	params RequestParams
	index  map[common.Hash]common.Address
	logger *zap.Logger
}

// NewBridge builds a bridge over the given oracle.
func NewBridge(oracle Oracle, params RequestParams, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		oracle: oracle,
		params: params,
		index:  make(map[common.Hash]common.Address),
		logger: logger,
	}
}

// Request issues one randomness request for the requester and records the
// returned id.
func (b *Bridge) Request(ctx context.Context, requester common.Address) (common.Hash, error) {
	if b.oracle == nil {
		return common.Hash{}, fmt.Errorf("randomness: oracle not configured")
	}
	id, err := b.oracle.RequestRandomness(ctx, b.params)
	if err != nil {
		return common.Hash{}, fmt.Errorf("request randomness: %w", err)
	}
	b.index[id] = requester
	return id, nil
}

// Resolve consumes the entry for a delivered request id. A miss means the id
// was never issued here or was already consumed; that delivery is dropped.
func (b *Bridge) Resolve(id common.Hash) (common.Address, bool) {
	requester, ok := b.index[id]
	if !ok {
		b.logger.Warn("orphan randomness delivery", zap.String("request_id", id.Hex()))
		return common.Address{}, false
	}
	delete(b.index, id)
	return requester, true
}

// Entries returns a copy of the outstanding id index, used for state
// snapshots.
func (b *Bridge) Entries() map[common.Hash]common.Address {
	out := make(map[common.Hash]common.Address, len(b.index))
	for id, requester := range b.index {
		out[id] = requester
	}
	return out
}

// Restore replaces the outstanding id index from a snapshot.
func (b *Bridge) Restore(entries map[common.Hash]common.Address) {
	b.index = make(map[common.Hash]common.Address, len(entries))
	for id, requester := range entries {
		b.index[id] = requester
	}
}
