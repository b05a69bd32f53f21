package vault

import "github.com/ethereum/go-ethereum/common"

const (
	EventTypeOpenRequested  = "vault.open.requested"
	EventTypeOpenFulfilled  = "vault.open.fulfilled"
	EventTypeRewardsClaimed = "vault.rewards.claimed"
)

// Event is the common surface of the vault's observable notifications.
type Event interface {
	EventType() string
}

// Emitter receives vault events. Implementations must not call back into the
// vault.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(Event) {}

// OpenRequested is emitted when an open is accepted and a randomness request
// has been issued.
type OpenRequested struct {
	Requester common.Address
	Units     uint64
	RequestID common.Hash
}

func (OpenRequested) EventType() string { return EventTypeOpenRequested }

// OpenFulfilled is emitted when the oracle delivers randomness for a pending
// request.
type OpenFulfilled struct {
	RequestID  common.Hash
	Randomness common.Hash
}

func (OpenFulfilled) EventType() string { return EventTypeOpenFulfilled }

// RewardsClaimed is emitted after a fulfilled request has been converted into
// transfers.
type RewardsClaimed struct {
	Requester common.Address
	Units     uint64
	Picks     []Pick
}

func (RewardsClaimed) EventType() string { return EventTypeRewardsClaimed }
