package model

// EventRecord is the normalized representation of a vault event for storage.
type EventRecord struct {
	Seq       uint64      `json:"seq"`
	EventName string      `json:"event_name"`
	EmittedAt string      `json:"emitted_at"`
	Decoded   interface{} `json:"decoded"`
}

// OpenRequestedData is the decoded payload of an accepted open.
type OpenRequestedData struct {
	Requester string `json:"requester"`
	Units     uint64 `json:"units"`
	RequestID string `json:"request_id"`
}

// OpenFulfilledData is the decoded payload of a randomness delivery.
type OpenFulfilledData struct {
	RequestID  string `json:"request_id"`
	Randomness string `json:"randomness"`
}

// RewardsClaimedData is the decoded payload of a settled claim.
type RewardsClaimedData struct {
	Requester string     `json:"requester"`
	Units     uint64     `json:"units"`
	Picks     []PickData `json:"picks"`
}

// PickData is one allocated reward unit inside a claim payload.
type PickData struct {
	Slot     int    `json:"slot"`
	Class    string `json:"class"`
	Token    string `json:"token"`
	TokenID  string `json:"token_id,omitempty"`
	Quantity string `json:"quantity"`
}

// SlotState is the persisted view of one pool slot.
type SlotState struct {
	Slot      int    `json:"slot"`
	Class     string `json:"class"`
	Token     string `json:"token"`
	TokenID   string `json:"token_id,omitempty"`
	Remaining string `json:"remaining"`
	UnitSize  string `json:"unit_size"`
}
