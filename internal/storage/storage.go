package storage

import "rewardVault/internal/model"

// Storage defines a sink for vault event records.
type Storage interface {
	PutEventBatch(events []model.EventRecord) error
}
