package storage

import "rewardVault/internal/model"

// Memory buffers event records in process, for reports and tests.
type Memory struct {
	records []model.EventRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

// PutEventBatch appends the batch to the buffer.
func (m *Memory) PutEventBatch(events []model.EventRecord) error {
	m.records = append(m.records, events...)
	return nil
}

// Records returns the buffered records.
func (m *Memory) Records() []model.EventRecord {
	return m.records
}

// Multi fans one batch out to several sinks.
type Multi struct {
	sinks []Storage
}

func NewMulti(sinks ...Storage) *Multi {
	return &Multi{sinks: sinks}
}

// PutEventBatch writes the batch to every sink, stopping at the first error.
func (m *Multi) PutEventBatch(events []model.EventRecord) error {
	for _, sink := range m.sinks {
		if err := sink.PutEventBatch(events); err != nil {
			return err
		}
	}
	return nil
}
