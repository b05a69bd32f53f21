package sim

import (
	"time"

	"rewardVault/internal/model"
	"rewardVault/internal/vault"
)

// Recorder implements vault.Emitter, turning engine events into sequenced
// storage records.
type Recorder struct {
	seq     uint64
	pending []model.EventRecord
	nowFn   func() time.Time
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return NewRecorderAt(0)
}

// NewRecorderAt returns a recorder that continues numbering after seq, so
// runs resumed from a state file keep a single sequence.
func NewRecorderAt(seq uint64) *Recorder {
	return &Recorder{seq: seq, nowFn: func() time.Time { return time.Now().UTC() }}
}

// Emit implements vault.Emitter.
func (r *Recorder) Emit(event vault.Event) {
	r.seq++
	record := model.EventRecord{
		Seq:       r.seq,
		EventName: event.EventType(),
		EmittedAt: r.nowFn().Format(time.RFC3339Nano),
	}

	switch e := event.(type) {
	case vault.OpenRequested:
		record.Decoded = model.OpenRequestedData{
			Requester: e.Requester.Hex(),
			Units:     e.Units,
			RequestID: e.RequestID.Hex(),
		}
	case vault.OpenFulfilled:
		record.Decoded = model.OpenFulfilledData{
			RequestID:  e.RequestID.Hex(),
			Randomness: e.Randomness.Hex(),
		}
	case vault.RewardsClaimed:
		picks := make([]model.PickData, 0, len(e.Picks))
		for _, p := range e.Picks {
			pick := model.PickData{
				Slot:     p.Slot,
				Class:    p.Class.String(),
				Token:    p.Token.Hex(),
				Quantity: p.Quantity.String(),
			}
			if p.TokenID != nil {
				pick.TokenID = p.TokenID.String()
			}
			picks = append(picks, pick)
		}
		record.Decoded = model.RewardsClaimedData{
			Requester: e.Requester.Hex(),
			Units:     e.Units,
			Picks:     picks,
		}
	default:
		return
	}

	r.pending = append(r.pending, record)
}

// Drain returns and clears the buffered records.
func (r *Recorder) Drain() []model.EventRecord {
	out := r.pending
	r.pending = nil
	return out
}

// Seq returns the last assigned sequence number.
func (r *Recorder) Seq() uint64 { return r.seq }
