package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rewardVault/internal/model"
)

// Store provides Postgres persistence for vault events and slot states.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents appends event records, keyed by sequence number.
func (s *Store) InsertEvents(ctx context.Context, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range events {
		payload, err := json.Marshal(record.Decoded)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		batch.Queue(`
			INSERT INTO vault_events (seq, event_name, emitted_at, payload, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (seq) DO NOTHING
		`,
			int64(record.Seq),
			record.EventName,
			record.EmittedAt,
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertSlotStates inserts or updates the persisted pool slot view.
func (s *Store) UpsertSlotStates(ctx context.Context, slots []model.SlotState) error {
	if len(slots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, slot := range slots {
		batch.Queue(`
			INSERT INTO vault_slots (slot, class, token, token_id, remaining, unit_size, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (slot)
			DO UPDATE SET
				class = EXCLUDED.class,
				token = EXCLUDED.token,
				token_id = EXCLUDED.token_id,
				remaining = EXCLUDED.remaining,
				unit_size = EXCLUDED.unit_size,
				updated_at = now()
		`,
			slot.Slot,
			slot.Class,
			slot.Token,
			slot.TokenID,
			slot.Remaining,
			slot.UnitSize,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range slots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_seq for a named run.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq uint64
	row := s.pool.QueryRow(ctx, `SELECT last_seq FROM vault_run_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seq, true, nil
}

// SaveState upserts last_seq for a named run.
func (s *Store) SaveState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vault_run_state (name, last_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_seq = EXCLUDED.last_seq, updated_at = now()
	`, name, seq)
	return err
}
