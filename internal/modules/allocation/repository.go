package allocation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StoredState is a persisted target state with its bookkeeping columns
type StoredState struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	HolderID  string
	State     TargetState
}

// Repository handles target state database operations
// Database: rebalancer.db (target_states table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new target state repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "target_states").Logger(),
	}
}

// Get returns the stored state of a holder, or ErrNotFound
func (r *Repository) Get(ctx context.Context, holderID string) (*StoredState, error) {
	query := `
		SELECT id, class_targets, sector_targets, ticker_targets, created_at, updated_at
		FROM target_states
		WHERE holder_id = ?
	`

	var (
		stored                            StoredState
		classJSON, sectorJSON, tickerJSON string
		createdAt, updatedAt              int64
	)
	err := r.db.QueryRowContext(ctx, query, holderID).Scan(
		&stored.ID,
		&classJSON,
		&sectorJSON,
		&tickerJSON,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: holder %q", ErrNotFound, holderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query target state: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(classJSON), &rec.ClassTargets); err != nil {
		return nil, fmt.Errorf("failed to decode class targets: %w", err)
	}
	if err := json.Unmarshal([]byte(sectorJSON), &rec.SectorTargets); err != nil {
		return nil, fmt.Errorf("failed to decode sector targets: %w", err)
	}
	if err := json.Unmarshal([]byte(tickerJSON), &rec.TickerTargets); err != nil {
		return nil, fmt.Errorf("failed to decode ticker targets: %w", err)
	}

	stored.HolderID = holderID
	stored.State = StateFromRecord(rec)
	stored.CreatedAt = time.Unix(createdAt, 0).UTC()
	stored.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &stored, nil
}

// Load returns the state of a holder and whether one was stored
func (r *Repository) Load(ctx context.Context, holderID string) (TargetState, bool, error) {
	stored, err := r.Get(ctx, holderID)
	if errors.Is(err, ErrNotFound) {
		return TargetState{}, false, nil
	}
	if err != nil {
		return TargetState{}, false, err
	}
	return stored.State, true, nil
}

// Save inserts or replaces the state of a holder. The record id is assigned on first insert.
func (r *Repository) Save(ctx context.Context, holderID string, state TargetState) error {
	rec := state.ToRecord()

	classJSON, err := json.Marshal(rec.ClassTargets)
	if err != nil {
		return fmt.Errorf("failed to encode class targets: %w", err)
	}
	sectorJSON, err := json.Marshal(rec.SectorTargets)
	if err != nil {
		return fmt.Errorf("failed to encode sector targets: %w", err)
	}
	tickerJSON, err := json.Marshal(rec.TickerTargets)
	if err != nil {
		return fmt.Errorf("failed to encode ticker targets: %w", err)
	}

	now := time.Now().Unix()
	query := `
		INSERT INTO target_states (holder_id, id, class_targets, sector_targets, ticker_targets, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(holder_id) DO UPDATE SET
			class_targets = excluded.class_targets,
			sector_targets = excluded.sector_targets,
			ticker_targets = excluded.ticker_targets,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		holderID,
		uuid.New().String(),
		string(classJSON),
		string(sectorJSON),
		string(tickerJSON),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert target state: %w", err)
	}

	r.log.Debug().
		Str("holder_id", holderID).
		Int("sector_groups", len(rec.SectorTargets)).
		Int("ticker_groups", len(rec.TickerTargets)).
		Msg("Target state saved")

	return nil
}

// Delete removes the state of a holder
func (r *Repository) Delete(ctx context.Context, holderID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM target_states WHERE holder_id = ?", holderID)
	if err != nil {
		return fmt.Errorf("failed to delete target state: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Debug().
		Str("holder_id", holderID).
		Int64("rows_affected", rowsAffected).
		Msg("Target state deleted")

	return nil
}
