// Package portfolio provides the holdings read side consumed by the allocation engine.
package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aristath/rebalancer/internal/database"
	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// PositionRepository handles position and fixed-income database operations
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// GetPositions returns the holder's positions in display order
func (r *PositionRepository) GetPositions(ctx context.Context, holderID string) ([]domain.Position, error) {
	query := `SELECT symbol, quantity, avg_cost, current_price, asset_class, cap_bucket, sector
		FROM positions
		WHERE holder_id = ?
		ORDER BY sort_order, symbol`

	rows, err := r.db.QueryContext(ctx, query, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]domain.Position, 0)
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetPosition returns a single position, or nil when the holder does not own it
func (r *PositionRepository) GetPosition(ctx context.Context, holderID, symbol string) (*domain.Position, error) {
	query := `SELECT symbol, quantity, avg_cost, current_price, asset_class, cap_bucket, sector
		FROM positions
		WHERE holder_id = ? AND symbol = ?`

	rows, err := r.db.QueryContext(ctx, query, holderID, domain.NormalizeSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to query position: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	pos, err := scanPosition(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan position: %w", err)
	}
	return &pos, nil
}

// GetFixedIncome returns the holder's fixed-income items in display order
func (r *PositionRepository) GetFixedIncome(ctx context.Context, holderID string) ([]domain.FixedIncomeItem, error) {
	query := `SELECT id, counterparty, principal, rate, index_type
		FROM fixed_income_items
		WHERE holder_id = ?
		ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed income items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.FixedIncomeItem, 0)
	for rows.Next() {
		var item domain.FixedIncomeItem
		if err := rows.Scan(&item.ID, &item.Counterparty, &item.Principal, &item.Rate, &item.IndexType); err != nil {
			return nil, fmt.Errorf("failed to scan fixed income item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixed income items: %w", err)
	}

	return items, nil
}

// UpsertPosition inserts or updates a position.
// New positions are appended after the holder's existing ones.
func (r *PositionRepository) UpsertPosition(ctx context.Context, holderID string, position domain.Position) error {
	position, err := normalizePosition(position)
	if err != nil {
		return err
	}

	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var next int64
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(sort_order) + 1, 0) FROM positions WHERE holder_id = ?", holderID,
		).Scan(&next); err != nil {
			return fmt.Errorf("failed to read sort order: %w", err)
		}
		return upsertPosition(ctx, tx, holderID, position, next)
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("holder", holderID).Str("symbol", position.Symbol).Msg("Position upserted")
	return nil
}

// ReplacePositions swaps the holder's positions for the given list, keeping its order
func (r *PositionRepository) ReplacePositions(ctx context.Context, holderID string, positions []domain.Position) error {
	normalized := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		p, err := normalizePosition(p)
		if err != nil {
			return err
		}
		normalized = append(normalized, p)
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM positions WHERE holder_id = ?", holderID); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}
		for i, p := range normalized {
			if err := upsertPosition(ctx, tx, holderID, p, int64(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("holder", holderID).Int("count", len(normalized)).Msg("Positions replaced")
	return nil
}

// UpdatePrice sets the current price of a position
func (r *PositionRepository) UpdatePrice(ctx context.Context, holderID, symbol string, price float64) error {
	symbol = domain.NormalizeSymbol(symbol)

	result, err := r.db.ExecContext(ctx,
		"UPDATE positions SET current_price = ? WHERE holder_id = ? AND symbol = ?",
		price, holderID, symbol,
	)
	if err != nil {
		return fmt.Errorf("failed to update position price: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position %s not found for holder %s", symbol, holderID)
	}

	r.log.Debug().Str("holder", holderID).Str("symbol", symbol).Float64("price", price).Msg("Position price updated")
	return nil
}

// DeletePosition deletes a position by symbol
func (r *PositionRepository) DeletePosition(ctx context.Context, holderID, symbol string) error {
	symbol = domain.NormalizeSymbol(symbol)

	result, err := r.db.ExecContext(ctx, "DELETE FROM positions WHERE holder_id = ? AND symbol = ?", holderID, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Info().Str("holder", holderID).Str("symbol", symbol).Int64("rows_affected", rowsAffected).Msg("Position deleted")
	return nil
}

// UpsertFixedIncome inserts or updates a fixed-income item
func (r *PositionRepository) UpsertFixedIncome(ctx context.Context, holderID string, item domain.FixedIncomeItem) error {
	item, err := normalizeFixedIncome(item)
	if err != nil {
		return err
	}

	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var next int64
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(sort_order) + 1, 0) FROM fixed_income_items WHERE holder_id = ?", holderID,
		).Scan(&next); err != nil {
			return fmt.Errorf("failed to read sort order: %w", err)
		}
		return upsertFixedIncome(ctx, tx, holderID, item, next)
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("holder", holderID).Str("id", item.ID).Msg("Fixed income item upserted")
	return nil
}

// ReplaceFixedIncome swaps the holder's fixed-income items for the given list
func (r *PositionRepository) ReplaceFixedIncome(ctx context.Context, holderID string, items []domain.FixedIncomeItem) error {
	normalized := make([]domain.FixedIncomeItem, 0, len(items))
	for _, item := range items {
		item, err := normalizeFixedIncome(item)
		if err != nil {
			return err
		}
		normalized = append(normalized, item)
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM fixed_income_items WHERE holder_id = ?", holderID); err != nil {
			return fmt.Errorf("failed to clear fixed income items: %w", err)
		}
		for i, item := range normalized {
			if err := upsertFixedIncome(ctx, tx, holderID, item, int64(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("holder", holderID).Int("count", len(normalized)).Msg("Fixed income items replaced")
	return nil
}

// DeleteFixedIncome deletes a fixed-income item by ID
func (r *PositionRepository) DeleteFixedIncome(ctx context.Context, holderID, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM fixed_income_items WHERE holder_id = ? AND id = ?", holderID, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("failed to delete fixed income item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Info().Str("holder", holderID).Str("id", id).Int64("rows_affected", rowsAffected).Msg("Fixed income item deleted")
	return nil
}

func upsertPosition(ctx context.Context, tx *sql.Tx, holderID string, p domain.Position, sortOrder int64) error {
	query := `
		INSERT INTO positions
		(holder_id, symbol, quantity, avg_cost, current_price, asset_class, cap_bucket, sector, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(holder_id, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			avg_cost = excluded.avg_cost,
			current_price = excluded.current_price,
			asset_class = excluded.asset_class,
			cap_bucket = excluded.cap_bucket,
			sector = excluded.sector
	`

	_, err := tx.ExecContext(ctx, query,
		holderID,
		p.Symbol,
		p.Quantity,
		p.AverageCost,
		nullFloat64(p.CurrentPrice),
		string(p.AssetClass),
		string(p.CapBucket),
		p.Sector,
		sortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", p.Symbol, err)
	}
	return nil
}

func upsertFixedIncome(ctx context.Context, tx *sql.Tx, holderID string, item domain.FixedIncomeItem, sortOrder int64) error {
	query := `
		INSERT INTO fixed_income_items
		(holder_id, id, counterparty, principal, rate, index_type, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(holder_id, id) DO UPDATE SET
			counterparty = excluded.counterparty,
			principal = excluded.principal,
			rate = excluded.rate,
			index_type = excluded.index_type
	`

	_, err := tx.ExecContext(ctx, query,
		holderID,
		item.ID,
		item.Counterparty,
		item.Principal,
		item.Rate,
		item.IndexType,
		sortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fixed income item %s: %w", item.ID, err)
	}
	return nil
}

func scanPosition(rows *sql.Rows) (domain.Position, error) {
	var (
		pos          domain.Position
		currentPrice sql.NullFloat64
		assetClass   string
		capBucket    string
	)

	if err := rows.Scan(
		&pos.Symbol,
		&pos.Quantity,
		&pos.AverageCost,
		&currentPrice,
		&assetClass,
		&capBucket,
		&pos.Sector,
	); err != nil {
		return pos, err
	}

	if currentPrice.Valid {
		pos.CurrentPrice = domain.Float64(currentPrice.Float64)
	}
	pos.AssetClass = domain.AssetClass(assetClass)
	pos.CapBucket = domain.CapBucket(capBucket)

	return pos, nil
}

func normalizePosition(p domain.Position) (domain.Position, error) {
	p.Symbol = domain.NormalizeSymbol(p.Symbol)
	if p.Symbol == "" {
		return p, fmt.Errorf("symbol is required for position upsert")
	}
	if !p.AssetClass.Valid() {
		return p, fmt.Errorf("invalid asset class %q for %s", p.AssetClass, p.Symbol)
	}
	if p.CapBucket != "" && !p.CapBucket.Valid() {
		return p, fmt.Errorf("invalid cap bucket %q for %s", p.CapBucket, p.Symbol)
	}
	p.Sector = strings.TrimSpace(p.Sector)
	return p, nil
}

func normalizeFixedIncome(item domain.FixedIncomeItem) (domain.FixedIncomeItem, error) {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return item, fmt.Errorf("id is required for fixed income upsert")
	}
	item.Counterparty = strings.TrimSpace(item.Counterparty)
	return item, nil
}

func nullFloat64(val *float64) sql.NullFloat64 {
	if val == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *val, Valid: true}
}
