package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-draw/internal/model"
)

// TierRepository handles prize tier persistence.
type TierRepository struct {
	pool *pgxpool.Pool
}

// NewTierRepository creates a new TierRepository instance.
func NewTierRepository(pool *pgxpool.Pool) *TierRepository {
	return &TierRepository{pool: pool}
}

// List returns all tiers ordered by id.
func (r *TierRepository) List(ctx context.Context) ([]model.PrizeTier, error) {
	const query = `
		SELECT id, goods_name, goods_type, day_max, min_range, max_range, image_url, created_by, created_at
		FROM lucky_goods
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []model.PrizeTier
	for rows.Next() {
		var t model.PrizeTier
		err := rows.Scan(
			&t.ID,
			&t.GoodsName,
			&t.GoodsType,
			&t.DayMax,
			&t.MinRange,
			&t.MaxRange,
			&t.ImageURL,
			&t.CreatedBy,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tiers: %w", err)
	}
	return tiers, nil
}

// ReplaceAll truncates the tier table and inserts tiers in one transaction.
// TRUNCATE holds an exclusive lock until commit, so readers see either the
// old table or the new one. The id sequence is not reset: quota counters are
// keyed by tier id, and a new tier must not inherit a replaced tier's wins.
// Counter rows of the replaced tiers are dropped with them.
func (r *TierRepository) ReplaceAll(ctx context.Context, tiers []model.PrizeTier) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE TABLE lucky_goods`); err != nil {
		return fmt.Errorf("failed to truncate tiers: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM lucky_quota`); err != nil {
		return fmt.Errorf("failed to clear tier quotas: %w", err)
	}

	const insert = `
		INSERT INTO lucky_goods (goods_name, goods_type, day_max, min_range, max_range, image_url, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, t := range tiers {
		_, err := tx.Exec(ctx, insert,
			t.GoodsName,
			string(t.GoodsType),
			t.DayMax,
			t.MinRange,
			t.MaxRange,
			t.ImageURL,
			t.CreatedBy,
			t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tier %q: %w", t.GoodsName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tiers: %w", err)
	}
	return nil
}
