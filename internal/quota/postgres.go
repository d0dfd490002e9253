package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTracker keeps quota state in the lucky_quota table. Acquire is a
// single upsert whose conflict branch only fires while the ceiling allows,
// so the row lock taken by ON CONFLICT makes it exact across processes.
type PostgresTracker struct {
	window
	pool *pgxpool.Pool
}

// NewPostgresTracker creates a PostgresTracker.
func NewPostgresTracker(pool *pgxpool.Pool, loc *time.Location) *PostgresTracker {
	return &PostgresTracker{window: newWindow(loc), pool: pool}
}

// Acquire implements Tracker.
func (p *PostgresTracker) Acquire(ctx context.Context, tierID, dayMax int64, now time.Time) (State, error) {
	const query = `
		INSERT INTO lucky_quota (tier_id, won_count, first_won_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (tier_id)
		DO UPDATE SET
			won_count = CASE WHEN lucky_quota.first_won_at < $3 THEN 1 ELSE lucky_quota.won_count + 1 END,
			first_won_at = $2
		WHERE lucky_quota.first_won_at < $3 OR $4::BIGINT = 0 OR lucky_quota.won_count < $4::BIGINT
		RETURNING tier_id, won_count, first_won_at
	`

	var st State
	err := p.pool.QueryRow(ctx, query, tierID, now, p.dayStart(now), dayMax).Scan(
		&st.TierID,
		&st.WonCount,
		&st.FirstWonAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return State{TierID: tierID, WonCount: dayMax}, ErrQuotaExceeded
		}
		return State{}, fmt.Errorf("failed to acquire quota: %w", err)
	}
	return st, nil
}

// Release implements Tracker.
func (p *PostgresTracker) Release(ctx context.Context, tierID int64, now time.Time) error {
	const query = `
		UPDATE lucky_quota
		SET won_count = won_count - 1
		WHERE tier_id = $1 AND won_count > 0 AND first_won_at >= $2
	`
	if _, err := p.pool.Exec(ctx, query, tierID, p.dayStart(now)); err != nil {
		return fmt.Errorf("failed to release quota: %w", err)
	}
	return nil
}

// Get implements Tracker.
func (p *PostgresTracker) Get(ctx context.Context, tierID int64, now time.Time) (State, bool, error) {
	const query = `
		SELECT tier_id, won_count, first_won_at
		FROM lucky_quota
		WHERE tier_id = $1
	`

	var st State
	err := p.pool.QueryRow(ctx, query, tierID).Scan(&st.TierID, &st.WonCount, &st.FirstWonAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return State{TierID: tierID}, false, nil
		}
		return State{}, false, fmt.Errorf("failed to get quota: %w", err)
	}
	if st.WonCount == 0 || !p.isToday(st.FirstWonAt, now) {
		return State{TierID: tierID}, false, nil
	}
	return st, true, nil
}
