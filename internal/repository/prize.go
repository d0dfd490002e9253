package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-draw/internal/model"
)

// RecordFilter narrows a prize record listing. Only active records are
// ever listed.
type RecordFilter struct {
	UserID       *int64
	GoodsName    string // substring match
	GoodsType    model.GoodsType
	ExcludeNoWin bool
	Offset       int
	Limit        int
}

// PrizeRepository is the prize ledger: one row per draw.
type PrizeRepository struct {
	pool *pgxpool.Pool
}

// NewPrizeRepository creates a new PrizeRepository instance.
func NewPrizeRepository(pool *pgxpool.Pool) *PrizeRepository {
	return &PrizeRepository{pool: pool}
}

const prizeColumns = `id, user_id, goods_name, goods_type, range_val, status, is_sent, sent_at,
	recipient_info, send_proof, created_at, modified_by, modified_at`

func scanPrize(row pgx.Row) (*model.PrizeRecord, error) {
	var rec model.PrizeRecord
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.GoodsName,
		&rec.GoodsType,
		&rec.DrawValue,
		&rec.Status,
		&rec.IsSent,
		&rec.SentAt,
		&rec.RecipientInfo,
		&rec.SendProof,
		&rec.CreatedAt,
		&rec.ModifiedBy,
		&rec.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create appends a draw outcome to the ledger.
func (r *PrizeRepository) Create(ctx context.Context, userID int64, goodsName string, goodsType model.GoodsType, drawValue int64, createdAt time.Time) (*model.PrizeRecord, error) {
	const query = `
		INSERT INTO lucky_prize (user_id, goods_name, goods_type, range_val, status, created_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		RETURNING ` + prizeColumns

	rec, err := scanPrize(r.pool.QueryRow(ctx, query, userID, goodsName, string(goodsType), drawValue, createdAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create prize record: %w", err)
	}
	return rec, nil
}

// GetActive returns an active record by id.
func (r *PrizeRepository) GetActive(ctx context.Context, id int64) (*model.PrizeRecord, error) {
	const query = `SELECT ` + prizeColumns + ` FROM lucky_prize WHERE id = $1 AND status = 1`

	rec, err := scanPrize(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get prize record: %w", err)
	}
	return rec, nil
}

// GetActiveByUser returns an active record by id owned by userID.
func (r *PrizeRepository) GetActiveByUser(ctx context.Context, id, userID int64) (*model.PrizeRecord, error) {
	const query = `SELECT ` + prizeColumns + ` FROM lucky_prize WHERE id = $1 AND user_id = $2 AND status = 1`

	rec, err := scanPrize(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get prize record: %w", err)
	}
	return rec, nil
}

// SetRecipientInfo stores the winner's recipient info while the record is
// unsent. Returns ErrStaleRecord if the record was sent or voided meanwhile.
func (r *PrizeRepository) SetRecipientInfo(ctx context.Context, id, userID int64, info []byte, now time.Time) error {
	const query = `
		UPDATE lucky_prize
		SET recipient_info = $3, modified_by = $2, modified_at = $4
		WHERE id = $1 AND user_id = $2 AND status = 1 AND is_sent = FALSE
	`

	result, err := r.pool.Exec(ctx, query, id, userID, info, now)
	if err != nil {
		return fmt.Errorf("failed to set recipient info: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	return nil
}

// MarkSent stores the send proof. sent_at keeps the first send time.
// prevModifiedAt is the modified_at value observed when the record was read;
// the update only applies if it is unchanged, so two concurrent operators
// cannot both process the record.
func (r *PrizeRepository) MarkSent(ctx context.Context, id, adminID int64, proof []byte, now time.Time, prevModifiedAt *time.Time) error {
	const query = `
		UPDATE lucky_prize
		SET is_sent = TRUE, sent_at = COALESCE(sent_at, $4), send_proof = $3, modified_by = $2, modified_at = $4
		WHERE id = $1 AND status = 1 AND modified_at IS NOT DISTINCT FROM $5
	`

	result, err := r.pool.Exec(ctx, query, id, adminID, proof, now, prevModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to mark prize sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	return nil
}

// Void soft-deletes an unsent record.
func (r *PrizeRepository) Void(ctx context.Context, id, adminID int64, now time.Time) error {
	const query = `
		UPDATE lucky_prize
		SET status = 2, modified_by = $2, modified_at = $3
		WHERE id = $1 AND status = 1 AND is_sent = FALSE
	`

	result, err := r.pool.Exec(ctx, query, id, adminID, now)
	if err != nil {
		return fmt.Errorf("failed to void prize record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	return nil
}

// List returns a page of active records, newest first, plus the total
// number of matching records.
func (r *PrizeRepository) List(ctx context.Context, f RecordFilter) ([]*model.PrizeRecord, int64, error) {
	where := []string{"status = 1"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.UserID != nil {
		where = append(where, "user_id = "+arg(*f.UserID))
	}
	if f.GoodsName != "" {
		where = append(where, "goods_name LIKE "+arg("%"+escapeLike(f.GoodsName)+"%"))
	}
	if f.GoodsType != "" {
		where = append(where, "goods_type = "+arg(string(f.GoodsType)))
	}
	if f.ExcludeNoWin {
		where = append(where, "goods_type <> "+arg(string(model.GoodsNoWin)))
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(1) FROM lucky_prize"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count prize records: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + prizeColumns + " FROM lucky_prize" + clause +
		" ORDER BY id DESC LIMIT " + arg(limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list prize records: %w", err)
	}
	defer rows.Close()

	var records []*model.PrizeRecord
	for rows.Next() {
		rec, err := scanPrize(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan prize record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating prize records: %w", err)
	}
	return records, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
