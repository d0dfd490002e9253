package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migrations are applied in order; each statement is idempotent.
var migrations = []struct {
	name string
	sql  string
}{
	{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			mobilephone VARCHAR(20) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
		CREATE INDEX IF NOT EXISTS idx_users_mobilephone ON users(mobilephone);
	`},
	{"lucky_goods table", `
		CREATE TABLE IF NOT EXISTS lucky_goods (
			id BIGSERIAL PRIMARY KEY,
			goods_name VARCHAR(50) NOT NULL,
			goods_type VARCHAR(2) NOT NULL,
			day_max BIGINT NOT NULL DEFAULT 0,
			min_range BIGINT NOT NULL,
			max_range BIGINT NOT NULL,
			image_url VARCHAR(100) NOT NULL,
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (min_range <= max_range)
		);
	`},
	{"lucky_prize table", `
		CREATE TABLE IF NOT EXISTS lucky_prize (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			goods_name VARCHAR(50) NOT NULL,
			goods_type VARCHAR(2) NOT NULL,
			range_val BIGINT NOT NULL,
			status SMALLINT NOT NULL DEFAULT 1,
			is_sent BOOLEAN NOT NULL DEFAULT FALSE,
			sent_at TIMESTAMPTZ,
			recipient_info JSONB,
			send_proof JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_by BIGINT NOT NULL DEFAULT 0,
			modified_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_lucky_prize_user ON lucky_prize(user_id, id DESC);
		CREATE INDEX IF NOT EXISTS idx_lucky_prize_status ON lucky_prize(status, id DESC);
	`},
	{"lucky_quota table", `
		CREATE TABLE IF NOT EXISTS lucky_quota (
			tier_id BIGINT PRIMARY KEY,
			won_count BIGINT NOT NULL DEFAULT 0,
			first_won_at TIMESTAMPTZ NOT NULL
		);
	`},
	{"address book tables", `
		CREATE TABLE IF NOT EXISTS district (
			district_id BIGINT PRIMARY KEY,
			province_name VARCHAR(50) NOT NULL DEFAULT '',
			city_name VARCHAR(50) NOT NULL DEFAULT '',
			district_name VARCHAR(50) NOT NULL DEFAULT '',
			street_name VARCHAR(50) NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS user_address (
			address_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			realname VARCHAR(50) NOT NULL,
			zipcode VARCHAR(10) NOT NULL DEFAULT '',
			mobilephone VARCHAR(20) NOT NULL,
			address VARCHAR(255) NOT NULL,
			district_id BIGINT NOT NULL,
			status SMALLINT NOT NULL DEFAULT 1
		);
		CREATE INDEX IF NOT EXISTS idx_user_address_user ON user_address(user_id);
	`},
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, m.name, err)
		}
		log.Info().Int("migration", i+1).Str("name", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
