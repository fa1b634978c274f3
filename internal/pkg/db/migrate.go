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
			username VARCHAR(255) NOT NULL DEFAULT '',
			top_coin BIGINT NOT NULL DEFAULT 0 CHECK (top_coin >= 0),
			total_xp BIGINT NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
			day_xp BIGINT NOT NULL DEFAULT 0 CHECK (day_xp >= 0),
			week_xp BIGINT NOT NULL DEFAULT 0 CHECK (week_xp >= 0),
			month_xp BIGINT NOT NULL DEFAULT 0 CHECK (month_xp >= 0),
			xp_day_key VARCHAR(10) NOT NULL DEFAULT '',
			xp_week_key VARCHAR(8) NOT NULL DEFAULT '',
			xp_month_key VARCHAR(7) NOT NULL DEFAULT '',
			quiz_xp_date VARCHAR(10) NOT NULL DEFAULT '',
			quiz_xp_earned BIGINT NOT NULL DEFAULT 0,
			last_daily_at VARCHAR(10) NOT NULL DEFAULT '',
			daily_streak INT NOT NULL DEFAULT 0,
			last_quest_at VARCHAR(10) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_username ON users (LOWER(username));
		CREATE INDEX IF NOT EXISTS idx_users_total_xp ON users (total_xp DESC);
		CREATE INDEX IF NOT EXISTS idx_users_top_coin ON users (top_coin DESC);
	`},
	{"transactions table", `
		CREATE TABLE IF NOT EXISTS transactions (
			id CHAR(26) PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			coins BIGINT NOT NULL DEFAULT 0,
			xp BIGINT NOT NULL DEFAULT 0,
			type VARCHAR(50) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(user_id, created_at DESC);
	`},
	{"rewards table", `
		CREATE TABLE IF NOT EXISTS rewards (
			id CHAR(26) PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			type VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_rewards_user ON rewards(user_id, created_at DESC);
	`},
}

// Migrate creates the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", i+1, m.name, err)
		}
		log.Info().Int("step", i+1).Str("name", m.name).Msg("Migration applied")
	}
	return nil
}
