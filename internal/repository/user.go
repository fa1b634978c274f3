// Package repository provides the PostgreSQL and in-memory implementations
// of the identity and balance store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/model"
)

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = ledger.ErrUserNotFound

const userColumns = `telegram_id, username, top_coin, total_xp, day_xp, week_xp, month_xp,
	xp_day_key, xp_week_key, xp_month_key, quiz_xp_date, quiz_xp_earned, last_daily_at, daily_streak, last_quest_at, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.TelegramID,
		&u.Username,
		&u.TopCoin,
		&u.TotalXP,
		&u.DayXP,
		&u.WeekXP,
		&u.MonthXP,
		&u.Periods.Day,
		&u.Periods.Week,
		&u.Periods.Month,
		&u.QuizDay.Date,
		&u.QuizDay.EarnedXP,
		&u.LastDailyAt,
		&u.DailyStreak,
		&u.LastQuestAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserRepository handles user persistence.
type UserRepository struct {
	pool         *pgxpool.Pool
	initialCoins int64
	periods      PeriodFunc
}

// NewUserRepository creates a UserRepository. New users start with initialCoins.
func NewUserRepository(pool *pgxpool.Pool, initialCoins int64) *UserRepository {
	return &UserRepository{pool: pool, initialCoins: initialCoins}
}

// Create inserts a user with default balances.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username string) (*model.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, top_coin)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, username, r.initialCoins))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.periods.roll(user), nil
}

// GetByID retrieves a user by Telegram ID.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return r.periods.roll(user), nil
}

// GetByUsername retrieves a user by username, case-insensitively.
// A leading @ is ignored.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) ORDER BY updated_at DESC LIMIT 1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return r.periods.roll(user), nil
}

// GetOrCreate retrieves a user, creating one on first interaction.
// It reports whether the user was created.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, err := r.GetByID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	user, err = r.Create(ctx, telegramID, username)
	if err != nil {
		// Another update for the same user may have created it first.
		user, err = r.GetByID(ctx, telegramID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}
	return user, true, nil
}

// UpdateUsername records a changed Telegram username.
func (r *UserRepository) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	const query = `UPDATE users SET username = $2, updated_at = NOW() WHERE telegram_id = $1`

	result, err := r.pool.Exec(ctx, query, telegramID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RankBy selects the ordering of a leaderboard.
type RankBy string

const (
	RankByXP    RankBy = "total_xp"
	RankByCoins RankBy = "top_coin"
)

// GetTop returns the top users ordered by the given column.
func (r *UserRepository) GetTop(ctx context.Context, by RankBy, limit int) ([]*model.User, error) {
	if by != RankByXP && by != RankByCoins {
		return nil, fmt.Errorf("unknown ranking %q", by)
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY ` + string(by) + ` DESC, telegram_id LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, r.periods.roll(user))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// save writes every mutable balance field of u inside tx.
func (r *UserRepository) save(ctx context.Context, tx pgx.Tx, u *model.User) error {
	const query = `
		UPDATE users SET
			top_coin = $2, total_xp = $3, day_xp = $4, week_xp = $5, month_xp = $6,
			xp_day_key = $7, xp_week_key = $8, xp_month_key = $9,
			quiz_xp_date = $10, quiz_xp_earned = $11,
			last_daily_at = $12, daily_streak = $13, last_quest_at = $14,
			updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query,
		u.TelegramID, u.TopCoin, u.TotalXP, u.DayXP, u.WeekXP, u.MonthXP,
		u.Periods.Day, u.Periods.Week, u.Periods.Month,
		u.QuizDay.Date, u.QuizDay.EarnedXP,
		u.LastDailyAt, u.DailyStreak, u.LastQuestAt,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to save user %d: %w", u.TelegramID, err)
	}
	return nil
}
