package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/model"
)

// Store is the PostgreSQL implementation of ledger.Store.
type Store struct {
	*UserRepository
	*RewardRepository
	Transactions *TransactionRepository
	pool         *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

// NewStore wires the repositories over one pool.
func NewStore(pool *pgxpool.Pool, initialCoins int64) *Store {
	return &Store{
		UserRepository:   NewUserRepository(pool, initialCoins),
		RewardRepository: NewRewardRepository(pool),
		Transactions:     NewTransactionRepository(pool),
		pool:             pool,
	}
}

// WithPeriods makes every user read roll the XP aggregates against fn.
func (s *Store) WithPeriods(fn PeriodFunc) *Store {
	s.UserRepository.periods = fn
	return s
}

// Commit writes the users and their audit entries in one transaction.
func (s *Store) Commit(ctx context.Context, entries []model.Transaction, users ...*model.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range users {
		if err := s.UserRepository.save(ctx, tx, u); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := s.Transactions.insert(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// PeriodFunc returns the current day, week and month keys. A store given
// one rolls each user it reads against it, so callers never see XP counted
// in a period that has ended.
type PeriodFunc func() model.PeriodKeys

// PeriodsIn returns a PeriodFunc reading the wall clock in loc.
func PeriodsIn(loc *time.Location) PeriodFunc {
	return func() model.PeriodKeys {
		return model.PeriodKeysAt(time.Now(), loc)
	}
}

// roll applies the current periods to u and returns it.
func (f PeriodFunc) roll(u *model.User) *model.User {
	if f == nil || u == nil {
		return u
	}
	if rolled := u.RollPeriods(f()); rolled.Any() {
		log.Debug().
			Int64("user_id", u.TelegramID).
			Bool("day_reset", rolled.Day).
			Bool("week_reset", rolled.Week).
			Bool("month_reset", rolled.Month).
			Msg("XP periods rolled")
	}
	return u
}
