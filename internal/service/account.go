// Package service provides the account-level operations around the games:
// identity resolution, check-ins, the shop, rankings and admin grants.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/lock"
)

// Common errors for account operations.
var (
	ErrDailyAlreadyClaimed = errors.New("daily check-in already claimed")
	ErrQuestAlreadyClaimed = errors.New("daily quest already claimed")
	ErrQuestNotReady       = errors.New("daily quest not completed")
)

// QuestProgressError reports how far the user is from the quest threshold.
type QuestProgressError struct {
	DayXP    int64
	Required int64
}

func (e *QuestProgressError) Error() string {
	return fmt.Sprintf("quest needs %d XP today, have %d", e.Required, e.DayXP)
}

// Is makes errors.Is(err, ErrQuestNotReady) match.
func (e *QuestProgressError) Is(target error) bool {
	return target == ErrQuestNotReady
}

// UserStore is the part of the balance store the account services use.
type UserStore interface {
	ledger.Store
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
}

// AccountConfig holds the check-in and quest rewards.
type AccountConfig struct {
	DailyXP            int64
	DailyCoins         int64
	QuestRequiredDayXP int64
	QuestBonusXP       int64
	QuestBonusCoins    int64
	Location           *time.Location
	Clock              func() time.Time
}

// AccountService handles user accounts and the daily rewards.
type AccountService struct {
	store UserStore
	locks *lock.UserLock
	cfg   AccountConfig
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(store UserStore, locks *lock.UserLock, cfg AccountConfig) *AccountService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &AccountService{store: store, locks: locks, cfg: cfg}
}

// EnsureUser ensures a user exists, creating one if necessary.
// Returns the user and whether it was newly created.
func (s *AccountService) EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, created, err := s.store.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}

	if !created && username != "" && user.Username != username {
		if err := s.store.UpdateUsername(ctx, telegramID, username); err != nil {
			log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to update username")
		}
		user.Username = username
	}
	return user, created, nil
}

// Profile returns the user's current balances.
func (s *AccountService) Profile(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.store.GetByID(ctx, telegramID)
}

// DailyResult is a successful check-in.
type DailyResult struct {
	XP     int64
	Coins  int64
	Streak int
	User   *model.User
}

// Daily records today's check-in. The streak grows when the previous
// check-in was yesterday and restarts at 1 otherwise.
func (s *AccountService) Daily(ctx context.Context, telegramID int64) (*DailyResult, error) {
	res := &DailyResult{XP: s.cfg.DailyXP, Coins: s.cfg.DailyCoins}
	err := s.locks.WithLock(ctx, telegramID, func() error {
		user, err := s.store.GetByID(ctx, telegramID)
		if err != nil {
			return err
		}

		now := s.cfg.Clock().In(s.cfg.Location)
		today := model.DayKey(now, s.cfg.Location)
		if user.LastDailyAt == today {
			return ErrDailyAlreadyClaimed
		}
		if user.LastDailyAt == model.DayKey(now.AddDate(0, 0, -1), s.cfg.Location) {
			user.DailyStreak++
		} else {
			user.DailyStreak = 1
		}
		user.LastDailyAt = today

		ledger.CreditXP(user, s.cfg.DailyXP)
		ledger.CreditCoins(user, s.cfg.DailyCoins)
		res.Streak = user.DailyStreak
		res.User = user

		entry := ledger.Entry(telegramID, s.cfg.DailyCoins, s.cfg.DailyXP, model.TxTypeDaily, "điểm danh")
		return s.store.Commit(ctx, []model.Transaction{entry}, user)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", telegramID).Int("streak", res.Streak).Msg("Daily check-in claimed")
	return res, nil
}

// QuestResult is a claimed daily quest.
type QuestResult struct {
	XP    int64
	Coins int64
	User  *model.User
}

// ClaimQuest pays the daily quest once the user earned enough XP today.
func (s *AccountService) ClaimQuest(ctx context.Context, telegramID int64) (*QuestResult, error) {
	res := &QuestResult{XP: s.cfg.QuestBonusXP, Coins: s.cfg.QuestBonusCoins}
	err := s.locks.WithLock(ctx, telegramID, func() error {
		user, err := s.store.GetByID(ctx, telegramID)
		if err != nil {
			return err
		}

		now := s.cfg.Clock()
		user.RollPeriods(model.PeriodKeysAt(now, s.cfg.Location))
		today := model.DayKey(now, s.cfg.Location)
		if user.LastQuestAt == today {
			return ErrQuestAlreadyClaimed
		}
		if user.DayXP < s.cfg.QuestRequiredDayXP {
			return &QuestProgressError{DayXP: user.DayXP, Required: s.cfg.QuestRequiredDayXP}
		}
		user.LastQuestAt = today

		ledger.CreditXP(user, s.cfg.QuestBonusXP)
		ledger.CreditCoins(user, s.cfg.QuestBonusCoins)
		res.User = user

		entry := ledger.Entry(telegramID, s.cfg.QuestBonusCoins, s.cfg.QuestBonusXP, model.TxTypeQuest, "nhiệm vụ ngày")
		return s.store.Commit(ctx, []model.Transaction{entry}, user)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", telegramID).Msg("Daily quest claimed")
	return res, nil
}
